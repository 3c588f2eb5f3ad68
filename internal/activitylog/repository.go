package activitylog

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrMissingUser indicates an entry appended without a user ID.
const ErrMissingUser = constError("entry needs a user id")

// Range bounds a history query to [Since, Until). Zero values are unbounded.
type Range struct {
	Since time.Time
	Until time.Time
}

// Repository reads and writes activity entries and badge progress.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a Repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append stores e, assigning an ID and defaulting the timestamp to now.
func (r *Repository) Append(ctx context.Context, e *Entry) error {
	if e.UserID == "" {
		return ErrMissingUser
	}
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Timestamp = e.Timestamp.UTC()

	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("appending entry: %w", err)
	}
	return nil
}

// ListByUser returns the user's entries within rng, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, rng Range) ([]Entry, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !rng.Since.IsZero() {
		q = q.Where("timestamp >= ?", rng.Since.UTC())
	}
	if !rng.Until.IsZero() {
		q = q.Where("timestamp < ?", rng.Until.UTC())
	}

	var entries []Entry
	if err := q.Order("timestamp ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	return entries, nil
}

// ListUsers returns every user with at least one entry, sorted.
func (r *Repository) ListUsers(ctx context.Context) ([]string, error) {
	var users []string
	err := r.db.WithContext(ctx).Model(&Entry{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &users).Error
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	return users, nil
}

// LoadProgress returns the user's stored progress keyed by badge ID.
func (r *Repository) LoadProgress(ctx context.Context, userID string) (map[string]BadgeProgress, error) {
	var rows []BadgeProgress
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying badge progress: %w", err)
	}
	out := make(map[string]BadgeProgress, len(rows))
	for _, row := range rows {
		out[row.BadgeID] = row
	}
	return out, nil
}

// SaveProgress upserts rows in one transaction.
func (r *Repository) SaveProgress(ctx context.Context, rows []BadgeProgress) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
				UpdateAll: true,
			}).Create(&rows[i]).Error
			if err != nil {
				return fmt.Errorf("saving progress for %s/%s: %w", rows[i].UserID, rows[i].BadgeID, err)
			}
		}
		return nil
	})
}
