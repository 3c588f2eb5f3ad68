package activitylog

import (
	"time"

	"github.com/rshade/footprint/internal/achievement"
	"github.com/rshade/footprint/internal/factors"
)

// Entry is a logged activity.
type Entry struct {
	ID             string    `gorm:"primaryKey;size:26" json:"id"`
	UserID         string    `gorm:"not null;size:128;index:idx_entries_user_time,priority:1" json:"user_id"`
	Category       string    `gorm:"not null;size:32" json:"category"`
	Activity       string    `gorm:"not null;size:64" json:"activity"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `gorm:"size:16" json:"unit"`
	SignedEmission float64   `json:"signed_emission"`
	Text           string    `gorm:"type:text" json:"text,omitempty"`
	Timestamp      time.Time `gorm:"not null;index:idx_entries_user_time,priority:2" json:"timestamp"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for Entry.
func (Entry) TableName() string {
	return "activity_entries"
}

// ToAchievement converts e to the evaluator's input form.
func (e Entry) ToAchievement() achievement.Entry {
	return achievement.Entry{
		UserID:         e.UserID,
		Category:       factors.Category(e.Category),
		Activity:       e.Activity,
		Quantity:       e.Quantity,
		SignedEmission: e.SignedEmission,
		Timestamp:      e.Timestamp,
	}
}

// ToAchievements converts a slice of entries.
func ToAchievements(entries []Entry) []achievement.Entry {
	out := make([]achievement.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.ToAchievement()
	}
	return out
}

// BadgeProgress is a user's persisted standing on one badge.
type BadgeProgress struct {
	UserID     string     `gorm:"primaryKey;size:128" json:"user_id"`
	BadgeID    string     `gorm:"primaryKey;size:64" json:"badge_id"`
	Current    float64    `json:"current"`
	Target     float64    `json:"target"`
	Percentage float64    `json:"percentage"`
	Unlocked   bool       `gorm:"not null;default:false" json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	Longest    int        `json:"longest,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for BadgeProgress.
func (BadgeProgress) TableName() string {
	return "badge_progress"
}

// ToAchievement converts the stored row to evaluator progress.
func (p BadgeProgress) ToAchievement() achievement.Progress {
	return achievement.Progress{
		BadgeID:    p.BadgeID,
		Current:    p.Current,
		Target:     p.Target,
		Percentage: p.Percentage,
		Unlocked:   p.Unlocked,
		UnlockedAt: p.UnlockedAt,
		Longest:    p.Longest,
	}
}

// ProgressFrom builds a storable row for userID.
func ProgressFrom(userID string, p achievement.Progress) BadgeProgress {
	return BadgeProgress{
		UserID:     userID,
		BadgeID:    p.BadgeID,
		Current:    p.Current,
		Target:     p.Target,
		Percentage: p.Percentage,
		Unlocked:   p.Unlocked,
		UnlockedAt: p.UnlockedAt,
		Longest:    p.Longest,
	}
}
