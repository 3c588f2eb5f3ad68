// Package tracker wires the parsing, emission and badge components into the
// operations the CLI exposes: parse a phrase, log it for a user, and keep the
// user's badge progress current.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/footprint/internal/achievement"
	"github.com/rshade/footprint/internal/activitylog"
	"github.com/rshade/footprint/internal/emission"
	"github.com/rshade/footprint/internal/factors"
	"github.com/rshade/footprint/internal/parser"
	"github.com/rshade/footprint/internal/units"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrNoMatch indicates that no rule (and no enhancer) could read the text.
// Callers should offer parser.Suggest(text) to the user.
const ErrNoMatch = constError("could not recognize an activity")

// Store is the log repository the service reads and writes.
type Store interface {
	Append(ctx context.Context, e *activitylog.Entry) error
	ListByUser(ctx context.Context, userID string, rng activitylog.Range) ([]activitylog.Entry, error)
	ListUsers(ctx context.Context) ([]string, error)
	LoadProgress(ctx context.Context, userID string) (map[string]activitylog.BadgeProgress, error)
	SaveProgress(ctx context.Context, rows []activitylog.BadgeProgress) error
}

// Result is the output of the parse and calculate pipeline.
type Result struct {
	Category         factors.Category `json:"category"`
	Activity         string           `json:"activity"`
	Amount           float64          `json:"amount"`
	Unit             string           `json:"unit"`
	TotalEmission    float64          `json:"total_emission"`
	AbsoluteEmission float64          `json:"absolute_emission"`
	IsSaving         bool             `json:"is_saving"`
	ImpactTier       factors.Tier     `json:"impact_tier"`
	Comparisons      []string         `json:"comparisons"`
	SuggestionText   string           `json:"suggestion_text"`
	Confidence       float64          `json:"confidence"`
	MatchedSpan      string           `json:"matched_span,omitempty"`
	Source           parser.Source    `json:"source"`
}

// BadgeStatus pairs a badge with a user's progress on it.
type BadgeStatus struct {
	Badge         achievement.Badge    `json:"-"`
	Progress      achievement.Progress `json:"progress"`
	NewlyUnlocked bool                 `json:"newly_unlocked"`
}

// LogResult is the outcome of logging one activity.
type LogResult struct {
	Result   *Result             `json:"result"`
	Entry    activitylog.Entry   `json:"entry"`
	Unlocked []achievement.Badge `json:"-"`
}

// Service runs the activity pipeline and badge bookkeeping.
type Service struct {
	store         Store
	table         *factors.Table
	matcher       *parser.Matcher
	normalizer    *units.Normalizer
	calculator    *emission.Calculator
	evaluator     *achievement.Evaluator
	catalogue     *achievement.Catalogue
	enhancer      parser.Enhancer
	minConfidence float64
	logger        zerolog.Logger
	locks         userLocks
}

// Option configures a Service.
type Option func(*Service)

// WithTable replaces the embedded factor table.
func WithTable(t *factors.Table) Option {
	return func(s *Service) { s.table = t }
}

// WithCatalogue replaces the embedded badge catalogue.
func WithCatalogue(c *achievement.Catalogue) Option {
	return func(s *Service) { s.catalogue = c }
}

// WithEvaluator sets the badge evaluator, e.g. to pin the clock or zone.
func WithEvaluator(e *achievement.Evaluator) Option {
	return func(s *Service) { s.evaluator = e }
}

// WithEnhancer consults e when no rule matches or the rule's confidence is
// below minConfidence.
func WithEnhancer(e parser.Enhancer, minConfidence float64) Option {
	return func(s *Service) {
		s.enhancer = e
		s.minConfidence = minConfidence
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New returns a Service over store. store may be nil for parse-only use.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: zerolog.Nop(),
		locks:  userLocks{locks: make(map[string]*sync.Mutex)},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.table == nil {
		s.table = factors.Default()
	}
	if s.catalogue == nil {
		s.catalogue = achievement.DefaultCatalogue()
	}
	if s.evaluator == nil {
		s.evaluator = achievement.NewEvaluator(achievement.WithLogger(s.logger))
	}
	s.matcher = parser.NewDefaultMatcher(parser.WithLogger(s.logger))
	s.normalizer = units.NewNormalizer(s.table)
	s.calculator = emission.NewCalculator(s.table, emission.WithLogger(s.logger))
	return s
}

// Catalogue returns the badge catalogue in use.
func (s *Service) Catalogue() *achievement.Catalogue {
	return s.catalogue
}

// Table returns the factor table in use.
func (s *Service) Table() *factors.Table {
	return s.table
}

// Parse extracts an activity from text and calculates its emissions. It
// returns ErrNoMatch when nothing was recognized and
// emission.ErrUnknownActivity when the activity has no factor.
func (s *Service) Parse(ctx context.Context, text string) (*Result, error) {
	parsed := s.extract(ctx, text)
	if parsed == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, text)
	}

	q, err := s.quantity(parsed)
	if err != nil {
		return nil, err
	}

	res, err := s.calculator.Calculate(parsed.Category, parsed.Activity, q.Amount, q.Unit)
	if err != nil {
		return nil, err
	}

	return &Result{
		Category:         res.Category,
		Activity:         res.Activity,
		Amount:           res.Amount,
		Unit:             res.Unit,
		TotalEmission:    res.TotalEmission,
		AbsoluteEmission: res.AbsoluteEmission,
		IsSaving:         res.IsSaving,
		ImpactTier:       res.ImpactTier,
		Comparisons:      res.Comparisons,
		SuggestionText:   res.SuggestionText,
		Confidence:       parsed.Confidence,
		MatchedSpan:      parsed.MatchedSpan,
		Source:           parsed.Source,
	}, nil
}

// extract runs the rules and, when configured, the enhancer. Enhancer
// failures fall back to the rule result.
func (s *Service) extract(ctx context.Context, text string) *parser.ParsedActivity {
	base, _ := s.matcher.Match(text)
	if s.enhancer == nil || (base != nil && base.Confidence >= s.minConfidence) {
		return base
	}

	enhanced, err := s.enhancer.Enhance(ctx, text, base)
	if err != nil {
		s.logger.Warn().Err(err).Msg("parse enhancer failed, using rule result")
		return base
	}
	if enhanced == nil {
		return base
	}
	f, ok := s.table.Lookup(enhanced.Category, enhanced.Activity)
	if !ok || enhanced.Amount < 0 {
		s.logger.Debug().Str("activity", enhanced.Activity).Msg("discarding enhancer result outside the factor table")
		return base
	}
	if q, err := s.quantity(enhanced); err != nil || (q.Unit != "" && !strings.EqualFold(q.Unit, f.Unit)) {
		s.logger.Debug().Str("activity", enhanced.Activity).Str("unit", enhanced.Unit).
			Msg("discarding enhancer result with a unit the activity is not measured in")
		return base
	}
	s.logger.Debug().Str("activity", enhanced.Activity).Float64("confidence", enhanced.Confidence).
		Msg("using enhancer result")
	return enhanced
}

// quantity normalizes the parsed amount. An unrecognized unit yields an
// empty Unit, meaning the amount is taken as already in the factor's unit.
func (s *Service) quantity(p *parser.ParsedActivity) (units.Quantity, error) {
	q, err := s.normalizer.Normalize(p.Amount, p.Unit, p.Category)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("normalizing %v %s: %w", p.Amount, p.Unit, err)
	}
	if !s.normalizer.IsRecognized(p.Unit) {
		q.Unit = ""
	}
	return q, nil
}

// Log parses text, appends it to the user's log at the given time (now when
// zero) and recomputes the user's badges.
func (s *Service) Log(ctx context.Context, userID, text string, at time.Time) (*LogResult, error) {
	if s.store == nil {
		return nil, errors.New("no activity store configured")
	}
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	res, err := s.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = s.evaluator.Now()
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	entry := activitylog.Entry{
		UserID:         userID,
		Category:       string(res.Category),
		Activity:       res.Activity,
		Quantity:       res.Amount,
		Unit:           res.Unit,
		SignedEmission: res.TotalEmission,
		Text:           text,
		Timestamp:      at,
	}
	if err = s.store.Append(ctx, &entry); err != nil {
		return nil, err
	}

	statuses, err := s.recomputeLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &LogResult{Result: res, Entry: entry}
	for _, st := range statuses {
		if st.NewlyUnlocked {
			out.Unlocked = append(out.Unlocked, st.Badge)
		}
	}
	s.logger.Info().Str("user_id", userID).Str("activity", res.Activity).
		Float64("kg_co2e", res.TotalEmission).Int("unlocked", len(out.Unlocked)).Msg("activity logged")
	return out, nil
}

// History returns the user's entries within rng.
func (s *Service) History(ctx context.Context, userID string, rng activitylog.Range) ([]activitylog.Entry, error) {
	if s.store == nil {
		return nil, errors.New("no activity store configured")
	}
	return s.store.ListByUser(ctx, userID, rng)
}

// Recompute re-evaluates every badge for userID from the full log and
// persists the result, in catalogue order.
func (s *Service) Recompute(ctx context.Context, userID string) ([]BadgeStatus, error) {
	if s.store == nil {
		return nil, errors.New("no activity store configured")
	}
	unlock := s.locks.lock(userID)
	defer unlock()
	return s.recomputeLocked(ctx, userID)
}

// RecomputeAll recomputes badges for every user with at least one entry,
// bounded to one worker per CPU. It returns the badges each user newly
// unlocked.
func (s *Service) RecomputeAll(ctx context.Context) (map[string][]achievement.Badge, error) {
	if s.store == nil {
		return nil, errors.New("no activity store configured")
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	unlocked := make(map[string][]achievement.Badge, len(users))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, userID := range users {
		g.Go(func() error {
			statuses, rerr := s.Recompute(gCtx, userID)
			if rerr != nil {
				return fmt.Errorf("recomputing %s: %w", userID, rerr)
			}
			var badges []achievement.Badge
			for _, st := range statuses {
				if st.NewlyUnlocked {
					badges = append(badges, st.Badge)
				}
			}
			mu.Lock()
			unlocked[userID] = badges
			mu.Unlock()
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info().Int("users", len(users)).Msg("recomputed badge progress")
	return unlocked, nil
}

func (s *Service) recomputeLocked(ctx context.Context, userID string) ([]BadgeStatus, error) {
	entries, err := s.store.ListByUser(ctx, userID, activitylog.Range{})
	if err != nil {
		return nil, err
	}
	stored, err := s.store.LoadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := activitylog.ToAchievements(entries)
	badges := s.catalogue.Badges()
	statuses := make([]BadgeStatus, 0, len(badges))
	rows := make([]activitylog.BadgeProgress, 0, len(badges))

	for _, b := range badges {
		prev := achievement.Progress{BadgeID: b.ID}
		if row, ok := stored[b.ID]; ok {
			prev = row.ToAchievement()
		}
		next := s.evaluator.EvaluateBadge(userID, b, history, prev)
		statuses = append(statuses, BadgeStatus{
			Badge:         b,
			Progress:      next,
			NewlyUnlocked: achievement.NewlyUnlocked(prev, next),
		})
		rows = append(rows, activitylog.ProgressFrom(userID, next))
	}

	if err = s.store.SaveProgress(ctx, rows); err != nil {
		return nil, err
	}
	return statuses, nil
}

// userLocks serializes read-modify-write of one user's progress.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
