package achievement

import (
	"time"

	"github.com/rs/zerolog"
)

// percentScale converts ratios to percentages.
const percentScale = 100

// Evaluator computes badge progress from a user's activity history. It does
// no I/O; history is the complete snapshot to evaluate.
type Evaluator struct {
	now    func() time.Time
	loc    *time.Location
	logger zerolog.Logger
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithClock overrides the evaluator's notion of now.
func WithClock(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) { e.now = now }
}

// WithLocation sets the time zone used to find calendar days.
func WithLocation(loc *time.Location) EvaluatorOption {
	return func(e *Evaluator) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l zerolog.Logger) EvaluatorOption {
	return func(e *Evaluator) { e.logger = l }
}

// NewEvaluator returns an Evaluator using the wall clock in UTC unless
// overridden.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{now: time.Now, loc: time.UTC, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the evaluator's current time.
func (e *Evaluator) Now() time.Time {
	return e.now()
}

// Evaluate returns the user's progress value for c, in the same units as
// c.Target. Entries belonging to other users are ignored. The result is
// never negative.
func (e *Evaluator) Evaluate(userID string, c Criteria, history []Entry) float64 {
	now := e.now()
	mine := forUser(history, userID)

	var v float64
	switch r := c.Rule.(type) {
	case CountRule:
		v = e.count(r, c.Period, mine, now)
	case TotalRule:
		v = e.total(r, c.Period, mine, now)
	case StreakRule:
		v = float64(CurrentStreak(QualifyingDays(mine, r, e.loc), DayOf(now, e.loc)))
	case ReductionRule:
		v = e.reduction(c.Period, mine, now)
	default:
		e.logger.Debug().Str("user_id", userID).Msg("criteria without a rule evaluates to zero")
		return 0
	}

	v = max(v, 0)
	e.logger.Debug().
		Str("user_id", userID).
		Str("type", string(c.Type())).
		Str("period", string(c.Period)).
		Float64("current", v).
		Float64("target", c.Target).
		Msg("evaluated badge criteria")
	return v
}

// Streaks returns the current and longest streak for a streak rule.
func (e *Evaluator) Streaks(userID string, r StreakRule, history []Entry) (current, longest int) {
	today := DayOf(e.now(), e.loc)
	days := QualifyingDays(forUser(history, userID), r, e.loc)
	return CurrentStreak(days, today), LongestStreak(days, today)
}

// EvaluateBadge evaluates b and folds the result into the previous progress.
func (e *Evaluator) EvaluateBadge(userID string, b Badge, history []Entry, prev Progress) Progress {
	current := e.Evaluate(userID, b.Criteria, history)
	p := Advance(prev, b.Criteria, current, e.now())
	p.BadgeID = b.ID

	if r, ok := b.Criteria.Rule.(StreakRule); ok {
		_, p.Longest = e.Streaks(userID, r, history)
	}
	return p
}

func (e *Evaluator) count(r CountRule, p Period, history []Entry, now time.Time) float64 {
	w := p.WindowAt(now, e.loc)
	n := 0
	for _, entry := range history {
		if w.Contains(entry.Timestamp) && r.Filter.Matches(entry) {
			n++
		}
	}
	return float64(n)
}

func (e *Evaluator) total(r TotalRule, p Period, history []Entry, now time.Time) float64 {
	w := p.WindowAt(now, e.loc)
	sum := 0.0
	for _, entry := range history {
		if !w.Contains(entry.Timestamp) {
			continue
		}
		if r.Metric == MetricCO2Saved {
			if entry.SignedEmission < 0 {
				sum -= entry.SignedEmission
			}
			continue
		}
		if Filter(r.Metric).Matches(entry) {
			sum += entry.Quantity
		}
	}
	return sum
}

// reduction compares emitted CO2e in (now-L, now] with (now-2L, now-L].
// Savings are not netted against emissions.
func (e *Evaluator) reduction(p Period, history []Entry, now time.Time) float64 {
	length, ok := p.Length()
	if !ok {
		return 0
	}
	current := Window{From: now.Add(-length), To: now}
	previous := Window{From: now.Add(-2 * length), To: now.Add(-length)}

	var cur, prev float64
	for _, entry := range history {
		if entry.SignedEmission <= 0 {
			continue
		}
		switch {
		case current.Contains(entry.Timestamp):
			cur += entry.SignedEmission
		case previous.Contains(entry.Timestamp):
			prev += entry.SignedEmission
		}
	}

	if prev <= 0 || cur >= prev {
		return 0
	}
	return (prev - cur) / prev * percentScale
}

func forUser(history []Entry, userID string) []Entry {
	out := make([]Entry, 0, len(history))
	for _, e := range history {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
