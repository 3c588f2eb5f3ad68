package achievement

import (
	"math"
	"time"
)

// Progress is a user's standing on one badge.
type Progress struct {
	BadgeID    string     `json:"badge_id"`
	Current    float64    `json:"current"`
	Target     float64    `json:"target"`
	Percentage float64    `json:"percentage"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`

	// Longest is the longest streak, set for streak badges only.
	Longest int `json:"longest,omitempty"`
}

// Advance folds a freshly evaluated value into prev. Unlocking is one-way:
// once a badge is unlocked it stays unlocked, including reduction badges
// whose value later falls back below target.
func Advance(prev Progress, c Criteria, current float64, now time.Time) Progress {
	p := Progress{
		BadgeID:    prev.BadgeID,
		Current:    current,
		Target:     c.Target,
		Percentage: Percentage(c, current),
		Unlocked:   prev.Unlocked,
		UnlockedAt: prev.UnlockedAt,
	}
	if !p.Unlocked && c.Comparison.Satisfied(current, c.Target) {
		at := now
		p.Unlocked = true
		p.UnlockedAt = &at
	}
	return p
}

// NewlyUnlocked reports whether next unlocked a badge prev had not.
func NewlyUnlocked(prev, next Progress) bool {
	return next.Unlocked && !prev.Unlocked
}

// Percentage returns how close current is to the target, clamped to
// [0, 100]. A satisfied criteria is always 100.
func Percentage(c Criteria, current float64) float64 {
	if c.Target <= 0 {
		return 0
	}
	if c.Comparison.Satisfied(current, c.Target) {
		return percentScale
	}

	var pct float64
	switch c.Comparison {
	case ComparisonLTE:
		// Over the limit; closer to the limit is better.
		pct = c.Target / current * percentScale
	case ComparisonEQ:
		pct = (1 - math.Abs(current-c.Target)/c.Target) * percentScale
	default:
		pct = current / c.Target * percentScale
	}
	return clamp(pct, 0, percentScale)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
