package achievement

import "time"

// Period bounds which entries a badge considers.
type Period string

// Periods.
const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodYear    Period = "year"
	PeriodAllTime Period = "all_time"
)

const day = 24 * time.Hour

// IsValid reports whether p is a known period.
func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAllTime:
		return true
	}
	return false
}

// Length returns the rolling length of the period. All-time has no length.
func (p Period) Length() (time.Duration, bool) {
	switch p {
	case PeriodDay:
		return day, true
	case PeriodWeek:
		return 7 * day, true
	case PeriodMonth:
		return 30 * day, true
	case PeriodYear:
		return 365 * day, true
	default:
		return 0, false
	}
}

// Window is a half-open time range (From, To]. A zero From is unbounded.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.After(w.To) {
		return false
	}
	return w.From.IsZero() || t.After(w.From)
}

// Bounded reports whether the window has a lower bound.
func (w Window) Bounded() bool {
	return !w.From.IsZero()
}

// WindowAt returns the window ending at now. "day" is the calendar day in
// loc; longer periods are rolling. The all-time window is unbounded below
// and above.
func (p Period) WindowAt(now time.Time, loc *time.Location) Window {
	switch p {
	case PeriodDay:
		local := now.In(loc)
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		// Contains is exclusive at From; step back so midnight itself counts.
		return Window{From: midnight.Add(-time.Nanosecond), To: now}
	case PeriodAllTime, "":
		return Window{To: maxTime}
	default:
		length, _ := p.Length()
		return Window{From: now.Add(-length), To: now}
	}
}

// maxTime is later than any logged timestamp.
//
//nolint:gochecknoglobals // Sentinel upper bound.
var maxTime = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
