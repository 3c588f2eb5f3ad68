package achievement

import (
	"sort"
	"time"
)

// DayOf returns the calendar date of t in loc, as midnight UTC. Dates in
// this form compare with Equal and step with AddDate without DST surprises.
func DayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// QualifyingDays returns the distinct dates, in loc, on which the rule's
// condition holds. With an exclusion the candidate dates are those with any
// entry; a date is dropped if any of its entries matches the exclusion.
func QualifyingDays(history []Entry, rule StreakRule, loc *time.Location) []time.Time {
	include := make(map[time.Time]struct{})
	disqualified := make(map[time.Time]struct{})

	for _, e := range history {
		d := DayOf(e.Timestamp, loc)
		if rule.Exclude != "" {
			include[d] = struct{}{}
			if rule.Exclude.Matches(e) {
				disqualified[d] = struct{}{}
			}
			continue
		}
		if rule.Filter.Matches(e) {
			include[d] = struct{}{}
		}
	}

	out := make([]time.Time, 0, len(include))
	for d := range include {
		if _, bad := disqualified[d]; !bad {
			out = append(out, d)
		}
	}
	return out
}

// CurrentStreak returns the run of consecutive days ending at the most
// recent qualifying date, or 0 when that date is before yesterday. Dates
// after today are ignored. days need not be sorted or distinct.
func CurrentStreak(days []time.Time, today time.Time) int {
	sorted := distinctDescending(days, today)
	if len(sorted) == 0 {
		return 0
	}

	yesterday := today.AddDate(0, 0, -1)
	if sorted[0].Before(yesterday) {
		return 0
	}

	streak := 1
	for i := 1; i < len(sorted); i++ {
		if !sorted[i].Equal(sorted[i-1].AddDate(0, 0, -1)) {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive days up to today.
func LongestStreak(days []time.Time, today time.Time) int {
	sorted := distinctDescending(days, today)
	if len(sorted) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1].AddDate(0, 0, -1)) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

func distinctDescending(days []time.Time, today time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(days))
	out := make([]time.Time, 0, len(days))
	for _, d := range days {
		if d.After(today) {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}
