package achievement

import (
	"fmt"
	"math"
	"strings"
)

// CriteriaType selects the progress algorithm.
type CriteriaType string

// Criteria types.
const (
	TypeCount     CriteriaType = "count"
	TypeTotal     CriteriaType = "total"
	TypeStreak    CriteriaType = "streak"
	TypeReduction CriteriaType = "reduction"
)

// Comparison decides how current progress is compared with the target.
type Comparison string

// Comparisons.
const (
	ComparisonGTE Comparison = "gte"
	ComparisonLTE Comparison = "lte"
	ComparisonEQ  Comparison = "eq"
)

// eqTolerance absorbs float noise for "eq" badges.
const eqTolerance = 1e-9

// Satisfied reports whether current meets target under c.
func (c Comparison) Satisfied(current, target float64) bool {
	switch c {
	case ComparisonLTE:
		return current <= target
	case ComparisonEQ:
		return math.Abs(current-target) <= eqTolerance
	default:
		return current >= target
	}
}

// MetricCO2Saved makes a total rule sum the emission saved by entries with
// a negative signed emission.
const MetricCO2Saved = "co2_saved"

// Rule is the algorithm-specific part of a badge criteria. The concrete
// types are CountRule, TotalRule, StreakRule and ReductionRule.
type Rule interface {
	Type() CriteriaType
}

// CountRule counts entries selected by Filter within the period.
type CountRule struct {
	Filter Filter
}

// TotalRule sums over entries within the period. With Metric set to
// MetricCO2Saved it sums saved emission; otherwise it sums the quantity of
// entries selected by Filter(Metric).
type TotalRule struct {
	Metric string
}

// StreakRule counts consecutive qualifying days ending today or yesterday.
// With Exclude set, a day qualifies when something was logged and none of
// it matched Exclude. Otherwise a day qualifies when an entry matched Filter.
type StreakRule struct {
	Filter  Filter
	Exclude Filter
}

// ReductionRule measures the percentage decrease of emissions in the
// current period against the preceding period of equal length.
type ReductionRule struct{}

func (CountRule) Type() CriteriaType     { return TypeCount }
func (TotalRule) Type() CriteriaType     { return TypeTotal }
func (StreakRule) Type() CriteriaType    { return TypeStreak }
func (ReductionRule) Type() CriteriaType { return TypeReduction }

// Criteria is a validated badge requirement.
type Criteria struct {
	Rule       Rule
	Target     float64
	Period     Period
	Comparison Comparison
}

// Type returns the criteria's algorithm.
func (c Criteria) Type() CriteriaType {
	if c.Rule == nil {
		return ""
	}
	return c.Rule.Type()
}

// CriteriaSpec is the loosely-shaped criteria as written in a catalogue.
type CriteriaSpec struct {
	Type       string  `yaml:"type" json:"type"`
	Target     float64 `yaml:"target" json:"target"`
	Period     string  `yaml:"period,omitempty" json:"period,omitempty"`
	Activity   string  `yaml:"activity,omitempty" json:"activity,omitempty"`
	Exclude    string  `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Comparison string  `yaml:"comparison,omitempty" json:"comparison,omitempty"`
}

// Build validates s and returns the typed criteria. Every failure
// wraps ErrInvalidCriteria.
func (s CriteriaSpec) Build() (Criteria, error) {
	if s.Target <= 0 || math.IsNaN(s.Target) || math.IsInf(s.Target, 0) {
		return Criteria{}, fmt.Errorf("%w: target must be positive, got %v", ErrInvalidCriteria, s.Target)
	}

	cmp := Comparison(strings.ToLower(s.Comparison))
	switch cmp {
	case "":
		cmp = ComparisonGTE
	case ComparisonGTE, ComparisonLTE, ComparisonEQ:
	default:
		return Criteria{}, fmt.Errorf("%w: unknown comparison %q", ErrInvalidCriteria, s.Comparison)
	}

	period := Period(strings.ToLower(s.Period))
	if period != "" && !period.IsValid() {
		return Criteria{}, fmt.Errorf("%w: unknown period %q", ErrInvalidCriteria, s.Period)
	}

	c := Criteria{Target: s.Target, Period: period, Comparison: cmp}

	switch CriteriaType(strings.ToLower(s.Type)) {
	case TypeCount:
		if s.Exclude != "" {
			return Criteria{}, fmt.Errorf("%w: exclude applies only to streaks", ErrInvalidCriteria)
		}
		c.Rule = CountRule{Filter: Filter(s.Activity)}
	case TypeTotal:
		if s.Activity == "" {
			return Criteria{}, fmt.Errorf("%w: total needs an activity or %q", ErrInvalidCriteria, MetricCO2Saved)
		}
		c.Rule = TotalRule{Metric: s.Activity}
	case TypeStreak:
		if s.Activity != "" && s.Exclude != "" {
			return Criteria{}, fmt.Errorf("%w: streak takes activity or exclude, not both", ErrInvalidCriteria)
		}
		if period != "" && period != PeriodAllTime {
			return Criteria{}, fmt.Errorf("%w: streaks span all time, got period %q", ErrInvalidCriteria, period)
		}
		c.Rule = StreakRule{Filter: Filter(s.Activity), Exclude: Filter(s.Exclude)}
	case TypeReduction:
		if period == "" {
			period = PeriodWeek
		}
		if period == PeriodAllTime {
			return Criteria{}, fmt.Errorf("%w: reduction needs a bounded period", ErrInvalidCriteria)
		}
		c.Period = period
		c.Rule = ReductionRule{}
	default:
		return Criteria{}, fmt.Errorf("%w: unknown type %q", ErrInvalidCriteria, s.Type)
	}

	if c.Period == "" {
		c.Period = PeriodAllTime
	}
	return c, nil
}

// Spec returns the catalogue form of c.
func (c Criteria) Spec() CriteriaSpec {
	s := CriteriaSpec{
		Type:       string(c.Type()),
		Target:     c.Target,
		Period:     string(c.Period),
		Comparison: string(c.Comparison),
	}
	switch r := c.Rule.(type) {
	case CountRule:
		s.Activity = string(r.Filter)
	case TotalRule:
		s.Activity = r.Metric
	case StreakRule:
		s.Activity = string(r.Filter)
		s.Exclude = string(r.Exclude)
	}
	return s
}
