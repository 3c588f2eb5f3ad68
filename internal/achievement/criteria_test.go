package achievement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteriaSpec_Build(t *testing.T) {
	tests := []struct {
		name       string
		spec       CriteriaSpec
		wantRule   Rule
		wantPeriod Period
		wantCmp    Comparison
	}{
		{
			name:       "count defaults",
			spec:       CriteriaSpec{Type: "count", Target: 1},
			wantRule:   CountRule{},
			wantPeriod: PeriodAllTime,
			wantCmp:    ComparisonGTE,
		},
		{
			name:       "count with compound filter",
			spec:       CriteriaSpec{Type: "count", Target: 10, Activity: "green_transport", Period: "month"},
			wantRule:   CountRule{Filter: FilterGreenTransport},
			wantPeriod: PeriodMonth,
			wantCmp:    ComparisonGTE,
		},
		{
			name:       "total co2 saved",
			spec:       CriteriaSpec{Type: "TOTAL", Target: 10, Activity: "co2_saved"},
			wantRule:   TotalRule{Metric: MetricCO2Saved},
			wantPeriod: PeriodAllTime,
			wantCmp:    ComparisonGTE,
		},
		{
			name:       "streak with exclusion",
			spec:       CriteriaSpec{Type: "streak", Target: 7, Exclude: "driving"},
			wantRule:   StreakRule{Exclude: "driving"},
			wantPeriod: PeriodAllTime,
			wantCmp:    ComparisonGTE,
		},
		{
			name:       "reduction defaults to a week",
			spec:       CriteriaSpec{Type: "reduction", Target: 10},
			wantRule:   ReductionRule{},
			wantPeriod: PeriodWeek,
			wantCmp:    ComparisonGTE,
		},
		{
			name:       "lte comparison",
			spec:       CriteriaSpec{Type: "total", Target: 5, Activity: "driving", Period: "day", Comparison: "lte"},
			wantRule:   TotalRule{Metric: "driving"},
			wantPeriod: PeriodDay,
			wantCmp:    ComparisonLTE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.spec.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantRule, c.Rule)
			assert.Equal(t, tt.wantPeriod, c.Period)
			assert.Equal(t, tt.wantCmp, c.Comparison)
			assert.InDelta(t, tt.spec.Target, c.Target, 1e-9)
		})
	}
}

func TestCriteriaSpec_Build_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec CriteriaSpec
	}{
		{"zero target", CriteriaSpec{Type: "count", Target: 0}},
		{"negative target", CriteriaSpec{Type: "count", Target: -3}},
		{"NaN target", CriteriaSpec{Type: "count", Target: math.NaN()}},
		{"unknown type", CriteriaSpec{Type: "vibes", Target: 1}},
		{"unknown period", CriteriaSpec{Type: "count", Target: 1, Period: "fortnight"}},
		{"unknown comparison", CriteriaSpec{Type: "count", Target: 1, Comparison: "gt"}},
		{"total without metric", CriteriaSpec{Type: "total", Target: 1}},
		{"count with exclude", CriteriaSpec{Type: "count", Target: 1, Exclude: "driving"}},
		{"streak with both filters", CriteriaSpec{Type: "streak", Target: 1, Activity: "walking", Exclude: "driving"}},
		{"streak with a period", CriteriaSpec{Type: "streak", Target: 1, Period: "week"}},
		{"unbounded reduction", CriteriaSpec{Type: "reduction", Target: 1, Period: "all_time"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Build()
			require.ErrorIs(t, err, ErrInvalidCriteria)
		})
	}
}

func TestCriteria_SpecRoundTrip(t *testing.T) {
	spec := CriteriaSpec{Type: "streak", Target: 7, Period: "all_time", Exclude: "driving", Comparison: "gte"}
	c, err := spec.Build()
	require.NoError(t, err)
	assert.Equal(t, spec, c.Spec())
}

func TestComparison_Satisfied(t *testing.T) {
	assert.True(t, ComparisonGTE.Satisfied(10, 10))
	assert.False(t, ComparisonGTE.Satisfied(9.9, 10))
	assert.True(t, ComparisonLTE.Satisfied(3, 5))
	assert.False(t, ComparisonLTE.Satisfied(6, 5))
	assert.True(t, ComparisonEQ.Satisfied(0.1+0.2, 0.3))
	assert.False(t, ComparisonEQ.Satisfied(4, 5))
}
