// Package emission turns a normalized activity amount into a signed emission
// result with an impact tier, equivalency comparisons and a suggestion.
package emission

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rshade/footprint/internal/factors"
	"github.com/rshade/footprint/internal/greenops"
)

// maxSuggestionSentences caps the combined suggestion text.
const maxSuggestionSentences = 2

// Result is the outcome of an emission calculation.
type Result struct {
	Category factors.Category `json:"category"`
	Activity string           `json:"activity"`
	Amount   float64          `json:"amount"`
	Unit     string           `json:"unit"`

	// Factor is the kg CO2e per unit that was applied.
	Factor float64 `json:"factor"`

	// TotalEmission is Amount * Factor; negative for net reductions.
	TotalEmission float64 `json:"total_emission"`

	// AbsoluteEmission is |TotalEmission|.
	AbsoluteEmission float64 `json:"absolute_emission"`

	// IsSaving is true when TotalEmission < 0.
	IsSaving bool `json:"is_saving"`

	ImpactTier     factors.Tier `json:"impact_tier"`
	Comparisons    []string     `json:"comparisons"`
	SuggestionText string       `json:"suggestion_text"`
}

// Calculator computes emission results from a factor table.
type Calculator struct {
	table  *factors.Table
	logger zerolog.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the debug logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Calculator) { c.logger = l }
}

// NewCalculator returns a Calculator backed by table.
func NewCalculator(table *factors.Table, opts ...Option) *Calculator {
	c := &Calculator{table: table, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate resolves the factor for (category, activity) and computes the
// signed emission of amount. Returns ErrUnknownActivity when the table has
// no such pair and ErrUnitMismatch when unit is set and is not the factor's
// unit. An empty unit means amount is already in the factor's unit.
func (c *Calculator) Calculate(category factors.Category, activity string, amount float64, unit string) (Result, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	f, ok := c.table.Lookup(category, activity)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s/%s", ErrUnknownActivity, category, activity)
	}
	if unit != "" && !strings.EqualFold(unit, f.Unit) {
		c.logger.Debug().Str("activity", activity).Str("unit", unit).Str("factor_unit", f.Unit).
			Msg("amount unit differs from factor unit")
		return Result{}, fmt.Errorf("%w: %s is measured in %s, got %s", ErrUnitMismatch, activity, f.Unit, unit)
	}

	total := amount * f.PerUnit
	tier := c.table.TierOf(activity)

	return Result{
		Category:         category,
		Activity:         activity,
		Amount:           amount,
		Unit:             f.Unit,
		Factor:           f.PerUnit,
		TotalEmission:    total,
		AbsoluteEmission: math.Abs(total),
		IsSaving:         total < 0,
		ImpactTier:       tier,
		Comparisons:      greenops.Texts(total),
		SuggestionText:   c.suggest(f, amount, total, tier),
	}, nil
}

// suggest combines, in order, an alternative-activity sentence, the tier's
// encouragement and the activity tip, keeping at most two sentences.
func (c *Calculator) suggest(f factors.Factor, amount, total float64, tier factors.Tier) string {
	sentences := make([]string, 0, maxSuggestionSentences+1)

	if alt, saving, ok := c.alternative(f, amount, total); ok {
		sentences = append(sentences, fmt.Sprintf("Try %s instead to save %s.",
			DisplayName(alt), greenops.FormatKg(saving, 2)))
	}
	sentences = append(sentences, encouragement(tier))
	if tip, ok := c.table.Tip(f.Activity); ok {
		sentences = append(sentences, tip)
	}

	if len(sentences) > maxSuggestionSentences {
		sentences = sentences[:maxSuggestionSentences]
	}
	return strings.Join(sentences, " ")
}

// alternative recomputes the first listed alternative at the same amount and
// reports it only when it emits less.
func (c *Calculator) alternative(f factors.Factor, amount, total float64) (string, float64, bool) {
	alts := c.table.Alternatives(f.Activity)
	if len(alts) == 0 {
		return "", 0, false
	}
	altFactor, ok := c.table.ByActivity(alts[0])
	if !ok {
		return "", 0, false
	}
	altTotal := amount * altFactor.PerUnit
	if altTotal >= total {
		return "", 0, false
	}
	return alts[0], total - altTotal, true
}

func encouragement(tier factors.Tier) string {
	switch tier {
	case factors.TierLow:
		return "Great choice, this is one of the lowest-impact options."
	case factors.TierHigh:
		return "This one adds up quickly; occasional swaps make a real difference."
	case factors.TierVeryHigh:
		return "This is among the highest-impact activities, so cutting back here pays off most."
	default:
		return "Not bad; small changes here add up over time."
	}
}

// DisplayName turns an activity key into words, e.g. "electric_car" -> "electric car".
func DisplayName(activity string) string {
	return strings.ReplaceAll(activity, "_", " ")
}
