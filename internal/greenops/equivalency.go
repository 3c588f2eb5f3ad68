package greenops

import (
	"fmt"
	"math"
)

// candidate describes one comparison in priority order.
type candidate struct {
	kind   EquivalencyType
	factor float64
	min    float64
	max    float64
	text   func(formatted string) string
}

//nolint:gochecknoglobals // Fixed priority list of comparisons.
var candidates = []candidate{
	{
		kind:   EquivalencyCarKilometers,
		factor: CarKgPerKm,
		min:    MinCarKm,
		max:    math.Inf(1),
		text: func(v string) string {
			return fmt.Sprintf("Equivalent to driving ~%s km in an average gasoline car", v)
		},
	},
	{
		kind:   EquivalencyTreeDays,
		factor: TreeKgPerDay,
		min:    MinTreeDays,
		max:    math.Inf(1),
		text: func(v string) string {
			return fmt.Sprintf("About %s days of CO₂ absorption by one tree", v)
		},
	},
	{
		kind:   EquivalencySmartphoneCharges,
		factor: SmartphoneChargeKg,
		min:    MinSmartphoneCharges,
		max:    MaxSmartphoneCharges,
		text: func(v string) string {
			return fmt.Sprintf("Same as charging ~%s smartphones", v)
		},
	},
}

// Compare returns up to MaxComparisons equivalencies for kg CO2e, in fixed
// order: car kilometers, tree days, smartphone charges. A comparison is only
// included when its value falls inside its display bounds. The sign of kg is
// ignored so savings and emissions compare the same way.
func Compare(kg float64) []Equivalency {
	kg = math.Abs(kg)
	if kg == 0 || math.IsInf(kg, 0) || math.IsNaN(kg) {
		return nil
	}

	out := make([]Equivalency, 0, MaxComparisons)
	for _, c := range candidates {
		if len(out) == MaxComparisons {
			break
		}
		v := kg / c.factor
		if v < c.min || v > c.max {
			continue
		}
		formatted := formatEquivalencyValue(v)
		out = append(out, Equivalency{
			Type:           c.kind,
			Value:          v,
			FormattedValue: formatted,
			Text:           c.text(formatted),
		})
	}
	return out
}

// Texts returns just the sentences of Compare(kg).
func Texts(kg float64) []string {
	eqs := Compare(kg)
	out := make([]string, 0, len(eqs))
	for _, e := range eqs {
		out = append(out, e.Text)
	}
	return out
}

// formatEquivalencyValue rounds to an integer with separators, switching to
// abbreviated notation for very large values.
func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
