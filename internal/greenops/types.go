// Package greenops turns kg CO2e values into relatable equivalencies such as
// kilometers driven, days of tree absorption and smartphone charges.
package greenops

import "fmt"

// EquivalencyType identifies a comparison.
type EquivalencyType int

const (
	// EquivalencyCarKilometers compares against driving an average gasoline car.
	EquivalencyCarKilometers EquivalencyType = iota

	// EquivalencyTreeDays compares against one tree's daily CO2 absorption.
	EquivalencyTreeDays

	// EquivalencySmartphoneCharges compares against full smartphone charges.
	EquivalencySmartphoneCharges
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyCarKilometers:
		return "CarKilometers"
	case EquivalencyTreeDays:
		return "TreeDays"
	case EquivalencySmartphoneCharges:
		return "SmartphoneCharges"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// Equivalency is a single calculated comparison.
type Equivalency struct {
	// Type identifies the comparison.
	Type EquivalencyType `json:"type"`

	// Value is the raw equivalency value.
	Value float64 `json:"value"`

	// FormattedValue is the display-ready number.
	FormattedValue string `json:"formatted_value"`

	// Text is the full sentence, e.g. "Equivalent to driving ~10 km in an average car".
	Text string `json:"text"`
}
