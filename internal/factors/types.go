// Package factors holds the emission factor table: per-activity signed
// emission factors, impact tiers, alternative activities, tips and the unit
// conversion table.
//
// A Table is built once at startup (from the embedded default or a user
// supplied file) and is read-only afterwards, so it can be shared by every
// component without locking.
package factors

import "fmt"

// Category groups activities that share a default canonical unit.
type Category string

// Known activity categories.
const (
	CategoryTransportation Category = "transportation"
	CategoryEnergy         Category = "energy"
	CategoryFood           Category = "food"
	CategoryWaste          Category = "waste"
)

// Categories returns the known categories in display order.
func Categories() []Category {
	return []Category{CategoryTransportation, CategoryEnergy, CategoryFood, CategoryWaste}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTransportation, CategoryEnergy, CategoryFood, CategoryWaste:
		return true
	default:
		return false
	}
}

// Tier is the coarse per-unit severity of an activity.
type Tier string

// Impact tiers, lowest first.
const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierVeryHigh Tier = "very_high"
)

// IsValid reports whether t is a known tier.
func (t Tier) IsValid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh, TierVeryHigh:
		return true
	default:
		return false
	}
}

// Label returns a human-readable tier name.
func (t Tier) Label() string {
	switch t {
	case TierLow:
		return "Low"
	case TierMedium:
		return "Medium"
	case TierHigh:
		return "High"
	case TierVeryHigh:
		return "Very high"
	default:
		return fmt.Sprintf("Tier(%s)", string(t))
	}
}

// Factor is the emission coefficient of a single activity.
type Factor struct {
	// Category is the activity's category.
	Category Category `yaml:"category" json:"category"`

	// Activity is the activity key (e.g. "driving").
	Activity string `yaml:"activity" json:"activity"`

	// PerUnit is kg CO2e per canonical unit. Negative means a net reduction.
	PerUnit float64 `yaml:"factor" json:"factor"`

	// Unit is the canonical unit the factor is expressed in.
	Unit string `yaml:"unit" json:"unit"`
}

// IsReduction reports whether logging this activity reduces net emissions.
func (f Factor) IsReduction() bool {
	return f.PerUnit < 0
}

// UnitConversion maps a set of unit synonyms onto a family's canonical unit.
type UnitConversion struct {
	// Family is the measurement family (distance, energy, volume, mass).
	Family string `yaml:"family" json:"family"`

	// Scale multiplies an amount in this unit to get the canonical amount.
	Scale float64 `yaml:"scale" json:"scale"`

	// Aliases are the lowercase spellings recognized for this unit.
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// Unit families.
const (
	FamilyDistance = "distance"
	FamilyEnergy   = "energy"
	FamilyVolume   = "volume"
	FamilyMass     = "mass"
)
