// Package units converts captured amounts into the canonical unit used by
// the emission factor table.
package units

import (
	"fmt"
	"math"
	"strings"

	"github.com/rshade/footprint/internal/factors"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors returned by Normalize.
var (
	// ErrNegativeAmount indicates a negative input amount.
	ErrNegativeAmount = constError("negative amount")

	// ErrCalculationOverflow indicates an Inf or NaN input or result.
	ErrCalculationOverflow = constError("calculation overflow")

	// ErrIncompatibleUnit indicates a recognized unit whose family no
	// activity in the category is measured in, such as miles of beef.
	ErrIncompatibleUnit = constError("incompatible unit")
)

// Quantity is an amount expressed in a named unit.
type Quantity struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Normalizer converts raw units to canonical ones using a factor table's
// conversion rules. It holds no mutable state.
type Normalizer struct {
	table *factors.Table
}

// NewNormalizer returns a Normalizer backed by table.
func NewNormalizer(table *factors.Table) *Normalizer {
	return &Normalizer{table: table}
}

// Normalize converts amount in rawUnit to the canonical unit of the unit's
// family. When rawUnit is empty or unrecognized the amount is assumed to be
// already canonical and is returned unscaled in the category's default unit.
// A recognized unit is only accepted when its canonical unit is the
// category default or the unit of one of the category's factors; otherwise
// ErrIncompatibleUnit is returned.
func (n *Normalizer) Normalize(amount float64, rawUnit string, category factors.Category) (Quantity, error) {
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return Quantity{}, ErrCalculationOverflow
	}
	if amount < 0 {
		return Quantity{}, ErrNegativeAmount
	}

	conv, ok := n.table.Unit(rawUnit)
	if !ok {
		return Quantity{Amount: amount, Unit: n.table.DefaultUnit(category)}, nil
	}

	canonical := n.table.CanonicalUnit(conv.Family)
	if !n.measures(category, canonical) {
		return Quantity{}, fmt.Errorf("%w: %s is not a %s unit", ErrIncompatibleUnit, rawUnit, category)
	}

	result := amount * conv.Scale
	if math.IsInf(result, 0) {
		return Quantity{}, ErrCalculationOverflow
	}

	return Quantity{Amount: result, Unit: canonical}, nil
}

// measures reports whether amounts in the canonical unit belong in category.
func (n *Normalizer) measures(category factors.Category, canonical string) bool {
	if strings.EqualFold(canonical, n.table.DefaultUnit(category)) {
		return true
	}
	for _, f := range n.table.Factors(category) {
		if strings.EqualFold(canonical, f.Unit) {
			return true
		}
	}
	return false
}

// Denormalize converts a canonical amount back into rawUnit. It is the
// inverse of Normalize for recognized units and reports false otherwise.
func (n *Normalizer) Denormalize(canonical float64, rawUnit string) (float64, bool) {
	conv, ok := n.table.Unit(rawUnit)
	if !ok {
		return 0, false
	}
	return canonical / conv.Scale, true
}

// IsRecognized reports whether unit is a known synonym.
func (n *Normalizer) IsRecognized(unit string) bool {
	_, ok := n.table.Unit(unit)
	return ok
}
