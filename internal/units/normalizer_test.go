package units

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/footprint/internal/factors"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(factors.Default())

	tests := []struct {
		name     string
		amount   float64
		unit     string
		category factors.Category
		want     Quantity
		wantErr  error
	}{
		{
			name:     "kilometers identity",
			amount:   10,
			unit:     "km",
			category: factors.CategoryTransportation,
			want:     Quantity{Amount: 10, Unit: "km"},
		},
		{
			name:     "miles to km",
			amount:   10,
			unit:     "miles",
			category: factors.CategoryTransportation,
			want:     Quantity{Amount: 16.0934, Unit: "km"},
		},
		{
			name:     "mi abbreviation",
			amount:   1,
			unit:     "mi",
			category: factors.CategoryTransportation,
			want:     Quantity{Amount: 1.60934, Unit: "km"},
		},
		{
			name:     "pounds to kg",
			amount:   2,
			unit:     "lbs",
			category: factors.CategoryFood,
			want:     Quantity{Amount: 0.907184, Unit: "kg"},
		},
		{
			name:     "grams to kg",
			amount:   250,
			unit:     "g",
			category: factors.CategoryFood,
			want:     Quantity{Amount: 0.25, Unit: "kg"},
		},
		{
			name:     "gallons to liters",
			amount:   5,
			unit:     "gallons",
			category: factors.CategoryEnergy,
			want:     Quantity{Amount: 18.92705, Unit: "liter"},
		},
		{
			name:     "case insensitive",
			amount:   3,
			unit:     "KWH",
			category: factors.CategoryEnergy,
			want:     Quantity{Amount: 3, Unit: "kWh"},
		},
		{
			name:     "missing unit assumes category default unscaled",
			amount:   10,
			unit:     "",
			category: factors.CategoryTransportation,
			want:     Quantity{Amount: 10, Unit: "km"},
		},
		{
			name:     "unknown unit assumes category default unscaled",
			amount:   7,
			unit:     "bananas",
			category: factors.CategoryEnergy,
			want:     Quantity{Amount: 7, Unit: "kWh"},
		},
		{
			name:     "zero amount",
			amount:   0,
			unit:     "miles",
			category: factors.CategoryTransportation,
			want:     Quantity{Amount: 0, Unit: "km"},
		},
		{
			name:     "distance unit for food",
			amount:   1,
			unit:     "miles",
			category: factors.CategoryFood,
			wantErr:  ErrIncompatibleUnit,
		},
		{
			name:     "mass unit for transportation",
			amount:   10,
			unit:     "kg",
			category: factors.CategoryTransportation,
			wantErr:  ErrIncompatibleUnit,
		},
		{
			name:     "volume unit for waste",
			amount:   2,
			unit:     "liters",
			category: factors.CategoryWaste,
			wantErr:  ErrIncompatibleUnit,
		},
		{
			name:     "negative amount",
			amount:   -1,
			unit:     "km",
			category: factors.CategoryTransportation,
			wantErr:  ErrNegativeAmount,
		},
		{
			name:     "NaN amount",
			amount:   math.NaN(),
			unit:     "km",
			category: factors.CategoryTransportation,
			wantErr:  ErrCalculationOverflow,
		},
		{
			name:     "multiplication overflow",
			amount:   math.MaxFloat64 / 10,
			unit:     "mwh",
			category: factors.CategoryEnergy,
			wantErr:  ErrCalculationOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.amount, tt.unit, tt.category)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.Unit, got.Unit)
			assert.InDelta(t, tt.want.Amount, got.Amount, 1e-9)
		})
	}
}

// Every recognized synonym must convert back to the original amount.
func TestNormalize_RoundTrip(t *testing.T) {
	table := factors.Default()
	n := NewNormalizer(table)

	amounts := []float64{0, 0.5, 1, 3.75, 42, 12345.678}

	categoryFor := func(t *testing.T, alias string) factors.Category {
		t.Helper()
		conv, ok := table.Unit(alias)
		require.True(t, ok)
		canonical := table.CanonicalUnit(conv.Family)
		for _, f := range table.Factors("") {
			if strings.EqualFold(f.Unit, canonical) {
				return f.Category
			}
		}
		t.Fatalf("no factor is measured in %s", canonical)
		return ""
	}

	for _, alias := range table.UnitAliases() {
		t.Run(alias, func(t *testing.T) {
			category := categoryFor(t, alias)
			for _, amount := range amounts {
				q, err := n.Normalize(amount, alias, category)
				require.NoError(t, err)

				back, ok := n.Denormalize(q.Amount, alias)
				require.True(t, ok)
				assert.InDelta(t, amount, back, amount*1e-12+1e-12)
			}
		})
	}
}

func TestIsRecognized(t *testing.T) {
	n := NewNormalizer(factors.Default())

	assert.True(t, n.IsRecognized("km"))
	assert.True(t, n.IsRecognized("Kilometres"))
	assert.True(t, n.IsRecognized("kilowatt hours"))
	assert.False(t, n.IsRecognized(""))
	assert.False(t, n.IsRecognized("parsecs"))

	_, ok := n.Denormalize(1, "parsecs")
	assert.False(t, ok)
}
