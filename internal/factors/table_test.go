package factors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	table := Default()

	assert.Equal(t, "1.2.0", table.Version())
	assert.Same(t, table, Default(), "default table should be built once")

	f, ok := table.Lookup(CategoryTransportation, "driving")
	require.True(t, ok)
	assert.InDelta(t, 0.21, f.PerUnit, 1e-9)
	assert.Equal(t, "km", f.Unit)
	assert.False(t, f.IsReduction())

	f, ok = table.Lookup(CategoryWaste, "recycling")
	require.True(t, ok)
	assert.True(t, f.IsReduction())

	_, ok = table.Lookup(CategoryFood, "driving")
	assert.False(t, ok, "lookup must match the category too")
}

func TestDefault_DefaultUnits(t *testing.T) {
	table := Default()

	assert.Equal(t, "km", table.DefaultUnit(CategoryTransportation))
	assert.Equal(t, "kWh", table.DefaultUnit(CategoryEnergy))
	assert.Equal(t, "kg", table.DefaultUnit(CategoryFood))
	assert.Equal(t, "kg", table.DefaultUnit(CategoryWaste))
}

func TestTable_TierOf(t *testing.T) {
	table := Default()

	tests := []struct {
		activity string
		want     Tier
	}{
		{"walking", TierLow},
		{"cycling", TierLow},
		{"train", TierLow},
		{"driving", TierHigh},
		{"flying", TierVeryHigh},
		{"beef", TierVeryHigh},
		{"lamb", TierVeryHigh},
		{"bus", TierMedium},
		{"not-an-activity", TierMedium},
	}

	for _, tt := range tests {
		t.Run(tt.activity, func(t *testing.T) {
			assert.Equal(t, tt.want, table.TierOf(tt.activity))
		})
	}
}

func TestTable_Alternatives(t *testing.T) {
	table := Default()

	alts := table.Alternatives("driving")
	assert.Equal(t, []string{"walking", "cycling", "bus", "train", "carpool", "electric_car"}, alts)

	alts[0] = "mutated"
	assert.Equal(t, "walking", table.Alternatives("driving")[0], "callers must not mutate the table")

	assert.Empty(t, table.Alternatives("walking"))
}

func TestTable_Unit(t *testing.T) {
	table := Default()

	u, ok := table.Unit("Miles")
	require.True(t, ok)
	assert.Equal(t, FamilyDistance, u.Family)
	assert.InDelta(t, 1.60934, u.Scale, 1e-9)

	u, ok = table.Unit("lbs")
	require.True(t, ok)
	assert.Equal(t, FamilyMass, u.Family)

	_, ok = table.Unit("furlongs")
	assert.False(t, ok)

	assert.Equal(t, "liter", table.CanonicalUnit(FamilyVolume))
}

func TestTable_Factors(t *testing.T) {
	table := Default()

	all := table.Factors("")
	food := table.Factors(CategoryFood)

	assert.Greater(t, len(all), len(food))
	for _, f := range food {
		assert.Equal(t, CategoryFood, f.Category)
	}
}

func TestParse_Invalid(t *testing.T) {
	base := `
version: 1.0.0
categories: {transportation: km, energy: kWh, food: kg, waste: kg}
families: {distance: km}
`
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "missing version",
			yaml:    "categories: {transportation: km}",
			wantErr: ErrInvalidTable,
		},
		{
			name:    "unsupported major version",
			yaml:    "version: 2.0.0",
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "unknown category",
			yaml:    base + "factors:\n  - {category: space, activity: rocket, factor: 1}\n",
			wantErr: ErrInvalidTable,
		},
		{
			name: "duplicate factor",
			yaml: base + "factors:\n" +
				"  - {category: transportation, activity: driving, factor: 0.2}\n" +
				"  - {category: transportation, activity: driving, factor: 0.3}\n",
			wantErr: ErrInvalidTable,
		},
		{
			name: "alternative not in table",
			yaml: base + "factors:\n  - {category: transportation, activity: driving, factor: 0.2}\n" +
				"alternatives: {driving: [teleporting]}\n",
			wantErr: ErrInvalidTable,
		},
		{
			name:    "unit without family",
			yaml:    base + "units:\n  - {family: volume, scale: 1, aliases: [l]}\n",
			wantErr: ErrInvalidTable,
		},
		{
			name:    "non-positive scale",
			yaml:    base + "units:\n  - {family: distance, scale: 0, aliases: [km]}\n",
			wantErr: ErrInvalidTable,
		},
		{
			name:    "malformed yaml",
			yaml:    "version: [",
			wantErr: ErrInvalidTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factors.yaml")
	content := `
version: 1.0.0
categories: {transportation: km, energy: kWh, food: kg, waste: kg}
factors:
  - {category: transportation, activity: driving, factor: 0.3}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)

	f, ok := table.Lookup(CategoryTransportation, "driving")
	require.True(t, ok)
	assert.Equal(t, "km", f.Unit, "unit should default to the category unit")
	assert.InDelta(t, 0.3, f.PerUnit, 1e-9)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
