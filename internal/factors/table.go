package factors

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedVersions is the semver constraint a factor table must satisfy.
const SupportedVersions = "^1.0.0"

//go:embed data/factors.yaml
var defaultTableYAML []byte

// document is the on-disk shape of a factor table.
type document struct {
	Version      string              `yaml:"version"`
	Categories   map[Category]string `yaml:"categories"`
	Factors      []Factor            `yaml:"factors"`
	Tiers        map[Tier][]string   `yaml:"tiers"`
	Alternatives map[string][]string `yaml:"alternatives"`
	Tips         map[string]string   `yaml:"tips"`
	Families     map[string]string   `yaml:"families"`
	Units        []UnitConversion    `yaml:"units"`
}

type factorKey struct {
	category Category
	activity string
}

// Table is an immutable emission factor table.
type Table struct {
	version      *semver.Version
	factors      map[factorKey]Factor
	ordered      []Factor
	byActivity   map[string]Factor
	defaultUnits map[Category]string
	tiers        map[string]Tier
	alternatives map[string][]string
	tips         map[string]string
	families     map[string]string
	units        map[string]UnitConversion
}

//nolint:gochecknoglobals // The embedded table is parsed once and shared read-only.
var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(defaultTableYAML)
})

// Default returns the embedded factor table. It panics if the embedded data
// is invalid, which can only happen through a broken build.
func Default() *Table {
	t, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded factor table: %v", err))
	}
	return t
}

// LoadFile reads and validates a factor table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading factor table %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("factor table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a factor table from YAML.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	return build(doc)
}

func build(doc document) (*Table, error) {
	version, err := checkVersion(doc.Version)
	if err != nil {
		return nil, err
	}

	t := &Table{
		version:      version,
		factors:      make(map[factorKey]Factor, len(doc.Factors)),
		byActivity:   make(map[string]Factor, len(doc.Factors)),
		defaultUnits: make(map[Category]string, len(doc.Categories)),
		tiers:        make(map[string]Tier),
		alternatives: make(map[string][]string, len(doc.Alternatives)),
		tips:         make(map[string]string, len(doc.Tips)),
		families:     make(map[string]string, len(doc.Families)),
		units:        make(map[string]UnitConversion),
	}

	for cat, unit := range doc.Categories {
		if !cat.IsValid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidTable, cat)
		}
		if unit == "" {
			return nil, fmt.Errorf("%w: category %q has no default unit", ErrInvalidTable, cat)
		}
		t.defaultUnits[cat] = unit
	}
	for _, cat := range Categories() {
		if _, ok := t.defaultUnits[cat]; !ok {
			return nil, fmt.Errorf("%w: category %q has no default unit", ErrInvalidTable, cat)
		}
	}

	for _, f := range doc.Factors {
		if err = t.addFactor(f); err != nil {
			return nil, err
		}
	}

	for tier, activities := range doc.Tiers {
		if !tier.IsValid() {
			return nil, fmt.Errorf("%w: unknown tier %q", ErrInvalidTable, tier)
		}
		for _, a := range activities {
			if prev, dup := t.tiers[a]; dup && prev != tier {
				return nil, fmt.Errorf("%w: activity %q listed in tiers %q and %q",
					ErrInvalidTable, a, prev, tier)
			}
			t.tiers[a] = tier
		}
	}

	for activity, alts := range doc.Alternatives {
		if _, ok := t.byActivity[activity]; !ok {
			return nil, fmt.Errorf("%w: alternatives for unknown activity %q", ErrInvalidTable, activity)
		}
		for _, alt := range alts {
			if _, ok := t.byActivity[alt]; !ok {
				return nil, fmt.Errorf("%w: alternative %q of %q is not in the table",
					ErrInvalidTable, alt, activity)
			}
		}
		t.alternatives[activity] = append([]string(nil), alts...)
	}

	for activity, tip := range doc.Tips {
		t.tips[activity] = strings.TrimSpace(tip)
	}

	for family, canonical := range doc.Families {
		t.families[family] = canonical
	}
	for _, u := range doc.Units {
		if err = t.addUnit(u); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func checkVersion(raw string) (*semver.Version, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidTable)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %w", ErrInvalidTable, raw, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(v) {
		return nil, fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedVersion, v, SupportedVersions)
	}
	return v, nil
}

func (t *Table) addFactor(f Factor) error {
	if !f.Category.IsValid() {
		return fmt.Errorf("%w: factor %q has unknown category %q", ErrInvalidTable, f.Activity, f.Category)
	}
	if f.Activity == "" {
		return fmt.Errorf("%w: factor in %q has no activity", ErrInvalidTable, f.Category)
	}
	if f.Unit == "" {
		f.Unit = t.defaultUnits[f.Category]
	}
	key := factorKey{category: f.Category, activity: f.Activity}
	if _, dup := t.factors[key]; dup {
		return fmt.Errorf("%w: duplicate factor %s/%s", ErrInvalidTable, f.Category, f.Activity)
	}
	if other, dup := t.byActivity[f.Activity]; dup {
		return fmt.Errorf("%w: activity %q appears in %q and %q",
			ErrInvalidTable, f.Activity, other.Category, f.Category)
	}
	t.factors[key] = f
	t.byActivity[f.Activity] = f
	t.ordered = append(t.ordered, f)
	return nil
}

func (t *Table) addUnit(u UnitConversion) error {
	if _, ok := t.families[u.Family]; !ok {
		return fmt.Errorf("%w: unit family %q has no canonical unit", ErrInvalidTable, u.Family)
	}
	if u.Scale <= 0 {
		return fmt.Errorf("%w: unit %v has non-positive scale %v", ErrInvalidTable, u.Aliases, u.Scale)
	}
	for _, alias := range u.Aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if _, dup := t.units[alias]; dup {
			return fmt.Errorf("%w: duplicate unit alias %q", ErrInvalidTable, alias)
		}
		t.units[alias] = u
	}
	return nil
}

// Version returns the table's declared schema version.
func (t *Table) Version() string {
	return t.version.String()
}

// Lookup returns the factor for a (category, activity) pair.
func (t *Table) Lookup(category Category, activity string) (Factor, bool) {
	f, ok := t.factors[factorKey{category: category, activity: activity}]
	return f, ok
}

// ByActivity returns the factor for an activity regardless of category.
// Activity keys are unique across the table.
func (t *Table) ByActivity(activity string) (Factor, bool) {
	f, ok := t.byActivity[activity]
	return f, ok
}

// Factors returns every factor in table order, optionally limited to one
// category. An empty category returns all factors.
func (t *Table) Factors(category Category) []Factor {
	out := make([]Factor, 0, len(t.ordered))
	for _, f := range t.ordered {
		if category == "" || f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// DefaultUnit returns the canonical unit assumed for a category when no
// recognizable unit was given.
func (t *Table) DefaultUnit(category Category) string {
	return t.defaultUnits[category]
}

// TierOf classifies an activity. Activities absent from every tier are medium.
func (t *Table) TierOf(activity string) Tier {
	if tier, ok := t.tiers[activity]; ok {
		return tier
	}
	return TierMedium
}

// Alternatives returns the preferred lower-impact activities for activity,
// most preferred first.
func (t *Table) Alternatives(activity string) []string {
	return append([]string(nil), t.alternatives[activity]...)
}

// Tip returns the activity-specific tip, if one exists.
func (t *Table) Tip(activity string) (string, bool) {
	tip, ok := t.tips[activity]
	return tip, ok
}

// Unit resolves a unit synonym (case-insensitive) to its conversion.
func (t *Table) Unit(alias string) (UnitConversion, bool) {
	u, ok := t.units[strings.ToLower(strings.TrimSpace(alias))]
	return u, ok
}

// CanonicalUnit returns the canonical unit of a family.
func (t *Table) CanonicalUnit(family string) string {
	return t.families[family]
}

// UnitAliases returns every recognized unit spelling, sorted.
func (t *Table) UnitAliases() []string {
	out := make([]string, 0, len(t.units))
	for alias := range t.units {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}
