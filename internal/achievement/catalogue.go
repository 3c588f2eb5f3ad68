package achievement

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedVersions is the semver constraint a badge catalogue must satisfy.
const SupportedVersions = "^1.0.0"

//go:embed data/badges.yaml
var defaultCatalogueYAML []byte

// Badge is one achievement definition.
type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Criteria    Criteria
}

type badgeDocument struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Icon        string       `yaml:"icon"`
	Criteria    CriteriaSpec `yaml:"criteria"`
}

type catalogueDocument struct {
	Version string          `yaml:"version"`
	Badges  []badgeDocument `yaml:"badges"`
}

// Catalogue is an immutable, validated set of badges.
type Catalogue struct {
	version *semver.Version
	badges  []Badge
	byID    map[string]int
}

//nolint:gochecknoglobals // The embedded catalogue is parsed once and shared read-only.
var loadDefaultCatalogue = sync.OnceValues(func() (*Catalogue, error) {
	return ParseCatalogue(defaultCatalogueYAML)
})

// DefaultCatalogue returns the embedded badge catalogue. It panics if the
// embedded data is invalid.
func DefaultCatalogue() *Catalogue {
	c, err := loadDefaultCatalogue()
	if err != nil {
		panic(fmt.Sprintf("embedded badge catalogue: %v", err))
	}
	return c
}

// LoadCatalogue reads and validates a badge catalogue from a YAML file.
func LoadCatalogue(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading badge catalogue %s: %w", path, err)
	}
	c, err := ParseCatalogue(data)
	if err != nil {
		return nil, fmt.Errorf("badge catalogue %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalogue decodes and validates a catalogue. Invalid criteria fail
// with ErrInvalidCriteria; structural problems with ErrInvalidCatalogue.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var doc catalogueDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalogue, err)
	}

	version, err := checkVersion(doc.Version)
	if err != nil {
		return nil, err
	}

	c := &Catalogue{
		version: version,
		badges:  make([]Badge, 0, len(doc.Badges)),
		byID:    make(map[string]int, len(doc.Badges)),
	}
	for i, bd := range doc.Badges {
		if bd.ID == "" || bd.Name == "" {
			return nil, fmt.Errorf("%w: badge %d needs an id and a name", ErrInvalidCatalogue, i)
		}
		if _, dup := c.byID[bd.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate badge id %q", ErrInvalidCatalogue, bd.ID)
		}
		criteria, err := bd.Criteria.Build()
		if err != nil {
			return nil, fmt.Errorf("badge %q: %w", bd.ID, err)
		}
		c.byID[bd.ID] = len(c.badges)
		c.badges = append(c.badges, Badge{
			ID:          bd.ID,
			Name:        bd.Name,
			Description: bd.Description,
			Icon:        bd.Icon,
			Criteria:    criteria,
		})
	}
	return c, nil
}

func checkVersion(raw string) (*semver.Version, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidCatalogue)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %w", ErrInvalidCatalogue, raw, err)
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

// Version returns the catalogue's declared version.
func (c *Catalogue) Version() string {
	return c.version.String()
}

// Badges returns all badges in catalogue order.
func (c *Catalogue) Badges() []Badge {
	return append([]Badge(nil), c.badges...)
}

// Badge returns the badge with the given id.
func (c *Catalogue) Badge(id string) (Badge, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Badge{}, false
	}
	return c.badges[i], true
}
