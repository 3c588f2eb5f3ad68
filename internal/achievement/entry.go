package achievement

import (
	"time"

	"github.com/rshade/footprint/internal/factors"
)

// Entry is one logged activity as seen by the evaluator. History passed to
// the evaluator is a materialized snapshot; order does not matter.
type Entry struct {
	UserID         string
	Category       factors.Category
	Activity       string
	Quantity       float64
	SignedEmission float64
	Timestamp      time.Time
}

// Filter selects entries by activity. The empty filter matches everything.
// A filter may name a compound group, a category or a single activity.
type Filter string

// Compound filters.
const (
	FilterGreenTransport Filter = "green_transport"
	FilterPlantBased     Filter = "plant_based"
)

//nolint:gochecknoglobals // Fixed compound filter membership.
var groups = map[Filter][]string{
	FilterGreenTransport: {"walking", "cycling", "bus", "train"},
	FilterPlantBased:     {"vegetables", "tofu"},
}

// Matches reports whether e is selected by the filter.
func (f Filter) Matches(e Entry) bool {
	if f == "" {
		return true
	}
	if members, ok := groups[f]; ok {
		for _, m := range members {
			if e.Activity == m {
				return true
			}
		}
		return false
	}
	if factors.Category(f).IsValid() {
		return e.Category == factors.Category(f)
	}
	return e.Activity == string(f)
}
