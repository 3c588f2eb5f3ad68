package parser

import (
	"regexp"

	"github.com/rshade/footprint/internal/factors"
)

// Rule binds a phrase shape to an activity.
type Rule struct {
	// Priority orders evaluation; lower runs first. Priorities are unique.
	Priority int

	// Name identifies the rule in logs and results.
	Name string

	// Pattern is matched against lowercased, trimmed input.
	Pattern *regexp.Regexp

	// Category and Activity are the factor table key produced on match.
	Category factors.Category
	Activity string

	// AmountGroup is the capture group holding the amount. Zero means the
	// phrase carries no amount and DefaultAmount is used.
	AmountGroup int

	// UnitGroup is the capture group holding the unit. Zero means the phrase
	// carries no unit and DefaultUnit is used.
	UnitGroup int

	DefaultAmount float64
	DefaultUnit   string
}

// Shared pattern fragments.
const (
	numberPattern   = `(\d+(?:,\d{3})*(?:\.\d+)?)`
	fillerPattern   = `(?:\s+[a-z']+){0,3}?`
	distancePattern = `(km|kms|kilometers?|kilometres?|miles?|mi|meters?|metres?|m)`
	energyPattern   = `(kwh|kilowatt[- ]hours?|mwh|wh)`
	gasPattern      = `(kwh|kilowatt[- ]hours?|therms?)`
	volumePattern   = `(liters?|litres?|l|gallons?|gal)`
	massPattern     = `(kg|kgs|kilos?|kilograms?|grams?|g|lbs?|pounds?|oz|ounces?)`

	// servingKg is the amount assumed for "I ate a beef burger".
	servingKg = 0.15
)

// nonQuantityPattern matches a word right after a captured amount that shows
// the amount counts something other than the activity's quantity, as in
// "drove 10 minutes". Rules without a unit group skip such matches.
var nonQuantityPattern = regexp.MustCompile(
	`^\s*(?:seconds?|secs?|minutes?|mins?|hours?|hrs?|h|days?|weeks?|months?|years?|times|x)\b`)

// withUnit matches "<verb> [up to three words] <number> <unit>".
func withUnit(verbs, units string) *regexp.Regexp {
	return regexp.MustCompile(`(?:\bi\s+)?\b(?:` + verbs + `)\b` + fillerPattern + `\s+` +
		numberPattern + `\s*` + units + `\b`)
}

// withoutUnit matches "<verb> [up to three words] <number>".
func withoutUnit(verbs string) *regexp.Regexp {
	return regexp.MustCompile(`(?:\bi\s+)?\b(?:` + verbs + `)\b` + fillerPattern + `\s+` +
		numberPattern + `\b`)
}

// amountOf matches "<verb> <number> <unit> [of] <noun>".
func amountOf(verbs, units, nouns string) *regexp.Regexp {
	return regexp.MustCompile(`(?:\bi\s+)?\b(?:` + verbs + `)\b` + fillerPattern + `\s+` +
		numberPattern + `\s*` + units + `\s+(?:of\s+)?(?:[a-z]+\s+)?(?:` + nouns + `)\b`)
}

// servingOf matches "<verb> [a|an|some|...] [word] <noun>".
func servingOf(verbs, nouns string) *regexp.Regexp {
	return regexp.MustCompile(`(?:\bi\s+)?\b(?:` + verbs + `)\b(?:\s+[a-z']+){0,3}?\s+(?:` + nouns + `)\b`)
}

type foodSpec struct {
	activity string
	nouns    string
}

// foodOrder lists foods by priority. Vegetarian phrasings come before beef
// so "veggie burger" is not read as a beef burger.
//
//nolint:gochecknoglobals // Fixed priority list.
var foodOrder = []foodSpec{
	{"vegetables", `veggie|vegetarian|vegan|vegetables?|veggies|salad`},
	{"tofu", `tofu|tempeh`},
	{"beef", `beef|steak|burgers?|hamburgers?`},
	{"lamb", `lamb|mutton`},
	{"pork", `pork|bacon|ham|sausages?`},
	{"chicken", `chicken|turkey`},
	{"fish", `fish|salmon|tuna|cod`},
	{"cheese", `cheese`},
	{"rice", `rice`},
}

const eatVerbs = `ate|eaten|eat|had|cooked`

// DefaultRules returns the built-in extraction rules sorted by priority.
//
// Priority bands:
//
//	100-199  transportation; specific vehicles before generic driving,
//	         unit-bearing phrasings before unit-less ones for each verb
//	200-299  energy
//	300-399  waste
//	400-499  food with an explicit amount
//	500-599  food servings without an amount
//
// Two rules never share a priority; NewMatcher rejects duplicates.
func DefaultRules() []Rule {
	transport := factors.CategoryTransportation
	energy := factors.CategoryEnergy
	waste := factors.CategoryWaste

	const (
		evVerbs    = `drove\s+(?:my|an|the|our)\s+(?:electric\s+car|ev|tesla)`
		driveVerbs = `drove|driven|drive`
		busVerbs   = `took\s+the\s+bus|took\s+a\s+bus|rode\s+the\s+bus|bused|by\s+bus|bus\s+(?:ride|trip|journey)(?:\s+of)?`
		trainVerbs = `took\s+the\s+train|took\s+a\s+train|rode\s+the\s+train|by\s+train|train\s+(?:ride|trip|journey)(?:\s+of)?`
		flyVerbs   = `flew|flown|fly|flight\s+of`
		cycleVerbs = `cycled|biked|bicycled|rode\s+my\s+bike|rode\s+a\s+bike|cycling`
		walkVerbs  = `walked|walk|hiked|ran|jogged`
		poolVerbs  = `carpooled|car\s+pooled|carpool`
		motoVerbs  = `rode\s+my\s+motorcycle|rode\s+a\s+motorcycle|motorcycled|motorbike`
		taxiVerbs  = `took\s+a\s+taxi|took\s+an\s+uber|took\s+a\s+cab|by\s+(?:taxi|uber|cab)|(?:taxi|uber|cab)\s+(?:ride|trip)(?:\s+of)?`
	)

	rules := []Rule{
		// Transportation. EV, carpool and motorcycle phrasings contain the
		// words "drove"/"car" and must win over generic driving.
		{Priority: 100, Name: "ev-distance", Pattern: withUnit(evVerbs, distancePattern),
			Category: transport, Activity: "electric_car", AmountGroup: 1, UnitGroup: 2},
		{Priority: 101, Name: "ev-bare", Pattern: withoutUnit(evVerbs),
			Category: transport, Activity: "electric_car", AmountGroup: 1, DefaultUnit: "km"},
		{Priority: 105, Name: "carpool-distance", Pattern: withUnit(poolVerbs, distancePattern),
			Category: transport, Activity: "carpool", AmountGroup: 1, UnitGroup: 2},
		{Priority: 108, Name: "motorcycle-distance", Pattern: withUnit(motoVerbs, distancePattern),
			Category: transport, Activity: "motorcycle", AmountGroup: 1, UnitGroup: 2},
		{Priority: 110, Name: "drive-distance", Pattern: withUnit(driveVerbs, distancePattern),
			Category: transport, Activity: "driving", AmountGroup: 1, UnitGroup: 2},
		{Priority: 111, Name: "drive-bare", Pattern: withoutUnit(driveVerbs),
			Category: transport, Activity: "driving", AmountGroup: 1, DefaultUnit: "km"},
		{Priority: 115, Name: "taxi-distance", Pattern: withUnit(taxiVerbs, distancePattern),
			Category: transport, Activity: "taxi", AmountGroup: 1, UnitGroup: 2},
		{Priority: 120, Name: "bus-distance", Pattern: withUnit(busVerbs, distancePattern),
			Category: transport, Activity: "bus", AmountGroup: 1, UnitGroup: 2},
		{Priority: 121, Name: "bus-bare", Pattern: withoutUnit(busVerbs),
			Category: transport, Activity: "bus", AmountGroup: 1, DefaultUnit: "km"},
		{Priority: 130, Name: "train-distance", Pattern: withUnit(trainVerbs, distancePattern),
			Category: transport, Activity: "train", AmountGroup: 1, UnitGroup: 2},
		{Priority: 131, Name: "train-bare", Pattern: withoutUnit(trainVerbs),
			Category: transport, Activity: "train", AmountGroup: 1, DefaultUnit: "km"},
		{Priority: 140, Name: "flight-distance", Pattern: withUnit(flyVerbs, distancePattern),
			Category: transport, Activity: "flying", AmountGroup: 1, UnitGroup: 2},
		{Priority: 141, Name: "flight-bare", Pattern: withoutUnit(flyVerbs),
			Category: transport, Activity: "flying", AmountGroup: 1, DefaultUnit: "km"},
		{Priority: 150, Name: "cycle-distance", Pattern: withUnit(cycleVerbs, distancePattern),
			Category: transport, Activity: "cycling", AmountGroup: 1, UnitGroup: 2},
		{Priority: 151, Name: "cycle-bare", Pattern: withoutUnit(cycleVerbs),
			Category: transport, Activity: "cycling", AmountGroup: 1, DefaultUnit: "km"},
		{Priority: 160, Name: "walk-distance", Pattern: withUnit(walkVerbs, distancePattern),
			Category: transport, Activity: "walking", AmountGroup: 1, UnitGroup: 2},
		{Priority: 161, Name: "walk-bare", Pattern: withoutUnit(walkVerbs),
			Category: transport, Activity: "walking", AmountGroup: 1, DefaultUnit: "km"},

		// Energy. Solar generation before generic consumption.
		{Priority: 200, Name: "solar-generated",
			Pattern: amountOf(`generated|produced|solar\s+panels\s+(?:generated|produced|made)`, energyPattern,
				`solar|solar\s+power|solar\s+energy|electricity|power`),
			Category: energy, Activity: "solar", AmountGroup: 1, UnitGroup: 2},
		{Priority: 201, Name: "solar-bare", Pattern: withUnit(`solar\s+panels\s+(?:generated|produced|made)|generated`, energyPattern),
			Category: energy, Activity: "solar", AmountGroup: 1, UnitGroup: 2},
		{Priority: 210, Name: "gas-usage",
			Pattern:  amountOf(`used|consumed|burned|burnt`, gasPattern, `natural\s+gas|gas`),
			Category: energy, Activity: "natural_gas", AmountGroup: 1, UnitGroup: 2},
		{Priority: 220, Name: "heating-oil",
			Pattern:  amountOf(`used|consumed|burned|burnt|bought|filled`, volumePattern, `heating\s+oil|oil`),
			Category: energy, Activity: "heating_oil", AmountGroup: 1, UnitGroup: 2},
		{Priority: 230, Name: "electricity-usage",
			Pattern:  amountOf(`used|consumed`, energyPattern, `electricity|power|energy`),
			Category: energy, Activity: "electricity", AmountGroup: 1, UnitGroup: 2},
		{Priority: 231, Name: "electricity-bare", Pattern: withUnit(`used|consumed`, energyPattern),
			Category: energy, Activity: "electricity", AmountGroup: 1, UnitGroup: 2},

		// Waste.
		{Priority: 300, Name: "recycle-amount", Pattern: withUnit(`recycled|recycle`, massPattern),
			Category: waste, Activity: "recycling", AmountGroup: 1, UnitGroup: 2},
		{Priority: 301, Name: "recycle-bare", Pattern: withoutUnit(`recycled|recycle`),
			Category: waste, Activity: "recycling", AmountGroup: 1, DefaultUnit: "kg"},
		{Priority: 310, Name: "compost-amount", Pattern: withUnit(`composted|compost`, massPattern),
			Category: waste, Activity: "composting", AmountGroup: 1, UnitGroup: 2},
		{Priority: 311, Name: "compost-bare", Pattern: withoutUnit(`composted|compost`),
			Category: waste, Activity: "composting", AmountGroup: 1, DefaultUnit: "kg"},
		{Priority: 320, Name: "landfill-amount",
			Pattern:  withUnit(`threw\s+away|threw\s+out|thrown\s+away|binned|trashed|landfilled`, massPattern),
			Category: waste, Activity: "landfill", AmountGroup: 1, UnitGroup: 2},
	}

	for i, f := range foodOrder {
		rules = append(rules,
			Rule{
				Priority: 400 + i, Name: f.activity + "-amount",
				Pattern:  amountOf(eatVerbs, massPattern, f.nouns),
				Category: factors.CategoryFood, Activity: f.activity, AmountGroup: 1, UnitGroup: 2,
			},
			Rule{
				Priority: 500 + i, Name: f.activity + "-serving",
				Pattern:  servingOf(eatVerbs, f.nouns),
				Category: factors.CategoryFood, Activity: f.activity,
				DefaultAmount: servingKg, DefaultUnit: "kg",
			},
		)
	}

	sortRules(rules)
	return rules
}
