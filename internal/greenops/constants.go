package greenops

// Equivalency factors. Each is the kg CO2e that one unit of the comparison
// represents, so equivalency = kg_CO2e / factor.
const (
	// CarKgPerKm is kg CO2e per km driven in an average gasoline car.
	CarKgPerKm = 0.21

	// TreeKgPerYear is kg CO2 one average tree absorbs per year.
	TreeKgPerYear = 22.0

	// TreeKgPerDay is TreeKgPerYear spread over a year.
	TreeKgPerDay = TreeKgPerYear / daysPerYear

	// SmartphoneChargeKg is kg CO2e per full smartphone charge.
	SmartphoneChargeKg = 0.00822

	daysPerYear = 365.0
)

// Display bounds for equivalencies.
const (
	// MaxComparisons is the most equivalencies returned for one value.
	MaxComparisons = 2

	// MinCarKm is the smallest car distance worth showing.
	MinCarKm = 1.0

	// MinTreeDays is the smallest tree absorption period worth showing.
	MinTreeDays = 1.0

	// MinSmartphoneCharges and MaxSmartphoneCharges bound the smartphone
	// comparison; outside this range the number stops being relatable.
	MinSmartphoneCharges = 1.0
	MaxSmartphoneCharges = 1000.0

	// LargeNumberThreshold is where FormatLarge switches to "~X.X million".
	LargeNumberThreshold = 1_000_000

	// BillionThreshold is where FormatLarge switches to "~X.X billion".
	BillionThreshold = 1_000_000_000
)
