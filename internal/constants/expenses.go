package constants

// Expense categories.
const (
	CategoryMaterial    = "material"
	CategoryOutsourcing = "outsourcing"
	CategoryShipping    = "shipping"
	CategoryOther       = "other"
)

// MarkupRates maps each category to its cost-to-bill multiplier. Bill totals are
// ceil(costTotal * rate) unless the operator overrode them by hand.
var MarkupRates = map[string]float64{
	CategoryMaterial:    1.2,
	CategoryOutsourcing: 1.25,
	CategoryShipping:    1.0,
	CategoryOther:       1.1,
}
