package types

// Category codes used by the categorization engine and the deductible
// expense aggregation.
const (
	CategoryOfficeSupplies       = "OFFICE_SUPPLIES"
	CategorySoftware             = "SOFTWARE_SUBSCRIPTIONS"
	CategoryMeals                = "MEALS"
	CategoryTravel               = "TRAVEL"
	CategoryAdvertising          = "ADVERTISING"
	CategoryContractLabor        = "CONTRACT_LABOR"
	CategoryProfessionalServices = "PROFESSIONAL_SERVICES"
	CategoryRent                 = "RENT_LEASE"
	CategoryUtilities            = "UTILITIES"
	CategoryInsurance            = "INSURANCE"
	CategoryVehicle              = "VEHICLE"
	CategoryGeneralReceipts      = "GENERAL_RECEIPTS"
)

// DeductibleCategories is the fixed whitelist of expense category codes that
// count toward deductible business expenses.
var DeductibleCategories = map[string]bool{
	CategoryOfficeSupplies:       true,
	CategorySoftware:             true,
	CategoryMeals:                true,
	CategoryTravel:               true,
	CategoryAdvertising:          true,
	CategoryContractLabor:        true,
	CategoryProfessionalServices: true,
	CategoryRent:                 true,
	CategoryUtilities:            true,
	CategoryInsurance:            true,
	CategoryVehicle:              true,
}

// IsDeductibleCategory reports whether a category code is in the
// deductible whitelist
func IsDeductibleCategory(code string) bool {
	return DeductibleCategories[code]
}
