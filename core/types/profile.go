package types

import (
	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
)

// TaxProfile holds the per-(user, tax year) attributes that drive scope and
// deduction decisions. It is mutated by the user upstream and is a read-only
// input to computation.
type TaxProfile struct {
	UserID  string `json:"user_id"`
	TaxYear int    `json:"tax_year"`

	FilingStatus FilingStatus `json:"filing_status,omitempty"`
	Dependents   int          `json:"dependents"`

	// Residency
	ResidencyState   string `json:"residency_state"`
	ResidencyCity    string `json:"residency_city,omitempty"`
	ResidencyCounty  string `json:"residency_county,omitempty"`
	FullYearResident bool   `json:"full_year_resident"`

	// Advanced attributes force the profile out of scope
	HasForeignIncome        bool `json:"has_foreign_income"`
	HasK1Income             bool `json:"has_k1_income"`
	HasAdvancedInvestments  bool `json:"has_advanced_investments"`
	HasAdvancedDepreciation bool `json:"has_advanced_depreciation"`

	// Deduction preferences
	ForceStandardDeduction bool         `json:"force_standard_deduction"`
	ItemizedDeduction      *money.Money `json:"itemized_deduction,omitempty"`
}

// HasAdvancedAttributes reports whether any advanced attribute is set
func (p *TaxProfile) HasAdvancedAttributes() bool {
	return p.HasForeignIncome || p.HasK1Income || p.HasAdvancedInvestments || p.HasAdvancedDepreciation
}

// AdvancedAttributeNames returns the names of the advanced attributes set on
// the profile, in a fixed order.
func (p *TaxProfile) AdvancedAttributeNames() []string {
	var names []string
	if p.HasForeignIncome {
		names = append(names, "foreign_income")
	}
	if p.HasK1Income {
		names = append(names, "k1_income")
	}
	if p.HasAdvancedInvestments {
		names = append(names, "advanced_investments")
	}
	if p.HasAdvancedDepreciation {
		names = append(names, "advanced_depreciation")
	}
	return names
}
