// Package ruleset defines the immutable, signed, versioned jurisdiction
// rule documents and the loader that verifies and resolves them.
//
// A ruleset is valid for computation only if its detached HMAC signature
// verifies against its own unsigned payload. Signatures are never mutated in
// place; any rule change produces a new ruleset identifier.
package ruleset

import (
	"github.com/shopspring/decimal"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// ValidationStatus is the editorial status of a ruleset document
type ValidationStatus string

// Validation status constants.
const (
	StatusValidated ValidationStatus = "validated"
	StatusStale     ValidationStatus = "stale"
	StatusDraft     ValidationStatus = "draft"
)

// Envelope carries the version/provenance attributes shared by every
// jurisdiction document.
type Envelope struct {
	ID              string           `json:"id"`
	Jurisdiction    string           `json:"jurisdiction"`
	TaxYear         int              `json:"tax_year"`
	EffectiveDate   string           `json:"effective_date"`
	Status          ValidationStatus `json:"status"`
	SourceCitations []string         `json:"source_citations,omitempty"`
	Checksum        string           `json:"checksum,omitempty"`
	Signature       string           `json:"signature,omitempty"`
	ValidatedAt     string           `json:"validated_at,omitempty"`
	Changelog       []string         `json:"changelog,omitempty"`
}

// Bracket is one progressive tax bracket: [Lower, Upper) at Rate.
// A nil Upper means the bracket is unbounded.
type Bracket struct {
	Lower money.Money     `json:"lower"`
	Upper *money.Money    `json:"upper,omitempty"`
	Rate  decimal.Decimal `json:"rate"`
}

// SelfEmploymentParams are the federal self-employment tax parameters
type SelfEmploymentParams struct {
	NetEarningsFactor      decimal.Decimal `json:"net_earnings_factor"`
	SocialSecurityRate     decimal.Decimal `json:"social_security_rate"`
	SocialSecurityWageBase money.Money     `json:"social_security_wage_base"`
	MedicareRate           decimal.Decimal `json:"medicare_rate"`
	AdditionalMedicareRate decimal.Decimal `json:"additional_medicare_rate"`

	// Additional Medicare kicks in above a filing-status threshold
	AdditionalMedicareThreshold map[types.FilingStatus]money.Money `json:"additional_medicare_threshold"`
}

// FederalRules are the jurisdiction-specific rules of a federal document
type FederalRules struct {
	StandardDeduction map[types.FilingStatus]money.Money `json:"standard_deduction"`
	Brackets          map[types.FilingStatus][]Bracket   `json:"brackets"`
	SelfEmployment    SelfEmploymentParams               `json:"self_employment"`
}

// FederalRuleset is an immutable federal jurisdiction document
type FederalRuleset struct {
	Envelope
	Rules FederalRules `json:"rules"`
}

// StateRules are the jurisdiction-specific rules of a state document.
// A state without a bracket table, or with Computable false, cannot produce
// a state tax figure.
type StateRules struct {
	Computable      bool                             `json:"computable"`
	Brackets        map[types.FilingStatus][]Bracket `json:"brackets,omitempty"`
	StalenessAction string                           `json:"staleness_action,omitempty"`
	FallbackPolicy  string                           `json:"fallback_policy,omitempty"`
}

// StateRuleset is an immutable state jurisdiction document
type StateRuleset struct {
	Envelope
	Rules StateRules `json:"rules"`
}

// BracketsFor returns the bracket table for a filing status
func (r *FederalRuleset) BracketsFor(status types.FilingStatus) []Bracket {
	return r.Rules.Brackets[status]
}

// StandardDeductionFor returns the standard deduction for a filing status
func (r *FederalRuleset) StandardDeductionFor(status types.FilingStatus) money.Money {
	return r.Rules.StandardDeduction[status]
}

// BracketsFor returns the state bracket table for a filing status
func (r *StateRuleset) BracketsFor(status types.FilingStatus) []Bracket {
	return r.Rules.Brackets[status]
}

// Computable reports whether the state ruleset can produce a tax figure
func (r *StateRuleset) Computable() bool {
	return r.Rules.Computable && len(r.Rules.Brackets) > 0
}

// ActiveVersions names the ruleset identifiers active for a tax year
type ActiveVersions struct {
	FederalID       string `json:"federal_id"`
	StateID         string `json:"state_id"`
	LocalSalesTaxID string `json:"local_sales_tax_id,omitempty"`
}

// Index maps tax years to active ruleset versions, with a global fallback
// when no per-year entry exists.
type Index struct {
	Years  map[string]ActiveVersions `json:"years,omitempty"`
	Active *ActiveVersions           `json:"active,omitempty"`
}
