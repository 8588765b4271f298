// Package calculator orchestrates the full tax computation: categorization,
// scope, deductions, self-employment tax, bracket tax, scoring, risk flags,
// payment planning, and the explanation graph.
//
// Compute is deterministic and side-effect-free: identical inputs and
// rulesets yield byte-for-byte identical output.
package calculator

import (
	"time"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/completeness"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/confidence"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/explain"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/scope"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// Input is the fixed snapshot of records a computation runs over. All
// sequences are pre-filtered to one (user, tax year); both rulesets are
// already signature-verified by the loader.
type Input struct {
	Profile           *types.TaxProfile
	Incomes           []types.IncomeSource
	EstimatedPayments []types.EstimatedPayment
	Transactions      []types.Transaction
	Deductions        []types.DeductionItem
	Rules             []types.CategoryRule
	Overrides         []types.UserOverride
	Federal           *ruleset.FederalRuleset
	State             *ruleset.StateRuleset
}

// DeductionKind names the deduction path taken
type DeductionKind string

// Deduction kinds.
const (
	DeductionStandard DeductionKind = "standard"
	DeductionItemized DeductionKind = "itemized"
)

// FederalResult is the federal jurisdiction outcome
type FederalResult struct {
	Status            types.FederalStatus `json:"status"`
	Tax               *money.Money        `json:"tax,omitempty"`
	Withheld          money.Money         `json:"withheld"`
	EstimatedPayments money.Money         `json:"estimated_payments"`
	BalanceDue        *money.Money        `json:"balance_due,omitempty"`
}

// StateResult is the state jurisdiction outcome
type StateResult struct {
	Status            types.StateStatus `json:"status"`
	Tax               *money.Money      `json:"tax,omitempty"`
	Withheld          money.Money       `json:"withheld"`
	EstimatedPayments money.Money       `json:"estimated_payments"`
	BalanceDue        *money.Money      `json:"balance_due,omitempty"`
}

// Breakdown holds the monetary figures of a run. Every figure is rounded to
// whole cents at computation boundaries.
type Breakdown struct {
	GrossIncome      money.Money `json:"gross_income"`
	BusinessExpenses money.Money `json:"business_expenses"`

	SelfEmploymentTax       money.Money `json:"self_employment_tax"`
	SelfEmploymentTaxLow    money.Money `json:"self_employment_tax_low"`
	SelfEmploymentTaxHigh   money.Money `json:"self_employment_tax_high"`
	SelfEmploymentDeduction money.Money `json:"self_employment_deduction"`

	DeductionKind    DeductionKind `json:"deduction_kind,omitempty"`
	DeductionApplied money.Money   `json:"deduction_applied"`

	FederalTaxableIncome money.Money  `json:"federal_taxable_income"`
	FederalIncomeTax     *money.Money `json:"federal_income_tax,omitempty"`
	TotalFederalTax      *money.Money `json:"total_federal_tax,omitempty"`
	StateTax             *money.Money `json:"state_tax,omitempty"`

	// Combined totals are present only when both jurisdictions computed.
	// Callers must treat them as unavailable when the estimate is BLOCKED.
	TotalTax        *money.Money `json:"total_tax,omitempty"`
	TotalBalanceDue *money.Money `json:"total_balance_due,omitempty"`

	MonthlySetAside   money.Money `json:"monthly_set_aside"`
	QuarterlySetAside money.Money `json:"quarterly_set_aside"`
}

// Installment is a single estimated-payment installment
type Installment struct {
	Sequence int         `json:"sequence"`
	DueDate  time.Time   `json:"due_date"`
	Amount   money.Money `json:"amount"`
}

// PaymentPlan is the four-installment estimated-payment schedule
type PaymentPlan struct {
	Basis        string        `json:"basis,omitempty"` // which balance sized the plan
	Installments []Installment `json:"installments,omitempty"`
}

// RulesetIDs records the exact ruleset versions used for the run
type RulesetIDs struct {
	Federal string `json:"federal"`
	State   string `json:"state"`
}

// Output is the complete, in-memory result of one computation run.
// Persistence is a collaborator concern.
type Output struct {
	Scope          scope.Decision       `json:"scope"`
	EstimateStatus types.EstimateStatus `json:"estimate_status"`
	Watermark      string               `json:"watermark,omitempty"`

	Federal FederalResult `json:"federal"`
	State   StateResult   `json:"state"`

	Breakdown Breakdown `json:"breakdown"`

	Assumptions []types.Assumption `json:"assumptions"`
	RiskFlags   []types.RiskFlag   `json:"risk_flags"`

	Completeness completeness.Report `json:"completeness"`
	Confidence   confidence.Report   `json:"confidence"`

	Explanation *explain.Graph `json:"explanation"`
	PaymentPlan PaymentPlan    `json:"payment_plan"`

	RulesetIDs RulesetIDs `json:"ruleset_ids"`

	// CategorizedTransactions is the post-categorization view the scores
	// and aggregates were computed over.
	CategorizedTransactions []types.Transaction `json:"categorized_transactions"`
}
