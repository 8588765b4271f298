package types

import (
	"time"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
)

// TransactionDirection indicates whether money came in or went out
type TransactionDirection string

// Direction constants.
const (
	DirectionIncome  TransactionDirection = "income"
	DirectionExpense TransactionDirection = "expense"
)

// CategorySource records how a category assignment was made.
// USER assignments are authoritative and are never overwritten on replay.
type CategorySource string

// Category source constants, in descending authority order.
const (
	SourceUser      CategorySource = "USER"
	SourceRule      CategorySource = "RULE"
	SourceHeuristic CategorySource = "HEURISTIC"
)

// Category is a category assignment on a transaction
type Category struct {
	Code       string         `json:"code"`
	Confidence int            `json:"confidence"` // 0-100
	Source     CategorySource `json:"source"`
	Reason     string         `json:"reason,omitempty"`
}

// Transaction is a single normalized transaction for the (user, tax year).
// Amount is signed; Direction is authoritative for income/expense handling.
type Transaction struct {
	ID          string               `json:"id"`
	Date        time.Time            `json:"date"`
	Merchant    string               `json:"merchant"`
	Description string               `json:"description,omitempty"`
	Amount      money.Money          `json:"amount"`
	Direction   TransactionDirection `json:"direction"`
	Reviewed    bool                 `json:"reviewed"`
	Category    *Category            `json:"category,omitempty"`
}

// IsCategorized reports whether the transaction has a category assignment
func (t *Transaction) IsCategorized() bool {
	return t.Category != nil && t.Category.Code != ""
}

// MatchText returns the text surface used for pattern matching
func (t *Transaction) MatchText() string {
	if t.Description == "" {
		return t.Merchant
	}
	return t.Merchant + " " + t.Description
}

// IncomeType classifies an income source
type IncomeType string

// Income type constants.
const (
	IncomeW2            IncomeType = "W2"
	Income1099NEC       IncomeType = "1099_NEC"
	IncomeBusinessGross IncomeType = "BUSINESS_GROSS"
	IncomeOther         IncomeType = "OTHER"
)

// IsSelfEmployment reports whether the income type triggers
// self-employment tax treatment
func (t IncomeType) IsSelfEmployment() bool {
	return t == Income1099NEC || t == IncomeBusinessGross
}

// IncomeSource is a single income record for the (user, tax year).
// Income sources are not individually dated; an annual amount stands in for
// the whole year.
type IncomeSource struct {
	ID          string      `json:"id"`
	Type        IncomeType  `json:"type"`
	Description string      `json:"description,omitempty"`
	Amount      money.Money `json:"amount"`
	Confirmed   bool        `json:"confirmed"`

	// Withholding already applied at the source
	FederalWithheld money.Money `json:"federal_withheld"`
	StateWithheld   money.Money `json:"state_withheld"`

	// W-2 wages already subject to Social Security / Medicare tax,
	// used to cap the self-employment portions
	W2SocialSecurityWages money.Money `json:"w2_social_security_wages"`
	W2MedicareWages       money.Money `json:"w2_medicare_wages"`
}

// DeductionItem is a stand-alone deduction record. Only confirmed items are
// counted as business expenses.
type DeductionItem struct {
	ID           string      `json:"id"`
	CategoryCode string      `json:"category_code"`
	Description  string      `json:"description,omitempty"`
	Amount       money.Money `json:"amount"`
	Confirmed    bool        `json:"confirmed"`
}

// EstimatedPayment is a tax payment already made for the tax year
type EstimatedPayment struct {
	ID           string      `json:"id"`
	Jurisdiction string      `json:"jurisdiction"` // "federal" or "state"
	Amount       money.Money `json:"amount"`
	PaidAt       time.Time   `json:"paid_at"`
}

// Jurisdiction constants for estimated payments.
const (
	JurisdictionFederal = "federal"
	JurisdictionState   = "state"
)
