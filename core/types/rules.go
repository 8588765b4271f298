package types

import (
	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
)

// CategoryRule is a generic pattern-matching directive that suggests a
// category for matching transactions.
type CategoryRule struct {
	ID             string       `json:"id"`
	VendorPattern  string       `json:"vendor_pattern,omitempty"`
	KeywordPattern string       `json:"keyword_pattern,omitempty"`
	AmountMin      *money.Money `json:"amount_min,omitempty"`
	AmountMax      *money.Money `json:"amount_max,omitempty"`
	CategoryCode   string       `json:"category_code"`
	Confidence     int          `json:"confidence"`
	Justification  string       `json:"justification,omitempty"`
}

// UserOverride is a user-scoped categorization directive. Overrides always
// outrank generic rules.
type UserOverride struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	VendorPattern  string `json:"vendor_pattern,omitempty"`
	KeywordPattern string `json:"keyword_pattern,omitempty"`
	CategoryCode   string `json:"category_code"`
	Note           string `json:"note,omitempty"`
}

// Assumption is a disclosed default or inference made in the absence of
// explicit user input.
type Assumption struct {
	Code               string `json:"code"`
	Description        string `json:"description"`
	Impact             Impact `json:"impact"`
	UserActionRequired bool   `json:"user_action_required"`
}

// RiskFlag is a situational warning attached to a computation run
type RiskFlag struct {
	Code       string   `json:"code"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}
