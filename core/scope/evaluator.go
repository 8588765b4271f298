// Package scope decides whether a tax profile is fully supported, partially
// supported, or out of scope for automated computation.
package scope

import (
	"fmt"
	"strings"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// Scope reason codes.
const (
	ReasonSupportedCase      = "SUPPORTED_CASE"
	ReasonNonNDResidency     = "NON_ND_RESIDENCY"
	ReasonPartialYear        = "PARTIAL_YEAR_RESIDENCY"
	ReasonAdvancedAttributes = "ADVANCED_ATTRIBUTES"
)

// DefaultSupportedState is the one jurisdiction this engine can compute
const DefaultSupportedState = "ND"

// Decision is the outcome of scope evaluation
type Decision struct {
	Status      types.ScopeStatus  `json:"status"`
	Reasons     []string           `json:"reasons"`
	Assumptions []types.Assumption `json:"assumptions,omitempty"`
	RiskFlags   []types.RiskFlag   `json:"risk_flags,omitempty"`

	// NextStep is the recommended user action for non-supported cases
	NextStep string `json:"next_step,omitempty"`
}

// Evaluator evaluates profile scope. It is pure: the same profile always
// yields the same decision.
type Evaluator struct {
	SupportedState string
}

// NewEvaluator creates an evaluator for the default supported state
func NewEvaluator() *Evaluator {
	return &Evaluator{SupportedState: DefaultSupportedState}
}

// Evaluate decides the scope for a profile
func (e *Evaluator) Evaluate(profile *types.TaxProfile) Decision {
	decision := Decision{Status: types.ScopeInScope}

	supported := e.SupportedState
	if supported == "" {
		supported = DefaultSupportedState
	}

	if profile.ResidencyState != "" && profile.ResidencyState != supported {
		decision.Status = types.ScopeOutOfScope
		decision.Reasons = append(decision.Reasons, ReasonNonNDResidency)
		decision.NextStep = fmt.Sprintf("File %s taxes with a preparer licensed in that state.", profile.ResidencyState)
	}

	if !profile.FullYearResident {
		if decision.Status != types.ScopeOutOfScope {
			decision.Status = types.ScopePartial
		}
		decision.Reasons = append(decision.Reasons, ReasonPartialYear)
		decision.Assumptions = append(decision.Assumptions, types.Assumption{
			Code:               "FULL_YEAR_RATES_ASSUMED",
			Description:        "Partial-year residency detected; full-year rates were applied. Part-year allocation requires manual review.",
			Impact:             types.ImpactHigh,
			UserActionRequired: true,
		})
		if decision.NextStep == "" {
			decision.NextStep = "Confirm the months of residency so part-year allocation can be reviewed."
		}
	}

	// Advanced attributes always win over a mere partial-year downgrade
	if profile.HasAdvancedAttributes() {
		attrs := profile.AdvancedAttributeNames()
		decision.Status = types.ScopeOutOfScope
		decision.Reasons = append(decision.Reasons, ReasonAdvancedAttributes)
		decision.RiskFlags = append(decision.RiskFlags, types.RiskFlag{
			Code:       "ADVANCED_TAX_SITUATION",
			Severity:   types.SeverityHigh,
			Message:    fmt.Sprintf("Profile has advanced attributes not supported for automated computation: %s.", strings.Join(attrs, ", ")),
			Suggestion: "Work with a tax professional for returns involving these situations.",
		})
		decision.NextStep = "Consult a tax professional; this situation is outside automated support."
	}

	if len(decision.Reasons) == 0 {
		decision.Reasons = []string{ReasonSupportedCase}
	}

	return decision
}
