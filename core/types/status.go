// Package types defines the core data structures for the tax engine.
package types

// FilingStatus is the taxpayer's federal filing status.
// The zero value means the status is not yet known; no federal number may
// be produced without a known status.
type FilingStatus string

// Filing status constants.
const (
	FilingUnknown         FilingStatus = ""
	FilingSingle          FilingStatus = "SINGLE"
	FilingMarriedJoint    FilingStatus = "MARRIED_FILING_JOINTLY"
	FilingMarriedSeparate FilingStatus = "MARRIED_FILING_SEPARATELY"
	FilingHeadOfHousehold FilingStatus = "HEAD_OF_HOUSEHOLD"
)

// IsKnown reports whether a filing status has been provided
func (s FilingStatus) IsKnown() bool {
	return s != FilingUnknown
}

// String returns string representation
func (s FilingStatus) String() string {
	if s == FilingUnknown {
		return "UNKNOWN"
	}
	return string(s)
}

// ScopeStatus classifies whether a profile can be computed automatically
type ScopeStatus int

const (
	// ScopeInScope - profile is fully supported
	ScopeInScope ScopeStatus = iota

	// ScopePartial - profile is supported with disclosed limitations
	ScopePartial

	// ScopeOutOfScope - profile cannot be computed automatically
	ScopeOutOfScope
)

// String returns string representation
func (s ScopeStatus) String() string {
	switch s {
	case ScopeInScope:
		return "IN_SCOPE"
	case ScopePartial:
		return "PARTIAL"
	case ScopeOutOfScope:
		return "OUT_OF_SCOPE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s ScopeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FederalStatus is the outcome of the federal computation
type FederalStatus int

const (
	// FederalComputed - a federal tax figure was produced
	FederalComputed FederalStatus = iota

	// FederalBlockedInput - required input (filing status) is missing
	FederalBlockedInput
)

// String returns string representation
func (s FederalStatus) String() string {
	switch s {
	case FederalComputed:
		return "COMPUTED"
	case FederalBlockedInput:
		return "BLOCKED_INPUT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s FederalStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateStatus is the outcome of the state computation
type StateStatus int

const (
	// StateComputed - a state tax figure was produced
	StateComputed StateStatus = iota

	// StateBlockedRuleset - the state ruleset is stale or non-computable
	StateBlockedRuleset

	// StateOutOfScope - scope evaluation excluded the state computation
	StateOutOfScope
)

// String returns string representation
func (s StateStatus) String() string {
	switch s {
	case StateComputed:
		return "COMPUTED"
	case StateBlockedRuleset:
		return "BLOCKED_RULESET"
	case StateOutOfScope:
		return "OUT_OF_SCOPE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s StateStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EstimateStatus is the overall status of a computation run
type EstimateStatus int

const (
	// EstimateFull - everything computed for a fully in-scope profile
	EstimateFull EstimateStatus = iota

	// EstimatePartial - computed with disclosed limitations
	EstimatePartial

	// EstimateBlocked - combined totals must be treated as unavailable
	EstimateBlocked
)

// String returns string representation
func (s EstimateStatus) String() string {
	switch s {
	case EstimateFull:
		return "FULL"
	case EstimatePartial:
		return "PARTIAL"
	case EstimateBlocked:
		return "BLOCKED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s EstimateStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Severity classifies risk flags
type Severity string

// Severity constants.
const (
	SeverityInfo   Severity = "info"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Impact classifies assumptions and gaps
type Impact string

// Impact constants.
const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)
