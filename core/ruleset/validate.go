package ruleset

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
)

var one = decimal.NewFromInt(1)

// Validate checks the structural invariants of a federal document
func (r *FederalRuleset) Validate() error {
	err := validation.ValidateStruct(&r.Envelope,
		validation.Field(&r.Envelope.ID, validation.Required),
		validation.Field(&r.Envelope.Jurisdiction, validation.Required),
		validation.Field(&r.Envelope.TaxYear, validation.Required, validation.Min(2000), validation.Max(2100)),
		validation.Field(&r.Envelope.Status, validation.Required,
			validation.In(StatusValidated, StatusStale, StatusDraft)),
	)
	if err != nil {
		return errors.Validation(fmt.Sprintf("federal ruleset %s", r.ID), err)
	}
	if len(r.Rules.Brackets) == 0 {
		return errors.Validation(fmt.Sprintf("federal ruleset %s", r.ID),
			fmt.Errorf("bracket tables are required"))
	}
	for status, brackets := range r.Rules.Brackets {
		if err := ValidateBrackets(brackets); err != nil {
			return errors.Validation(fmt.Sprintf("federal ruleset %s brackets for %s", r.ID, status), err)
		}
	}
	return nil
}

// Validate checks the structural invariants of a state document
func (r *StateRuleset) Validate() error {
	err := validation.ValidateStruct(&r.Envelope,
		validation.Field(&r.Envelope.ID, validation.Required),
		validation.Field(&r.Envelope.Jurisdiction, validation.Required),
		validation.Field(&r.Envelope.TaxYear, validation.Required, validation.Min(2000), validation.Max(2100)),
		validation.Field(&r.Envelope.Status, validation.Required,
			validation.In(StatusValidated, StatusStale, StatusDraft)),
	)
	if err != nil {
		return errors.Validation(fmt.Sprintf("state ruleset %s", r.ID), err)
	}
	for status, brackets := range r.Rules.Brackets {
		if err := ValidateBrackets(brackets); err != nil {
			return errors.Validation(fmt.Sprintf("state ruleset %s brackets for %s", r.ID, status), err)
		}
	}
	return nil
}

// ValidateBrackets checks that a bracket table is contiguous,
// non-overlapping, ordered ascending by lower bound, and only unbounded at
// the top.
func ValidateBrackets(brackets []Bracket) error {
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return fmt.Errorf("bracket %d: rate %s outside [0,1]", i, b.Rate)
		}
		if b.Upper != nil && b.Upper.Cmp(b.Lower) <= 0 {
			return fmt.Errorf("bracket %d: upper bound %s not above lower bound %s", i, b.Upper, b.Lower)
		}
		if b.Upper == nil && i != len(brackets)-1 {
			return fmt.Errorf("bracket %d: only the top bracket may be unbounded", i)
		}
		if i > 0 {
			prev := brackets[i-1]
			if prev.Upper == nil {
				return fmt.Errorf("bracket %d: follows an unbounded bracket", i)
			}
			if prev.Upper.Cmp(b.Lower) != 0 {
				return fmt.Errorf("bracket %d: lower bound %s not contiguous with previous upper bound %s",
					i, b.Lower, prev.Upper)
			}
		}
	}
	return nil
}
