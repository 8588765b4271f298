package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	base := New(TypeValidation, "bad document")
	if base.Error() != "[VALIDATION_ERROR] bad document" {
		t.Errorf("unexpected message: %s", base.Error())
	}

	cause := fmt.Errorf("unexpected end of input")
	wrapped := Wrap(TypeValidation, "parse federal ruleset", cause)
	if wrapped.Error() != "[VALIDATION_ERROR] parse federal ruleset: unexpected end of input" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Errorf("wrapped cause not reachable via errors.Is")
	}
}

func TestIsType(t *testing.T) {
	err := RulesetSignatureInvalid("us-federal-2025-v1")
	if !IsType(err, TypeRulesetSignatureInvalid) {
		t.Errorf("IsType missed the signature error")
	}
	if IsType(err, TypeRulesetNotFound) {
		t.Errorf("IsType matched the wrong type")
	}
	if IsType(fmt.Errorf("plain"), TypeRulesetSignatureInvalid) {
		t.Errorf("IsType matched a plain error")
	}

	// Wrapped one level deeper, the type still resolves
	outer := fmt.Errorf("loading ruleset: %w", err)
	if !IsType(outer, TypeRulesetSignatureInvalid) {
		t.Errorf("IsType did not unwrap")
	}
}

func TestWithContext(t *testing.T) {
	err := RulesetNotFound("nd-state-2025-v1").WithContext("tax_year", 2025)
	if err.Context["tax_year"] != 2025 {
		t.Errorf("context not attached: %+v", err.Context)
	}
}
