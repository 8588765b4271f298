package ruleset_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
)

var testKey = []byte("unit-test-signing-key")

func testFederalRuleset() *ruleset.FederalRuleset {
	upper1 := money.MustNew("11925")
	upper2 := money.MustNew("48475")
	return &ruleset.FederalRuleset{
		Envelope: ruleset.Envelope{
			ID:            "us-federal-2025-v1",
			Jurisdiction:  "federal",
			TaxYear:       2025,
			EffectiveDate: "2025-01-01",
			Status:        ruleset.StatusValidated,
		},
		Rules: ruleset.FederalRules{
			StandardDeduction: map[types.FilingStatus]money.Money{
				types.FilingSingle: money.MustNew("15000"),
			},
			Brackets: map[types.FilingStatus][]ruleset.Bracket{
				types.FilingSingle: {
					{Lower: money.Zero(), Upper: &upper1, Rate: decimal.NewFromFloat(0.10)},
					{Lower: upper1, Upper: &upper2, Rate: decimal.NewFromFloat(0.12)},
					{Lower: upper2, Rate: decimal.NewFromFloat(0.22)},
				},
			},
			SelfEmployment: ruleset.SelfEmploymentParams{
				NetEarningsFactor:      decimal.NewFromFloat(0.9235),
				SocialSecurityRate:     decimal.NewFromFloat(0.124),
				SocialSecurityWageBase: money.MustNew("176100"),
				MedicareRate:           decimal.NewFromFloat(0.029),
				AdditionalMedicareRate: decimal.NewFromFloat(0.009),
				AdditionalMedicareThreshold: map[types.FilingStatus]money.Money{
					types.FilingSingle: money.MustNew("200000"),
				},
			},
		},
	}
}

func testStateRuleset() *ruleset.StateRuleset {
	upper := money.MustNew("50000")
	return &ruleset.StateRuleset{
		Envelope: ruleset.Envelope{
			ID:            "nd-state-2025-v1",
			Jurisdiction:  "ND",
			TaxYear:       2025,
			EffectiveDate: "2025-01-01",
			Status:        ruleset.StatusValidated,
		},
		Rules: ruleset.StateRules{
			Computable: true,
			Brackets: map[types.FilingStatus][]ruleset.Bracket{
				types.FilingSingle: {
					{Lower: money.Zero(), Upper: &upper, Rate: decimal.NewFromFloat(0.0195)},
					{Lower: upper, Rate: decimal.NewFromFloat(0.025)},
				},
			},
		},
	}
}

func TestSignThenVerifyRoundTrip(t *testing.T) {
	signer := ruleset.NewSigner(testKey)

	fed := testFederalRuleset()
	require.NoError(t, signer.SignFederal(fed))
	require.NotEmpty(t, fed.Signature)
	assert.NoError(t, signer.VerifyFederal(fed))

	st := testStateRuleset()
	require.NoError(t, signer.SignState(st))
	assert.NoError(t, signer.VerifyState(st))
}

func TestVerifyRejectsPayloadMutation(t *testing.T) {
	signer := ruleset.NewSigner(testKey)

	doc := testFederalRuleset()
	require.NoError(t, signer.SignFederal(doc))

	// Any rule change after signing must invalidate the signature
	doc.Rules.StandardDeduction[types.FilingSingle] = money.MustNew("999999")

	err := signer.VerifyFederal(doc)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeRulesetSignatureInvalid),
		"expected RULESET_SIGNATURE_INVALID, got %v", err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	doc := testFederalRuleset()
	require.NoError(t, ruleset.NewSigner(testKey).SignFederal(doc))

	err := ruleset.NewSigner([]byte("a-different-key")).VerifyFederal(doc)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeRulesetSignatureInvalid))
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	signer := ruleset.NewSigner(testKey)

	for _, sig := range []string{"", "not-hex", "deadbeef"} {
		doc := testStateRuleset()
		doc.Signature = sig
		err := signer.VerifyState(doc)
		assert.Error(t, err, "signature %q accepted", sig)
	}
}

func TestSigningIsDeterministic(t *testing.T) {
	signer := ruleset.NewSigner(testKey)

	a := testFederalRuleset()
	b := testFederalRuleset()
	require.NoError(t, signer.SignFederal(a))
	require.NoError(t, signer.SignFederal(b))
	assert.Equal(t, a.Signature, b.Signature)

	// Re-signing an already signed document yields the same signature:
	// the signature field itself is not part of the signed payload.
	require.NoError(t, signer.SignFederal(a))
	assert.Equal(t, b.Signature, a.Signature)
}
