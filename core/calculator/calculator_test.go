package calculator_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/calculator"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/risk"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

func federalRuleset() *ruleset.FederalRuleset {
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
				types.FilingSingle:       money.MustNew("15000"),
				types.FilingMarriedJoint: money.MustNew("30000"),
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

func stateRuleset() *ruleset.StateRuleset {
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

func singleNDProfile() *types.TaxProfile {
	return &types.TaxProfile{
		UserID:           "user-1",
		TaxYear:          2025,
		FilingStatus:     types.FilingSingle,
		ResidencyState:   "ND",
		FullYearResident: true,
	}
}

func findFlag(flags []types.RiskFlag, code string) *types.RiskFlag {
	for i := range flags {
		if flags[i].Code == code {
			return &flags[i]
		}
	}
	return nil
}

func hasAssumption(assumptions []types.Assumption, code string) bool {
	for _, a := range assumptions {
		if a.Code == code {
			return true
		}
	}
	return false
}

// TestSimpleW2Estimate covers the straightforward case: one confirmed W-2,
// full-year supported-state residency, no transactions.
func TestSimpleW2Estimate(t *testing.T) {
	in := calculator.Input{
		Profile: singleNDProfile(),
		Incomes: []types.IncomeSource{{
			ID:              "i1",
			Type:            types.IncomeW2,
			Amount:          money.MustNew("90000"),
			Confirmed:       true,
			FederalWithheld: money.MustNew("9000"),
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)

	assert.Equal(t, types.ScopeInScope, out.Scope.Status)
	assert.Equal(t, types.EstimateFull, out.EstimateStatus)
	assert.Empty(t, out.Watermark)

	assert.Equal(t, "90000.00", out.Breakdown.GrossIncome.String())
	assert.Equal(t, calculator.DeductionStandard, out.Breakdown.DeductionKind)
	assert.Equal(t, "15000.00", out.Breakdown.DeductionApplied.String())
	assert.Equal(t, "75000.00", out.Breakdown.FederalTaxableIncome.String())
	assert.True(t, out.Breakdown.SelfEmploymentTax.IsZero())

	require.Equal(t, types.FederalComputed, out.Federal.Status)
	require.NotNil(t, out.Federal.Tax)
	assert.Equal(t, "11414.00", out.Federal.Tax.String())
	require.NotNil(t, out.Federal.BalanceDue)
	assert.Equal(t, "2414.00", out.Federal.BalanceDue.String())

	require.Equal(t, types.StateComputed, out.State.Status)
	require.NotNil(t, out.State.Tax)
	assert.Equal(t, "1600.00", out.State.Tax.String())

	require.NotNil(t, out.Breakdown.TotalTax)
	assert.Equal(t, "13014.00", out.Breakdown.TotalTax.String())

	assert.Equal(t, 100, out.Completeness.Score)
	assert.Equal(t, 100, out.Confidence.Score)
	assert.Empty(t, out.RiskFlags)

	assert.True(t, hasAssumption(out.Assumptions, "STANDARD_DEDUCTION_APPLIED"))
	assert.True(t, hasAssumption(out.Assumptions, "CURRENT_RATE_SCHEDULE_APPLIED"))

	assert.Equal(t, "us-federal-2025-v1", out.RulesetIDs.Federal)
	assert.Equal(t, "nd-state-2025-v1", out.RulesetIDs.State)
}

// TestSelfEmployedEstimate covers business gross income with a rule-matched
// deductible expense transaction.
func TestSelfEmployedEstimate(t *testing.T) {
	in := calculator.Input{
		Profile: singleNDProfile(),
		Incomes: []types.IncomeSource{{
			ID:        "i1",
			Type:      types.IncomeBusinessGross,
			Amount:    money.MustNew("120000"),
			Confirmed: true,
		}},
		Transactions: []types.Transaction{{
			ID:        "t1",
			Date:      time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
			Merchant:  "Staples",
			Amount:    money.MustNew("2000").Neg(),
			Direction: types.DirectionExpense,
			Reviewed:  true,
		}},
		Rules: []types.CategoryRule{{
			ID:            "r1",
			VendorPattern: "staples",
			CategoryCode:  types.CategoryOfficeSupplies,
			Confidence:    80,
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)

	// The rule categorized the transaction during the run
	require.Len(t, out.CategorizedTransactions, 1)
	require.NotNil(t, out.CategorizedTransactions[0].Category)
	assert.Equal(t, types.CategoryOfficeSupplies, out.CategorizedTransactions[0].Category.Code)
	assert.Equal(t, types.SourceRule, out.CategorizedTransactions[0].Category.Source)

	assert.Equal(t, "2000.00", out.Breakdown.BusinessExpenses.String())
	assert.Equal(t, "16672.87", out.Breakdown.SelfEmploymentTax.String())
	assert.Equal(t, "8336.44", out.Breakdown.SelfEmploymentDeduction.String())

	// 120000 - 2000 - 8336.44 - 15000
	assert.Equal(t, "94663.56", out.Breakdown.FederalTaxableIncome.String())
	require.NotNil(t, out.Breakdown.TotalFederalTax)
	assert.Equal(t, "32412.85", out.Breakdown.TotalFederalTax.String())

	require.NotNil(t, out.State.Tax)
	assert.Equal(t, "2091.59", out.State.Tax.String())

	// Self-employment income without withholding drives both flags
	assert.NotNil(t, findFlag(out.RiskFlags, risk.CodeEstimatedPayments))
	uw := findFlag(out.RiskFlags, risk.CodeUnderwithholding)
	require.NotNil(t, uw)
	assert.Equal(t, types.SeverityHigh, uw.Severity)

	// The estimate range brackets the exact self-employment figure
	assert.True(t, out.Breakdown.SelfEmploymentTaxLow.LessThan(out.Breakdown.SelfEmploymentTax))
	assert.True(t, out.Breakdown.SelfEmploymentTaxHigh.GreaterThan(out.Breakdown.SelfEmploymentTax))

	// One high flag costs 8 confidence points
	assert.Equal(t, 100, out.Completeness.Score)
	assert.Equal(t, 92, out.Confidence.Score)
	assert.Equal(t, types.EstimateFull, out.EstimateStatus)
}

// TestBlockedWithoutFilingStatus covers the degraded case: nothing known
// beyond the user and year.
func TestBlockedWithoutFilingStatus(t *testing.T) {
	p := singleNDProfile()
	p.FilingStatus = types.FilingUnknown

	in := calculator.Input{
		Profile: p,
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)

	assert.Equal(t, types.EstimateBlocked, out.EstimateStatus)
	assert.Contains(t, out.Watermark, "filing status")

	assert.Equal(t, types.FederalBlockedInput, out.Federal.Status)
	assert.Nil(t, out.Federal.Tax)
	assert.Nil(t, out.Federal.BalanceDue)

	// No state figure and no combined totals may leak out
	assert.NotEqual(t, types.StateComputed, out.State.Status)
	assert.Nil(t, out.State.Tax)
	assert.Nil(t, out.Breakdown.TotalTax)
	assert.Nil(t, out.Breakdown.TotalBalanceDue)
	assert.Empty(t, out.PaymentPlan.Installments)

	assert.LessOrEqual(t, out.Completeness.Score, 50)
	assert.LessOrEqual(t, out.Confidence.Score, 60)
}

func TestPartialYearResidencyWatermark(t *testing.T) {
	p := singleNDProfile()
	p.FullYearResident = false

	in := calculator.Input{
		Profile: p,
		Incomes: []types.IncomeSource{{
			ID: "i1", Type: types.IncomeW2, Amount: money.MustNew("60000"), Confirmed: true,
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)

	assert.Equal(t, types.EstimatePartial, out.EstimateStatus)
	assert.NotEmpty(t, out.Watermark)
	assert.True(t, hasAssumption(out.Assumptions, "FULL_YEAR_RATES_ASSUMED"))

	// Figures are still produced, with the limitation disclosed
	assert.Equal(t, types.FederalComputed, out.Federal.Status)
	assert.Equal(t, types.StateComputed, out.State.Status)
}

func TestNonComputableStateBlocksEstimate(t *testing.T) {
	st := stateRuleset()
	st.Rules.Computable = false

	in := calculator.Input{
		Profile: singleNDProfile(),
		Incomes: []types.IncomeSource{{
			ID: "i1", Type: types.IncomeW2, Amount: money.MustNew("60000"), Confirmed: true,
		}},
		Federal: federalRuleset(),
		State:   st,
	}

	out := calculator.New().Compute(in)

	assert.Equal(t, types.StateBlockedRuleset, out.State.Status)
	assert.Nil(t, out.State.Tax)
	assert.Equal(t, types.EstimateBlocked, out.EstimateStatus)
	assert.NotEmpty(t, out.Watermark)

	// Federal is unaffected
	assert.Equal(t, types.FederalComputed, out.Federal.Status)
	assert.NotNil(t, out.Federal.Tax)
	assert.Nil(t, out.Breakdown.TotalTax)

	assert.NotNil(t, findFlag(out.RiskFlags, risk.CodeStateRulesetStale))
}

func TestManualCategoryIsNeverOverwritten(t *testing.T) {
	in := calculator.Input{
		Profile: singleNDProfile(),
		Incomes: []types.IncomeSource{{
			ID: "i1", Type: types.IncomeW2, Amount: money.MustNew("60000"), Confirmed: true,
		}},
		Transactions: []types.Transaction{{
			ID:        "t1",
			Date:      time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
			Merchant:  "Staples",
			Amount:    money.MustNew("50").Neg(),
			Direction: types.DirectionExpense,
			Reviewed:  true,
			Category: &types.Category{
				Code:       types.CategoryTravel,
				Confidence: 100,
				Source:     types.SourceUser,
			},
		}},
		// A rule that would reclassify the transaction if allowed to
		Rules: []types.CategoryRule{{
			ID:            "r1",
			VendorPattern: "staples",
			CategoryCode:  types.CategoryOfficeSupplies,
			Confidence:    90,
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)
	require.Len(t, out.CategorizedTransactions, 1)
	assert.Equal(t, types.CategoryTravel, out.CategorizedTransactions[0].Category.Code)
	assert.Equal(t, types.SourceUser, out.CategorizedTransactions[0].Category.Source)

	// The input slice itself is untouched
	assert.Equal(t, types.CategoryTravel, in.Transactions[0].Category.Code)
}

func TestItemizedDeductionWhenLarger(t *testing.T) {
	itemized := money.MustNew("20000")
	p := singleNDProfile()
	p.ItemizedDeduction = &itemized

	in := calculator.Input{
		Profile: p,
		Incomes: []types.IncomeSource{{
			ID: "i1", Type: types.IncomeW2, Amount: money.MustNew("90000"), Confirmed: true,
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)
	assert.Equal(t, calculator.DeductionItemized, out.Breakdown.DeductionKind)
	assert.Equal(t, "20000.00", out.Breakdown.DeductionApplied.String())
	assert.False(t, hasAssumption(out.Assumptions, "STANDARD_DEDUCTION_APPLIED"))

	// ForceStandardDeduction wins even over a larger itemized amount
	p.ForceStandardDeduction = true
	out = calculator.New().Compute(in)
	assert.Equal(t, calculator.DeductionStandard, out.Breakdown.DeductionKind)
	assert.Equal(t, "15000.00", out.Breakdown.DeductionApplied.String())
}

func TestPaymentPlanSchedule(t *testing.T) {
	in := calculator.Input{
		Profile: singleNDProfile(),
		Incomes: []types.IncomeSource{{
			ID: "i1", Type: types.IncomeW2, Amount: money.MustNew("90000"), Confirmed: true,
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)
	require.NotNil(t, out.Breakdown.TotalBalanceDue)
	balance := *out.Breakdown.TotalBalanceDue

	require.Len(t, out.PaymentPlan.Installments, 4)
	assert.Equal(t, "combined", out.PaymentPlan.Basis)

	wantDates := []time.Time{
		time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
	sum := money.Zero()
	for i, inst := range out.PaymentPlan.Installments {
		assert.Equal(t, i+1, inst.Sequence)
		assert.Equal(t, wantDates[i], inst.DueDate)
		sum = sum.Add(inst.Amount)
	}

	// Four equal installments; rounding may shift the sum by at most a cent
	// per installment.
	drift := sum.Sub(balance).Abs()
	assert.False(t, drift.GreaterThan(money.MustNew("0.04")),
		"installments sum %s too far from balance %s", sum, balance)

	assert.Equal(t, balance.DivInt(12).RoundCents(), out.Breakdown.MonthlySetAside)
	assert.Equal(t, balance.DivInt(4).RoundCents(), out.Breakdown.QuarterlySetAside)
}

func TestOverpaidHasNoPaymentPlan(t *testing.T) {
	in := calculator.Input{
		Profile: singleNDProfile(),
		Incomes: []types.IncomeSource{{
			ID:              "i1",
			Type:            types.IncomeW2,
			Amount:          money.MustNew("90000"),
			Confirmed:       true,
			FederalWithheld: money.MustNew("20000"),
			StateWithheld:   money.MustNew("3000"),
		}},
		EstimatedPayments: []types.EstimatedPayment{{
			ID:           "p1",
			Jurisdiction: types.JurisdictionFederal,
			Amount:       money.MustNew("1000"),
			PaidAt:       time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)
	require.NotNil(t, out.Federal.BalanceDue)
	assert.True(t, out.Federal.BalanceDue.IsNegative(), "expected a refund position")
	assert.Equal(t, "1000.00", out.Federal.EstimatedPayments.String())
	assert.Empty(t, out.PaymentPlan.Installments)
	assert.True(t, out.Breakdown.MonthlySetAside.IsZero())
	assert.Nil(t, findFlag(out.RiskFlags, risk.CodeUnderwithholding))
}

func TestExplanationGraphIsValid(t *testing.T) {
	in := calculator.Input{
		Profile: singleNDProfile(),
		Incomes: []types.IncomeSource{{
			ID: "i1", Type: types.IncomeBusinessGross, Amount: money.MustNew("120000"), Confirmed: true,
		}},
		Transactions: []types.Transaction{{
			ID:        "t1",
			Date:      time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
			Merchant:  "Staples",
			Amount:    money.MustNew("2000").Neg(),
			Direction: types.DirectionExpense,
			Reviewed:  true,
			Category:  &types.Category{Code: types.CategoryOfficeSupplies, Source: types.SourceUser},
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)
	require.NotNil(t, out.Explanation)
	require.NoError(t, out.Explanation.Validate())

	root := out.Explanation.Root()
	require.NotNil(t, root)
	assert.Len(t, root.Children, 5)

	// The deductible transaction is traceable from the expenses node
	found := false
	for _, node := range out.Explanation.Nodes {
		for _, id := range node.TransactionIDs {
			if id == "t1" {
				found = true
			}
		}
	}
	assert.True(t, found, "transaction t1 not referenced by any explanation node")
}

// TestComputeIsIdempotent proves byte-for-byte reproducibility: the same
// snapshot and rulesets always serialize to the same output.
func TestComputeIsIdempotent(t *testing.T) {
	itemized := money.MustNew("16000")
	p := singleNDProfile()
	p.ItemizedDeduction = &itemized

	in := calculator.Input{
		Profile: p,
		Incomes: []types.IncomeSource{
			{ID: "i1", Type: types.IncomeW2, Amount: money.MustNew("70000"), Confirmed: true,
				FederalWithheld: money.MustNew("6000")},
			{ID: "i2", Type: types.Income1099NEC, Amount: money.MustNew("30000")},
		},
		Transactions: []types.Transaction{
			{
				ID:        "t1",
				Date:      time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC),
				Merchant:  "Corner Cafe",
				Amount:    money.MustNew("35").Neg(),
				Direction: types.DirectionExpense,
			},
			{
				ID:        "t2",
				Date:      time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC),
				Merchant:  "Staples",
				Amount:    money.MustNew("120").Neg(),
				Direction: types.DirectionExpense,
			},
		},
		Rules: []types.CategoryRule{{
			ID:            "r1",
			VendorPattern: "staples",
			CategoryCode:  types.CategoryOfficeSupplies,
			Confidence:    80,
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	first, err := json.Marshal(calculator.New().Compute(in))
	require.NoError(t, err)
	second, err := json.Marshal(calculator.New().Compute(in))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestAdvancedAttributesForceOutOfScope(t *testing.T) {
	p := singleNDProfile()
	p.HasK1Income = true

	in := calculator.Input{
		Profile: p,
		Incomes: []types.IncomeSource{{
			ID: "i1", Type: types.IncomeW2, Amount: money.MustNew("90000"), Confirmed: true,
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)

	assert.Equal(t, types.ScopeOutOfScope, out.Scope.Status)
	assert.Equal(t, types.StateOutOfScope, out.State.Status)

	f := findFlag(out.RiskFlags, risk.CodeOutOfScopeCase)
	require.NotNil(t, f)
	assert.Equal(t, types.SeverityHigh, f.Severity)
	assert.NotNil(t, findFlag(out.RiskFlags, "ADVANCED_TAX_SITUATION"))
}

func TestOutOfScopeResidency(t *testing.T) {
	p := singleNDProfile()
	p.ResidencyState = "MN"

	in := calculator.Input{
		Profile: p,
		Incomes: []types.IncomeSource{{
			ID: "i1", Type: types.IncomeW2, Amount: money.MustNew("80000"), Confirmed: true,
		}},
		Federal: federalRuleset(),
		State:   stateRuleset(),
	}

	out := calculator.New().Compute(in)

	assert.Equal(t, types.ScopeOutOfScope, out.Scope.Status)
	assert.Equal(t, types.StateOutOfScope, out.State.Status)
	assert.Nil(t, out.State.Tax)
	assert.Equal(t, types.EstimatePartial, out.EstimateStatus)
	assert.NotEmpty(t, out.Watermark)

	// Federal can still be computed for an out-of-state resident
	assert.Equal(t, types.FederalComputed, out.Federal.Status)
	assert.NotNil(t, findFlag(out.RiskFlags, risk.CodeOutOfScopeCase))
}
