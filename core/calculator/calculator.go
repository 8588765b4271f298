package calculator

import (
	"fmt"
	"strings"
	"time"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/categorize"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/completeness"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/confidence"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/risk"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/scope"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// defaultUnderwithholdingFloor is the fixed floor below which a federal
// balance due never raises the underwithholding flag.
var defaultUnderwithholdingFloor = money.FromCents(100000)

// Underwithholding severity thresholds as a share of gross income.
const (
	underwithholdingMediumShare = 0.05
	underwithholdingHighShare   = 0.10
)

// Calculator sequences the computation pipeline. It holds no mutable state
// across runs; Compute is a pure function of its input.
type Calculator struct {
	engine    *categorize.Engine
	evaluator *scope.Evaluator

	// UnderwithholdingFloor overrides the default fixed floor when set
	UnderwithholdingFloor money.Money
}

// New creates a calculator for the default supported state
func New() *Calculator {
	return &Calculator{
		engine:                categorize.NewEngine(),
		evaluator:             scope.NewEvaluator(),
		UnderwithholdingFloor: defaultUnderwithholdingFloor,
	}
}

// NewForState creates a calculator supporting a specific state jurisdiction
func NewForState(state string) *Calculator {
	c := New()
	c.evaluator.SupportedState = state
	return c
}

// Compute turns a fixed input snapshot into a scored, explained estimate.
// Every branch (missing filing status, non-computable state ruleset,
// out-of-scope profile) is modeled as a status value, never an error; no
// partial output is ever returned.
func (c *Calculator) Compute(in Input) Output {
	out := Output{
		RulesetIDs: RulesetIDs{Federal: in.Federal.ID, State: in.State.ID},
	}

	// Step 1: categorize transactions lacking a category. Existing
	// assignments pass through unchanged; manual categorization is never
	// overwritten.
	txns := make([]types.Transaction, len(in.Transactions))
	copy(txns, in.Transactions)
	for i := range txns {
		if txns[i].IsCategorized() {
			continue
		}
		if s := c.engine.Categorize(&txns[i], in.Rules, in.Overrides); s != nil {
			txns[i].Category = &types.Category{
				Code:       s.CategoryCode,
				Confidence: s.Confidence,
				Source:     s.Source,
				Reason:     s.Reason,
			}
		}
	}
	out.CategorizedTransactions = txns

	// Step 2: scope and completeness on the categorized set
	out.Scope = c.evaluator.Evaluate(in.Profile)
	out.Completeness = completeness.Score(in.Profile, in.Incomes, txns)

	assumptions := append([]types.Assumption{}, out.Scope.Assumptions...)

	// Step 3: deductible business expenses
	businessExpenses := money.Zero()
	var expenseTxnIDs []string
	for i := range txns {
		t := &txns[i]
		if t.Direction == types.DirectionExpense && t.IsCategorized() &&
			types.IsDeductibleCategory(t.Category.Code) {
			businessExpenses = businessExpenses.Add(t.Amount.Abs())
			expenseTxnIDs = append(expenseTxnIDs, t.ID)
		}
	}
	for i := range in.Deductions {
		if in.Deductions[i].Confirmed {
			businessExpenses = businessExpenses.Add(in.Deductions[i].Amount)
		}
	}
	businessExpenses = businessExpenses.RoundCents()
	out.Breakdown.BusinessExpenses = businessExpenses

	// Step 4: gross income from income sources only; transactions are not
	// double-counted as income at this stage
	grossIncome := money.Zero()
	for i := range in.Incomes {
		grossIncome = grossIncome.Add(in.Incomes[i].Amount)
	}
	grossIncome = grossIncome.RoundCents()
	out.Breakdown.GrossIncome = grossIncome

	// Step 5: self-employment tax
	se := computeSelfEmployment(in.Profile, in.Incomes, grossIncome, businessExpenses,
		in.Federal.Rules.SelfEmployment)
	if se.applies {
		out.Breakdown.SelfEmploymentTax = se.total
		out.Breakdown.SelfEmploymentTaxLow = se.low
		out.Breakdown.SelfEmploymentTaxHigh = se.high
		out.Breakdown.SelfEmploymentDeduction = se.halfDeduction
	}

	// Step 6: standard vs itemized deduction
	filing := in.Profile.FilingStatus
	deductionApplied := money.Zero()
	if filing.IsKnown() {
		standard := in.Federal.StandardDeductionFor(filing)
		useStandard := in.Profile.ForceStandardDeduction ||
			in.Profile.ItemizedDeduction == nil ||
			!in.Profile.ItemizedDeduction.GreaterThan(standard)
		if useStandard {
			out.Breakdown.DeductionKind = DeductionStandard
			deductionApplied = standard
			if !in.Profile.ForceStandardDeduction {
				assumptions = append(assumptions, types.Assumption{
					Code: "STANDARD_DEDUCTION_APPLIED",
					Description: fmt.Sprintf("The %s standard deduction of $%s was applied because no larger itemized amount was provided.",
						filing, standard),
					Impact: types.ImpactMedium,
				})
			}
		} else {
			out.Breakdown.DeductionKind = DeductionItemized
			deductionApplied = *in.Profile.ItemizedDeduction
		}
	}
	out.Breakdown.DeductionApplied = deductionApplied.RoundCents()

	// Step 7: federal taxable income and tax. No federal number may be
	// produced without a filing status.
	if filing.IsKnown() {
		taxable := money.Max(money.Zero(),
			grossIncome.Sub(businessExpenses).Sub(se.halfDeduction).Sub(deductionApplied)).RoundCents()
		incomeTax := BracketTax(in.Federal.BracketsFor(filing), taxable)
		totalFederal := incomeTax.Add(se.total).RoundCents()

		out.Breakdown.FederalTaxableIncome = taxable
		out.Breakdown.FederalIncomeTax = &incomeTax
		out.Breakdown.TotalFederalTax = &totalFederal
		out.Federal.Status = types.FederalComputed
		out.Federal.Tax = &totalFederal

		assumptions = append(assumptions, types.Assumption{
			Code: "CURRENT_RATE_SCHEDULE_APPLIED",
			Description: fmt.Sprintf("Federal rate schedule %s (tax year %d) was applied.",
				in.Federal.ID, in.Federal.TaxYear),
			Impact: types.ImpactLow,
		})
	} else {
		out.Federal.Status = types.FederalBlockedInput
	}

	// Step 8: state tax from the same federal taxable income base
	switch {
	case out.Scope.Status == types.ScopeOutOfScope:
		out.State.Status = types.StateOutOfScope
	case !in.State.Computable():
		out.State.Status = types.StateBlockedRuleset
	case !filing.IsKnown():
		out.State.Status = types.StateOutOfScope
	default:
		stateTax := BracketTax(in.State.BracketsFor(filing), out.Breakdown.FederalTaxableIncome)
		out.State.Status = types.StateComputed
		out.State.Tax = &stateTax
		out.Breakdown.StateTax = &stateTax
	}

	// Step 9: risk flags, including the two that need computed figures
	flags := append(append([]types.RiskFlag{}, out.Scope.RiskFlags...),
		risk.Build(out.Scope, in.Incomes, txns, in.State)...)

	if se.applies && se.total.IsPositive() {
		flags = append(flags, types.RiskFlag{
			Code:     risk.CodeEstimatedPayments,
			Severity: types.SeverityMedium,
			Message: fmt.Sprintf("Self-employment tax of $%s is due without withholding to cover it.",
				se.total),
			Suggestion: "Make quarterly estimated payments to avoid an underpayment penalty.",
		})
	}

	// Step 11 withholding figures are needed for the underwithholding
	// flag, so compute balances before finalizing flags.
	c.applyBalances(&out, in)

	if out.Federal.BalanceDue != nil {
		due := *out.Federal.BalanceDue
		floor := c.UnderwithholdingFloor
		mediumBar := money.Max(floor, grossIncome.MulFloat(underwithholdingMediumShare))
		highBar := money.Max(floor, grossIncome.MulFloat(underwithholdingHighShare))
		if due.GreaterThan(mediumBar) {
			severity := types.SeverityMedium
			if due.GreaterThan(highBar) {
				severity = types.SeverityHigh
			}
			flags = append(flags, types.RiskFlag{
				Code:     risk.CodeUnderwithholding,
				Severity: severity,
				Message: fmt.Sprintf("Projected federal balance due of $%s exceeds the safe-harbor threshold.",
					due),
				Suggestion: "Increase withholding or make an estimated payment before the filing deadline.",
			})
		}
	}

	out.Assumptions = assumptions
	out.RiskFlags = flags

	// Step 10: confidence over the now-complete flag list
	out.Confidence = confidence.Score(out.Completeness.Score, in.Incomes, txns,
		flags, in.State.Computable())

	// Step 11 (continued): set-asides and the installment plan
	c.applyPaymentPlan(&out, in.Profile.TaxYear)

	// Step 12: explanation graph
	out.Explanation = buildExplanation(in, &out, se, expenseTxnIDs)

	// Step 13: overall estimate status and watermark
	c.applyEstimateStatus(&out)

	return out
}

// applyBalances fills withholding totals and per-jurisdiction balances due
func (c *Calculator) applyBalances(out *Output, in Input) {
	federalWithheld := money.Zero()
	stateWithheld := money.Zero()
	for i := range in.Incomes {
		federalWithheld = federalWithheld.Add(in.Incomes[i].FederalWithheld)
		stateWithheld = stateWithheld.Add(in.Incomes[i].StateWithheld)
	}

	federalPaid := money.Zero()
	statePaid := money.Zero()
	for i := range in.EstimatedPayments {
		p := &in.EstimatedPayments[i]
		switch p.Jurisdiction {
		case types.JurisdictionFederal:
			federalPaid = federalPaid.Add(p.Amount)
		case types.JurisdictionState:
			statePaid = statePaid.Add(p.Amount)
		}
	}

	out.Federal.Withheld = federalWithheld.RoundCents()
	out.Federal.EstimatedPayments = federalPaid.RoundCents()
	out.State.Withheld = stateWithheld.RoundCents()
	out.State.EstimatedPayments = statePaid.RoundCents()

	if out.Federal.Status == types.FederalComputed {
		due := out.Federal.Tax.Sub(out.Federal.Withheld).Sub(out.Federal.EstimatedPayments).RoundCents()
		out.Federal.BalanceDue = &due
	}
	if out.State.Status == types.StateComputed {
		due := out.State.Tax.Sub(out.State.Withheld).Sub(out.State.EstimatedPayments).RoundCents()
		out.State.BalanceDue = &due
	}

	// Combined totals exist only when both jurisdictions computed
	if out.Federal.Status == types.FederalComputed && out.State.Status == types.StateComputed {
		totalTax := out.Federal.Tax.Add(*out.State.Tax).RoundCents()
		totalDue := out.Federal.BalanceDue.Add(*out.State.BalanceDue).RoundCents()
		out.Breakdown.TotalTax = &totalTax
		out.Breakdown.TotalBalanceDue = &totalDue
	}
}

// applyPaymentPlan sizes the set-aside recommendations and the
// four-installment estimated-payment schedule, due the 15th of the 4th,
// 6th and 9th months of the tax year and the 1st month of the next year.
func (c *Calculator) applyPaymentPlan(out *Output, taxYear int) {
	var planBalance money.Money
	var basis string
	switch {
	case out.Breakdown.TotalBalanceDue != nil:
		planBalance = *out.Breakdown.TotalBalanceDue
		basis = "combined"
	case out.Federal.BalanceDue != nil:
		planBalance = *out.Federal.BalanceDue
		basis = "federal_only"
	default:
		return
	}

	if !planBalance.IsPositive() {
		return
	}

	out.Breakdown.MonthlySetAside = planBalance.DivInt(12).RoundCents()
	out.Breakdown.QuarterlySetAside = planBalance.DivInt(4).RoundCents()

	installment := planBalance.DivInt(4).RoundCents()
	dueDates := []time.Time{
		time.Date(taxYear, time.April, 15, 0, 0, 0, 0, time.UTC),
		time.Date(taxYear, time.June, 15, 0, 0, 0, 0, time.UTC),
		time.Date(taxYear, time.September, 15, 0, 0, 0, 0, time.UTC),
		time.Date(taxYear+1, time.January, 15, 0, 0, 0, 0, time.UTC),
	}

	plan := PaymentPlan{Basis: basis}
	for i, due := range dueDates {
		plan.Installments = append(plan.Installments, Installment{
			Sequence: i + 1,
			DueDate:  due,
			Amount:   installment,
		})
	}
	out.PaymentPlan = plan
}

// applyEstimateStatus derives the overall status and watermark
func (c *Calculator) applyEstimateStatus(out *Output) {
	switch {
	case out.Federal.Status != types.FederalComputed || out.State.Status == types.StateBlockedRuleset:
		out.EstimateStatus = types.EstimateBlocked
		reason := "the state rate schedule is not currently computable"
		if out.Federal.Status != types.FederalComputed {
			reason = "a filing status is required before a federal figure can be produced"
		}
		out.Watermark = watermark(reason, out.Scope.NextStep)
	case out.Scope.Status == types.ScopeInScope:
		out.EstimateStatus = types.EstimateFull
	default:
		out.EstimateStatus = types.EstimatePartial
		reason := fmt.Sprintf("profile is %s: %s",
			out.Scope.Status, strings.Join(out.Scope.Reasons, ", "))
		out.Watermark = watermark(reason, out.Scope.NextStep)
	}
}

func watermark(reason, nextStep string) string {
	if nextStep == "" {
		return fmt.Sprintf("Estimate incomplete: %s.", reason)
	}
	return fmt.Sprintf("Estimate incomplete: %s. Next step: %s", reason, nextStep)
}
