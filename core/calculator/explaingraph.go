package calculator

import (
	"strconv"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/explain"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// buildExplanation assembles the explanation graph: a single root
// summarizing federal and state tax, with child derivation nodes annotated
// with their formulas, numeric snapshots, and the transaction ids that fed
// them. Node ids are stable across runs with identical inputs.
func buildExplanation(in Input, out *Output, se selfEmploymentResult, expenseTxnIDs []string) *explain.Graph {
	gen := explain.NewIDGenerator("tax-explanation")
	scopeKey := in.Profile.UserID + "/" + strconv.Itoa(in.Profile.TaxYear)
	graph := explain.NewGraph()

	incomeNode := &explain.Node{
		ID:      gen.Generate(scopeKey, "gross-income"),
		Label:   "Gross income",
		Formula: "sum(income source amounts)",
		Outputs: []explain.KV{{Key: "gross_income", Value: out.Breakdown.GrossIncome.String()}},
	}
	for i := range in.Incomes {
		src := &in.Incomes[i]
		incomeNode.Inputs = append(incomeNode.Inputs, explain.KV{
			Key:   string(src.Type) + ":" + src.ID,
			Value: src.Amount.String(),
		})
	}
	graph.Add(incomeNode)

	expenseNode := &explain.Node{
		ID:      gen.Generate(scopeKey, "business-expenses"),
		Label:   "Deductible business expenses",
		Formula: "sum(categorized deductible expenses) + sum(confirmed deduction items)",
		Inputs: []explain.KV{
			{Key: "deductible_transactions", Value: strconv.Itoa(len(expenseTxnIDs))},
			{Key: "confirmed_deduction_items", Value: strconv.Itoa(countConfirmed(in.Deductions))},
		},
		Outputs:        []explain.KV{{Key: "business_expenses", Value: out.Breakdown.BusinessExpenses.String()}},
		TransactionIDs: expenseTxnIDs,
	}
	graph.Add(expenseNode)

	taxableNode := &explain.Node{
		ID:      gen.Generate(scopeKey, "federal-taxable-income"),
		Label:   "Federal taxable income",
		Formula: "max(0, gross income - business expenses - half self-employment tax deduction - deduction applied)",
		Inputs: []explain.KV{
			{Key: "gross_income", Value: out.Breakdown.GrossIncome.String()},
			{Key: "business_expenses", Value: out.Breakdown.BusinessExpenses.String()},
			{Key: "self_employment_deduction", Value: out.Breakdown.SelfEmploymentDeduction.String()},
			{Key: "deduction_applied", Value: out.Breakdown.DeductionApplied.String()},
		},
		Outputs:  []explain.KV{{Key: "federal_taxable_income", Value: out.Breakdown.FederalTaxableIncome.String()}},
		Children: []string{incomeNode.ID, expenseNode.ID},
	}
	if out.Breakdown.FederalIncomeTax != nil {
		taxableNode.Outputs = append(taxableNode.Outputs,
			explain.KV{Key: "federal_income_tax", Value: out.Breakdown.FederalIncomeTax.String()})
	}
	graph.Add(taxableNode)

	seNode := &explain.Node{
		ID:      gen.Generate(scopeKey, "self-employment-tax"),
		Label:   "Self-employment tax",
		Formula: "social security + medicare + additional medicare over net self-employment earnings",
		Inputs: []explain.KV{
			{Key: "net_earnings", Value: se.netEarnings.String()},
			{Key: "social_security", Value: se.socialSecurity.String()},
			{Key: "medicare", Value: se.medicare.String()},
			{Key: "additional_medicare", Value: se.additionalMedicare.String()},
		},
		Outputs: []explain.KV{
			{Key: "self_employment_tax", Value: out.Breakdown.SelfEmploymentTax.String()},
			{Key: "half_deduction", Value: out.Breakdown.SelfEmploymentDeduction.String()},
		},
		Children: []string{expenseNode.ID},
	}
	graph.Add(seNode)

	stateNode := &explain.Node{
		ID:       gen.Generate(scopeKey, "state-tax"),
		Label:    "State tax",
		Formula:  "bracket tax over federal taxable income using the state rate schedule",
		Inputs:   []explain.KV{{Key: "federal_taxable_income", Value: out.Breakdown.FederalTaxableIncome.String()}},
		Children: []string{taxableNode.ID},
	}
	if out.State.Tax != nil {
		stateNode.Outputs = []explain.KV{{Key: "state_tax", Value: out.State.Tax.String()}}
	} else {
		stateNode.Outputs = []explain.KV{{Key: "state_status", Value: out.State.Status.String()}}
	}
	graph.Add(stateNode)

	root := &explain.Node{
		ID:      gen.Generate(scopeKey, "estimate"),
		Label:   "Federal and state tax estimate",
		Formula: "federal bracket tax + self-employment tax + state bracket tax",
		Outputs: []explain.KV{
			{Key: "federal_status", Value: out.Federal.Status.String()},
			{Key: "state_status", Value: out.State.Status.String()},
		},
		Children: []string{incomeNode.ID, expenseNode.ID, taxableNode.ID, stateNode.ID, seNode.ID},
	}
	if out.Federal.Tax != nil {
		root.Outputs = append(root.Outputs,
			explain.KV{Key: "total_federal_tax", Value: out.Federal.Tax.String()})
	}
	if out.State.Tax != nil {
		root.Outputs = append(root.Outputs,
			explain.KV{Key: "state_tax", Value: out.State.Tax.String()})
	}
	graph.Add(root)
	graph.SetRoot(root.ID)

	return graph
}

func countConfirmed(items []types.DeductionItem) int {
	n := 0
	for i := range items {
		if items[i].Confirmed {
			n++
		}
	}
	return n
}
