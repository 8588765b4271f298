// Package risk detects specific situational risks and attaches remediation
// suggestions to a computation run.
package risk

import (
	"fmt"
	"strings"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/scope"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// Risk flag codes. ESTIMATED_PAYMENTS_RECOMMENDED and UNDERWITHHOLDING_RISK
// are emitted by the calculator because they depend on computed figures.
const (
	CodeHighUncategorizedRatio = "HIGH_UNCATEGORIZED_RATIO"
	CodeMissingIncomeSignal    = "MISSING_INCOME_SIGNAL"
	CodeUnusualMealsRatio      = "UNUSUAL_MEALS_RATIO"
	CodeStateRulesetStale      = "STATE_RULESET_STALE"
	CodeOutOfScopeCase         = "OUT_OF_SCOPE_CASE_DETECTED"
	CodeEstimatedPayments      = "ESTIMATED_PAYMENTS_RECOMMENDED"
	CodeUnderwithholding       = "UNDERWITHHOLDING_RISK"
)

// Ratio thresholds.
const (
	uncategorizedMediumRatio = 0.25
	uncategorizedHighRatio   = 0.40
	mealsRatioThreshold      = 0.35
)

// Build detects the situational risk flags that do not depend on computed
// tax figures. Pure function of its inputs.
func Build(scopeDecision scope.Decision, incomes []types.IncomeSource,
	transactions []types.Transaction, state *ruleset.StateRuleset) []types.RiskFlag {
	var flags []types.RiskFlag

	uncategorized := 0
	expenses := 0
	meals := 0
	for i := range transactions {
		t := &transactions[i]
		if !t.IsCategorized() {
			uncategorized++
		}
		if t.Direction == types.DirectionExpense {
			expenses++
			if t.IsCategorized() && t.Category.Code == types.CategoryMeals {
				meals++
			}
		}
	}

	if len(transactions) > 0 {
		ratio := float64(uncategorized) / float64(len(transactions))
		if ratio >= uncategorizedMediumRatio {
			severity := types.SeverityMedium
			if ratio >= uncategorizedHighRatio {
				severity = types.SeverityHigh
			}
			flags = append(flags, types.RiskFlag{
				Code:     CodeHighUncategorizedRatio,
				Severity: severity,
				Message: fmt.Sprintf("%.0f%% of transactions have no category; deductions may be understated.",
					ratio*100),
				Suggestion: "Categorize the remaining transactions before relying on the estimate.",
			})
		}
	}

	if expenses > 0 && len(incomes) == 0 {
		flags = append(flags, types.RiskFlag{
			Code:       CodeMissingIncomeSignal,
			Severity:   types.SeverityHigh,
			Message:    "Expense transactions exist but no income source is recorded.",
			Suggestion: "Add the income sources that funded these expenses.",
		})
	}

	if expenses > 0 {
		ratio := float64(meals) / float64(expenses)
		if ratio > mealsRatioThreshold {
			flags = append(flags, types.RiskFlag{
				Code:     CodeUnusualMealsRatio,
				Severity: types.SeverityMedium,
				Message: fmt.Sprintf("Meal expenses are %.0f%% of all expense transactions, which is unusually high.",
					ratio*100),
				Suggestion: "Verify the meal categorizations; meal deductions draw audit attention.",
			})
		}
	}

	if state != nil && !state.Computable() {
		suggestion := "Wait for an updated state ruleset before relying on the state figure."
		if state.Rules.StalenessAction != "" {
			suggestion = state.Rules.StalenessAction
		}
		flags = append(flags, types.RiskFlag{
			Code:       CodeStateRulesetStale,
			Severity:   types.SeverityHigh,
			Message:    fmt.Sprintf("State ruleset %s cannot produce a tax figure.", state.ID),
			Suggestion: suggestion,
		})
	}

	if scopeDecision.Status != types.ScopeInScope {
		severity := types.SeverityMedium
		if scopeDecision.Status == types.ScopeOutOfScope {
			severity = types.SeverityHigh
		}
		flags = append(flags, types.RiskFlag{
			Code:     CodeOutOfScopeCase,
			Severity: severity,
			Message: fmt.Sprintf("Profile is %s for automated computation: %s.",
				scopeDecision.Status, strings.Join(scopeDecision.Reasons, ", ")),
			Suggestion: scopeDecision.NextStep,
		})
	}

	return flags
}
