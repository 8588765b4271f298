// Package completeness measures how much of the required input surface is
// present, independent of tax correctness.
package completeness

import (
	"fmt"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// Penalty weights.
const (
	missingFilingStatusPenalty = 25
	noIncomeSourcesPenalty     = 25
	uncategorizedPerItem       = 2
	uncategorizedCap           = 20
	uncategorizedHighThreshold = 8
	emptyMonthsPenalty         = 15
	emptyMonthsThreshold       = 4
	unreviewedLargePerItem     = 2
	unreviewedLargeCap         = 10
)

// largeTransactionThreshold marks transactions that should be reviewed
var largeTransactionThreshold = money.FromCents(100000)

// Gap describes a specific hole in the input surface
type Gap struct {
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Impact      types.Impact `json:"impact"`
}

// Action is a recommended user action to close a gap
type Action struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Report is the outcome of completeness scoring
type Report struct {
	Score        int      `json:"score"` // 0-100
	MissingItems []string `json:"missing_items,omitempty"`
	Gaps         []Gap    `json:"gaps,omitempty"`
	Actions      []Action `json:"actions,omitempty"`
}

// Score measures input completeness. Pure function of its three inputs:
// starts at 100 and subtracts per-gap penalties, clamped to [0,100].
func Score(profile *types.TaxProfile, incomes []types.IncomeSource, transactions []types.Transaction) Report {
	report := Report{Score: 100}

	if !profile.FilingStatus.IsKnown() {
		report.Score -= missingFilingStatusPenalty
		report.MissingItems = append(report.MissingItems, "filing_status")
		report.Gaps = append(report.Gaps, Gap{
			Code:        "MISSING_FILING_STATUS",
			Description: "Filing status has not been provided; no federal figure can be produced without it.",
			Impact:      types.ImpactHigh,
		})
		report.Actions = append(report.Actions, Action{
			Code:        "SET_FILING_STATUS",
			Description: "Select your filing status in the profile.",
		})
	}

	if len(incomes) == 0 {
		report.Score -= noIncomeSourcesPenalty
		report.MissingItems = append(report.MissingItems, "income_sources")
		report.Gaps = append(report.Gaps, Gap{
			Code:        "NO_INCOME_SOURCES",
			Description: "No income sources recorded for the tax year.",
			Impact:      types.ImpactHigh,
		})
		report.Actions = append(report.Actions, Action{
			Code:        "ADD_INCOME",
			Description: "Add at least one income source (W-2, 1099-NEC, or business gross).",
		})
	}

	uncategorized := 0
	unreviewedLarge := 0
	for i := range transactions {
		t := &transactions[i]
		if !t.IsCategorized() {
			uncategorized++
		}
		if !t.Reviewed && t.Amount.Abs().Cmp(largeTransactionThreshold) >= 0 {
			unreviewedLarge++
		}
	}

	if uncategorized > 0 {
		penalty := uncategorized * uncategorizedPerItem
		if penalty > uncategorizedCap {
			penalty = uncategorizedCap
		}
		report.Score -= penalty

		impact := types.ImpactMedium
		if uncategorized > uncategorizedHighThreshold {
			impact = types.ImpactHigh
		}
		report.Gaps = append(report.Gaps, Gap{
			Code:        "UNCATEGORIZED_TRANSACTIONS",
			Description: fmt.Sprintf("%d transactions have no category assignment.", uncategorized),
			Impact:      impact,
		})
		report.Actions = append(report.Actions, Action{
			Code:        "CATEGORIZE_TRANSACTIONS",
			Description: "Review and categorize the remaining transactions.",
		})
	}

	if emptyMonths(incomes, transactions) >= emptyMonthsThreshold {
		report.Score -= emptyMonthsPenalty
		report.Gaps = append(report.Gaps, Gap{
			Code:        "TEMPORAL_COVERAGE_GAP",
			Description: "Four or more calendar months show no income or transaction activity.",
			Impact:      types.ImpactMedium,
		})
		report.Actions = append(report.Actions, Action{
			Code:        "IMPORT_MISSING_MONTHS",
			Description: "Import transactions for the months without activity.",
		})
	}

	if unreviewedLarge > 0 {
		penalty := unreviewedLarge * unreviewedLargePerItem
		if penalty > unreviewedLargeCap {
			penalty = unreviewedLargeCap
		}
		report.Score -= penalty
		report.Gaps = append(report.Gaps, Gap{
			Code:        "UNREVIEWED_LARGE_TRANSACTIONS",
			Description: fmt.Sprintf("%d transactions of $1,000 or more have not been reviewed.", unreviewedLarge),
			Impact:      types.ImpactMedium,
		})
		report.Actions = append(report.Actions, Action{
			Code:        "REVIEW_LARGE_TRANSACTIONS",
			Description: "Confirm the large transactions are recorded correctly.",
		})
	}

	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}

	if len(report.Gaps) == 0 {
		report.Actions = append(report.Actions, Action{
			Code:        "INPUTS_COMPLETE",
			Description: "All required inputs are present.",
		})
	}

	return report
}

// emptyMonths counts calendar months with no recorded activity. Any income
// source marks all twelve months covered, since income sources are not
// individually dated.
func emptyMonths(incomes []types.IncomeSource, transactions []types.Transaction) int {
	if len(incomes) > 0 {
		return 0
	}

	covered := make(map[int]bool, 12)
	for i := range transactions {
		covered[int(transactions[i].Date.Month())] = true
	}
	return 12 - len(covered)
}
