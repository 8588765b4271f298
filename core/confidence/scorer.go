// Package confidence measures how trustworthy a computed tax figure is,
// combining completeness, categorization coverage, ruleset health, and
// risk-flag severity.
package confidence

import (
	"fmt"
	"math"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// Penalty weights.
const (
	confirmedIncomeTarget   = 0.80
	confirmedIncomeMax      = 25
	categorizedRatioTarget  = 0.85
	categorizedRatioMax     = 35
	stateNotComputableFlat  = 20
	highSeverityFlagPenalty = 8
	highSeverityFlagMax     = 25
)

// Driver records one applied confidence penalty
type Driver struct {
	Code   string `json:"code"`
	Impact int    `json:"impact"` // signed; negative reduces confidence
	Reason string `json:"reason"`
}

// Report is the outcome of confidence scoring
type Report struct {
	Score   int      `json:"score"` // 0-100
	Drivers []Driver `json:"drivers"`
}

// Score derives a confidence score. Confidence starts from the completeness
// score (it can never exceed completeness) and subtracts weighted penalties,
// recording a driver for each. Clamped to [0,100].
func Score(completeness int, incomes []types.IncomeSource, transactions []types.Transaction,
	flags []types.RiskFlag, stateComputable bool) Report {
	report := Report{Score: completeness}

	if len(incomes) > 0 {
		confirmed := 0
		for i := range incomes {
			if incomes[i].Confirmed {
				confirmed++
			}
		}
		ratio := float64(confirmed) / float64(len(incomes))
		if ratio < confirmedIncomeTarget {
			penalty := scaled(confirmedIncomeTarget, ratio, confirmedIncomeMax)
			report.Score -= penalty
			report.Drivers = append(report.Drivers, Driver{
				Code:   "UNCONFIRMED_INCOME",
				Impact: -penalty,
				Reason: fmt.Sprintf("Only %d of %d income sources are confirmed.", confirmed, len(incomes)),
			})
		}
	}

	if len(transactions) > 0 {
		categorized := 0
		for i := range transactions {
			if transactions[i].IsCategorized() {
				categorized++
			}
		}
		ratio := float64(categorized) / float64(len(transactions))
		if ratio < categorizedRatioTarget {
			penalty := scaled(categorizedRatioTarget, ratio, categorizedRatioMax)
			report.Score -= penalty
			report.Drivers = append(report.Drivers, Driver{
				Code:   "LOW_CATEGORIZATION_COVERAGE",
				Impact: -penalty,
				Reason: fmt.Sprintf("Only %d of %d transactions are categorized.", categorized, len(transactions)),
			})
		}
	}

	if !stateComputable {
		report.Score -= stateNotComputableFlat
		report.Drivers = append(report.Drivers, Driver{
			Code:   "STATE_RULESET_NOT_COMPUTABLE",
			Impact: -stateNotComputableFlat,
			Reason: "The state ruleset cannot produce a tax figure.",
		})
	}

	highFlags := 0
	for i := range flags {
		if flags[i].Severity == types.SeverityHigh {
			highFlags++
		}
	}
	if highFlags > 0 {
		penalty := highFlags * highSeverityFlagPenalty
		if penalty > highSeverityFlagMax {
			penalty = highSeverityFlagMax
		}
		report.Score -= penalty
		report.Drivers = append(report.Drivers, Driver{
			Code:   "HIGH_SEVERITY_RISK_FLAGS",
			Impact: -penalty,
			Reason: fmt.Sprintf("%d high-severity risk flags are active.", highFlags),
		})
	}

	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}

	if len(report.Drivers) == 0 {
		report.Drivers = []Driver{{
			Code:   "STABLE_INPUTS",
			Impact: 0,
			Reason: "No confidence penalties applied.",
		}}
	}

	return report
}

// scaled maps a shortfall below target onto [0, max] penalty points
func scaled(target, ratio, max float64) int {
	deficit := (target - ratio) / target
	if deficit < 0 {
		deficit = 0
	}
	if deficit > 1 {
		deficit = 1
	}
	return int(math.Round(deficit * max))
}
