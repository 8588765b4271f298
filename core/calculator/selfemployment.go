package calculator

import (
	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// Spread of the self-employment estimate range around the exact figure.
const seEstimateSpread = 0.05

// selfEmploymentResult holds the derived self-employment tax figures
type selfEmploymentResult struct {
	applies bool

	netEarnings        money.Money
	socialSecurity     money.Money
	medicare           money.Money
	additionalMedicare money.Money

	total money.Money
	low   money.Money
	high  money.Money

	// halfDeduction is half of (Social Security + Medicare) only;
	// Additional Medicare is never halved.
	halfDeduction money.Money
}

// computeSelfEmployment derives self-employment tax when 1099-NEC or
// business-gross income is present and the filing status is known.
func computeSelfEmployment(
	profile *types.TaxProfile,
	incomes []types.IncomeSource,
	grossIncome money.Money,
	businessExpenses money.Money,
	params ruleset.SelfEmploymentParams,
) selfEmploymentResult {
	hasSEIncome := false
	w2SocialSecurityWages := money.Zero()
	w2MedicareWages := money.Zero()
	for i := range incomes {
		src := &incomes[i]
		if src.Type.IsSelfEmployment() {
			hasSEIncome = true
		}
		w2SocialSecurityWages = w2SocialSecurityWages.Add(src.W2SocialSecurityWages)
		w2MedicareWages = w2MedicareWages.Add(src.W2MedicareWages)
	}

	if !hasSEIncome || !profile.FilingStatus.IsKnown() {
		return selfEmploymentResult{}
	}

	netProfit := money.Max(money.Zero(), grossIncome.Sub(businessExpenses))
	netEarnings := netProfit.Mul(params.NetEarningsFactor)

	// Social Security portion, capped against the wage base net of W-2
	// wages already subject to it
	ssCap := money.Max(money.Zero(), params.SocialSecurityWageBase.Sub(w2SocialSecurityWages))
	ssBase := money.Min(netEarnings, ssCap)
	socialSecurity := ssBase.Mul(params.SocialSecurityRate).RoundCents()

	medicare := netEarnings.Mul(params.MedicareRate).RoundCents()

	additionalMedicare := money.Zero()
	if threshold, ok := params.AdditionalMedicareThreshold[profile.FilingStatus]; ok {
		effectiveThreshold := money.Max(money.Zero(), threshold.Sub(w2MedicareWages))
		excess := money.Max(money.Zero(), netEarnings.Sub(effectiveThreshold))
		additionalMedicare = excess.Mul(params.AdditionalMedicareRate).RoundCents()
	}

	total := socialSecurity.Add(medicare).Add(additionalMedicare)

	return selfEmploymentResult{
		applies:            true,
		netEarnings:        netEarnings.RoundCents(),
		socialSecurity:     socialSecurity,
		medicare:           medicare,
		additionalMedicare: additionalMedicare,
		total:              total,
		low:                total.MulFloat(1 - seEstimateSpread).RoundCents(),
		high:               total.MulFloat(1 + seEstimateSpread).RoundCents(),
		halfDeduction:      socialSecurity.Add(medicare).DivInt(2).RoundCents(),
	}
}
