package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
)

// BracketTax computes progressive marginal-rate tax over taxable income.
//
// For each bracket in ascending order: income at or below the lower bound
// is skipped; otherwise the amount taxed in the bracket is
// min(income, upper) - lower at the bracket's rate. The sum is rounded to
// whole cents once at the end, so sub-cent drift cannot compound across
// per-bracket roundings.
func BracketTax(brackets []ruleset.Bracket, taxable money.Money) money.Money {
	total := decimal.Zero
	for _, b := range brackets {
		if taxable.Cmp(b.Lower) <= 0 {
			continue
		}
		upper := taxable
		if b.Upper != nil && b.Upper.LessThan(taxable) {
			upper = *b.Upper
		}
		amount := upper.Sub(b.Lower)
		total = total.Add(amount.Decimal().Mul(b.Rate))
	}
	return money.FromDecimal(total).RoundCents()
}
