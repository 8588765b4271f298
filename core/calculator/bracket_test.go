package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
)

func testBrackets() []ruleset.Bracket {
	upper1 := money.MustNew("11925")
	upper2 := money.MustNew("48475")
	return []ruleset.Bracket{
		{Lower: money.Zero(), Upper: &upper1, Rate: decimal.NewFromFloat(0.10)},
		{Lower: upper1, Upper: &upper2, Rate: decimal.NewFromFloat(0.12)},
		{Lower: upper2, Rate: decimal.NewFromFloat(0.22)},
	}
}

func TestBracketTaxKnownValues(t *testing.T) {
	tests := []struct {
		taxable string
		want    string
	}{
		{"0", "0.00"},
		{"-500", "0.00"},
		{"10000", "1000.00"},
		{"11925", "1192.50"},
		// 1192.50 + 36550 * 0.12
		{"48475", "5578.50"},
		// 5578.50 + 26525 * 0.22
		{"75000", "11414.00"},
	}

	for _, tt := range tests {
		got := BracketTax(testBrackets(), money.MustNew(tt.taxable))
		if got.String() != tt.want {
			t.Errorf("BracketTax(%s) = %s, want %s", tt.taxable, got, tt.want)
		}
	}
}

// TestBracketTaxMonotonic proves more taxable income never yields less tax
func TestBracketTaxMonotonic(t *testing.T) {
	brackets := testBrackets()

	prev := money.Zero()
	for cents := int64(0); cents <= 20000000; cents += 333333 {
		taxable := money.FromCents(cents)
		tax := BracketTax(brackets, taxable)
		if tax.LessThan(prev) {
			t.Fatalf("tax decreased: %s at taxable %s (previous %s)", tax, taxable, prev)
		}
		prev = tax
	}
}

// TestBracketTaxContinuousAtBoundaries proves no jump at bracket edges: one
// extra dollar of income costs at most the top marginal rate on that dollar.
func TestBracketTaxContinuousAtBoundaries(t *testing.T) {
	brackets := testBrackets()
	boundaries := []string{"11925", "48475"}

	maxStep := money.MustNew("0.23") // top rate on one dollar, plus rounding
	for _, b := range boundaries {
		at := money.MustNew(b)
		below := BracketTax(brackets, at)
		above := BracketTax(brackets, at.Add(money.MustNew("1")))
		step := above.Sub(below)
		if step.IsNegative() || step.GreaterThan(maxStep) {
			t.Errorf("discontinuity at %s: tax step %s for one dollar", b, step)
		}
	}
}

func TestBracketTaxSingleRounding(t *testing.T) {
	// A rate that produces sub-cent amounts in every bracket: per-bracket
	// rounding would drift from the single final rounding.
	upper := money.MustNew("10000")
	brackets := []ruleset.Bracket{
		{Lower: money.Zero(), Upper: &upper, Rate: decimal.NewFromFloat(0.019502)},
		{Lower: upper, Rate: decimal.NewFromFloat(0.025001)},
	}

	// 10000 * 0.019502 = 195.02, 5000.37 * 0.025001 = 125.01425...
	// Exact sum 320.03425..., rounded once to 320.03.
	got := BracketTax(brackets, money.MustNew("15000.37"))
	if got.String() != "320.03" {
		t.Errorf("BracketTax = %s, want 320.03", got)
	}
}

func TestBracketTaxEmptyTable(t *testing.T) {
	got := BracketTax(nil, money.MustNew("50000"))
	if !got.IsZero() {
		t.Errorf("empty bracket table produced tax %s", got)
	}
}
