package ruleset_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

func bracket(lower, upper string, rate float64) ruleset.Bracket {
	b := ruleset.Bracket{
		Lower: money.MustNew(lower),
		Rate:  decimal.NewFromFloat(rate),
	}
	if upper != "" {
		u := money.MustNew(upper)
		b.Upper = &u
	}
	return b
}

func TestValidateBrackets(t *testing.T) {
	tests := []struct {
		name     string
		brackets []ruleset.Bracket
		wantErr  bool
	}{
		{
			name: "contiguous ascending table",
			brackets: []ruleset.Bracket{
				bracket("0", "11925", 0.10),
				bracket("11925", "48475", 0.12),
				bracket("48475", "", 0.22),
			},
		},
		{
			name:     "single unbounded bracket",
			brackets: []ruleset.Bracket{bracket("0", "", 0.05)},
		},
		{
			name: "gap between brackets",
			brackets: []ruleset.Bracket{
				bracket("0", "10000", 0.10),
				bracket("20000", "", 0.20),
			},
			wantErr: true,
		},
		{
			name: "overlapping brackets",
			brackets: []ruleset.Bracket{
				bracket("0", "10000", 0.10),
				bracket("5000", "", 0.20),
			},
			wantErr: true,
		},
		{
			name: "unbounded bracket in the middle",
			brackets: []ruleset.Bracket{
				bracket("0", "", 0.10),
				bracket("10000", "", 0.20),
			},
			wantErr: true,
		},
		{
			name:     "rate above one",
			brackets: []ruleset.Bracket{bracket("0", "", 1.5)},
			wantErr:  true,
		},
		{
			name:     "negative rate",
			brackets: []ruleset.Bracket{bracket("0", "", -0.1)},
			wantErr:  true,
		},
		{
			name:     "upper not above lower",
			brackets: []ruleset.Bracket{bracket("10000", "10000", 0.10)},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ruleset.ValidateBrackets(tt.brackets)
			if tt.wantErr && err == nil {
				t.Errorf("invalid bracket table accepted")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("valid bracket table rejected: %v", err)
			}
		})
	}
}

func TestFederalValidateRequiresEnvelope(t *testing.T) {
	doc := testFederalRuleset()
	doc.ID = ""
	if err := doc.Validate(); err == nil {
		t.Errorf("federal document without an id accepted")
	}

	doc = testFederalRuleset()
	doc.Status = "bogus"
	if err := doc.Validate(); err == nil {
		t.Errorf("federal document with unknown status accepted")
	}

	doc = testFederalRuleset()
	doc.TaxYear = 1890
	if err := doc.Validate(); err == nil {
		t.Errorf("federal document with out-of-range tax year accepted")
	}

	doc = testFederalRuleset()
	doc.Rules.Brackets = nil
	if err := doc.Validate(); err == nil {
		t.Errorf("federal document without bracket tables accepted")
	}
}

func TestStateComputable(t *testing.T) {
	st := testStateRuleset()
	if !st.Computable() {
		t.Fatalf("state ruleset with brackets and computable=true reported non-computable")
	}

	st.Rules.Computable = false
	if st.Computable() {
		t.Errorf("computable=false not honored")
	}

	st = testStateRuleset()
	st.Rules.Brackets = map[types.FilingStatus][]ruleset.Bracket{}
	if st.Computable() {
		t.Errorf("state ruleset without brackets reported computable")
	}
}
