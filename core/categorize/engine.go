package categorize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
)

// Confidence levels for the fixed suggestion sources.
const (
	overrideConfidence      = 99
	mealHeuristicConfidence = 58
	incomeDefaultConfidence = 55
)

// mealKeywords drive the built-in meal heuristic
var mealKeywords = []string{
	"restaurant", "cafe", "coffee", "pizza", "grill", "diner", "bakery",
	"bistro", "taqueria", "sushi", "doordash", "ubereats", "grubhub",
	"catering", "deli",
}

// Suggestion is a proposed category assignment for a transaction
type Suggestion struct {
	CategoryCode string
	Confidence   int
	Source       types.CategorySource
	Reason       string
}

// Engine matches transactions against overrides, rules and heuristics.
// Pattern compilation is memoized per engine; categorization itself is a
// pure function of its arguments.
type Engine struct {
	patterns map[string]*regexp.Regexp
}

// NewEngine creates a categorization engine
func NewEngine() *Engine {
	return &Engine{patterns: make(map[string]*regexp.Regexp)}
}

// Categorize suggests a category for a transaction, or nil when nothing
// matches. Priority, first match wins: user overrides, then category rules,
// then built-in heuristics. Overrides must never be shadowed by generic
// rules.
func (e *Engine) Categorize(txn *types.Transaction, rules []types.CategoryRule, overrides []types.UserOverride) *Suggestion {
	text := strings.ToLower(txn.MatchText())

	for i := range overrides {
		o := &overrides[i]
		if e.overrideMatcher(o).Matches(text, txn.Amount) {
			reason := o.Note
			if reason == "" {
				reason = "matched your saved categorization"
			}
			return &Suggestion{
				CategoryCode: o.CategoryCode,
				Confidence:   overrideConfidence,
				Source:       types.SourceUser,
				Reason:       reason,
			}
		}
	}

	for i := range rules {
		r := &rules[i]
		if e.ruleMatcher(r).Matches(text, txn.Amount) {
			reason := r.Justification
			if reason == "" {
				reason = "matched category rule " + r.ID
			}
			return &Suggestion{
				CategoryCode: r.CategoryCode,
				Confidence:   clampConfidence(r.Confidence),
				Source:       types.SourceRule,
				Reason:       reason,
			}
		}
	}

	for _, keyword := range mealKeywords {
		if strings.Contains(text, keyword) {
			return &Suggestion{
				CategoryCode: types.CategoryMeals,
				Confidence:   mealHeuristicConfidence,
				Source:       types.SourceHeuristic,
				Reason:       fmt.Sprintf("description mentions %q", keyword),
			}
		}
	}

	if txn.Direction == types.DirectionIncome {
		return &Suggestion{
			CategoryCode: types.CategoryGeneralReceipts,
			Confidence:   incomeDefaultConfidence,
			Source:       types.SourceHeuristic,
			Reason:       "income transaction without a more specific match",
		}
	}

	return nil
}

func (e *Engine) overrideMatcher(o *types.UserOverride) Matcher {
	var members anyOf
	if o.VendorPattern != "" {
		members = append(members, &patternMatcher{re: e.compile(o.VendorPattern)})
	}
	if o.KeywordPattern != "" {
		members = append(members, &patternMatcher{re: e.compile(o.KeywordPattern)})
	}
	return members
}

func (e *Engine) ruleMatcher(r *types.CategoryRule) Matcher {
	var patterns anyOf
	if r.VendorPattern != "" {
		patterns = append(patterns, &patternMatcher{re: e.compile(r.VendorPattern)})
	}
	if r.KeywordPattern != "" {
		patterns = append(patterns, &patternMatcher{re: e.compile(r.KeywordPattern)})
	}
	return allOf{patterns, &amountRange{min: r.AmountMin, max: r.AmountMax}}
}

// compile memoizes case-insensitive pattern compilation. Invalid patterns
// compile to nil and are treated as non-matching.
func (e *Engine) compile(pattern string) *regexp.Regexp {
	if re, ok := e.patterns[pattern]; ok {
		return re
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = nil
	}
	e.patterns[pattern] = re
	return re
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
