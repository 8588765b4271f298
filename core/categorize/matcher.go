// Package categorize assigns spending/income categories to transactions
// using user overrides, pattern rules, and keyword heuristics, in that
// priority order.
package categorize

import (
	"regexp"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
)

// Matcher is a pluggable predicate over a transaction's match text and
// amount. Tagged matcher kinds (vendor pattern, keyword pattern, amount
// range) compose through allOf.
type Matcher interface {
	Matches(text string, amount money.Money) bool
}

// patternMatcher matches case-insensitive regular expressions over the
// merchant+description text. A nil re (failed compile) never matches:
// an invalid user-supplied pattern must not crash the engine.
type patternMatcher struct {
	re *regexp.Regexp
}

func (m *patternMatcher) Matches(text string, _ money.Money) bool {
	if m.re == nil {
		return false
	}
	return m.re.MatchString(text)
}

// amountRange matches inclusive amount bounds; an absent bound is unbounded.
// Bounds apply to the absolute amount.
type amountRange struct {
	min *money.Money
	max *money.Money
}

func (m *amountRange) Matches(_ string, amount money.Money) bool {
	abs := amount.Abs()
	if m.min != nil && abs.LessThan(*m.min) {
		return false
	}
	if m.max != nil && abs.GreaterThan(*m.max) {
		return false
	}
	return true
}

// allOf requires every member matcher to match
type allOf []Matcher

func (m allOf) Matches(text string, amount money.Money) bool {
	for _, matcher := range m {
		if !matcher.Matches(text, amount) {
			return false
		}
	}
	return true
}

// anyOf requires at least one member matcher to match
type anyOf []Matcher

func (m anyOf) Matches(text string, amount money.Money) bool {
	for _, matcher := range m {
		if matcher.Matches(text, amount) {
			return true
		}
	}
	return false
}
