package parser

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Confidence scoring weights.
const (
	baseConfidence     = 0.5
	coverageWeight     = 0.3
	cleanAmountBonus   = 0.2
	maxConfidenceScore = 1.0
)

// Matcher evaluates extraction rules in priority order.
type Matcher struct {
	rules  []Rule
	logger zerolog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger used for debug tracing of rule evaluation.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Matcher) { m.logger = l }
}

// NewMatcher builds a Matcher from rules. Rules are sorted by Priority;
// duplicate priorities, missing patterns and group indexes outside the
// pattern are rejected.
func NewMatcher(rules []Rule, opts ...Option) (*Matcher, error) {
	seen := make(map[int]string, len(rules))
	for _, r := range rules {
		if r.Pattern == nil {
			return nil, fmt.Errorf("rule %q has no pattern", r.Name)
		}
		if other, dup := seen[r.Priority]; dup {
			return nil, fmt.Errorf("rules %q and %q share priority %d", other, r.Name, r.Priority)
		}
		seen[r.Priority] = r.Name

		groups := r.Pattern.NumSubexp()
		if r.AmountGroup > groups || r.UnitGroup > groups {
			return nil, fmt.Errorf("rule %q references a capture group beyond %d", r.Name, groups)
		}
		if r.AmountGroup == 0 && r.DefaultAmount <= 0 {
			return nil, fmt.Errorf("rule %q captures no amount and has no default", r.Name)
		}
	}

	sorted := append([]Rule(nil), rules...)
	sortRules(sorted)

	m := &Matcher{rules: sorted, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// NewDefaultMatcher returns a Matcher over DefaultRules.
func NewDefaultMatcher(opts ...Option) *Matcher {
	m, err := NewMatcher(DefaultRules(), opts...)
	if err != nil {
		panic(fmt.Sprintf("default parser rules: %v", err))
	}
	return m
}

// Match returns the activity extracted by the first matching rule. The
// boolean is false when no rule matches.
func (m *Matcher) Match(text string) (*ParsedActivity, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return nil, false
	}

	for _, r := range m.rules {
		loc := r.Pattern.FindStringSubmatchIndex(normalized)
		if loc == nil {
			continue
		}
		groups := submatches(normalized, loc)

		if r.UnitGroup == 0 && r.AmountGroup > 0 && nonQuantityPattern.MatchString(normalized[loc[1]:]) {
			m.logger.Debug().Str("rule", r.Name).Msg("amount is followed by a non-quantity word, trying next rule")
			continue
		}

		amount, clean := r.DefaultAmount, false
		if r.AmountGroup > 0 {
			parsed, err := parseAmount(groups[r.AmountGroup])
			if err != nil {
				m.logger.Debug().Str("rule", r.Name).Str("amount", groups[r.AmountGroup]).
					Msg("amount capture did not parse, trying next rule")
				continue
			}
			amount, clean = parsed, true
		}

		unit := r.DefaultUnit
		if r.UnitGroup > 0 && groups[r.UnitGroup] != "" {
			unit = groups[r.UnitGroup]
		}

		span := strings.TrimSpace(groups[0])
		result := &ParsedActivity{
			Category:    r.Category,
			Activity:    r.Activity,
			Amount:      amount,
			Unit:        unit,
			Confidence:  confidence(len(span), len(normalized), clean),
			MatchedSpan: span,
			Rule:        r.Name,
			Source:      SourceRules,
		}

		m.logger.Debug().
			Str("rule", r.Name).
			Int("priority", r.Priority).
			Str("activity", r.Activity).
			Float64("confidence", result.Confidence).
			Msg("rule matched")
		return result, true
	}

	m.logger.Debug().Int("rules", len(m.rules)).Msg("no rule matched")
	return nil, false
}

// submatches slices the groups located by FindStringSubmatchIndex. Groups
// that did not participate are empty.
func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if start, end := loc[2*i], loc[2*i+1]; start >= 0 {
			out[i] = s[start:end]
		}
	}
	return out
}

// confidence combines a base score with how much of the input the match
// covers and whether the amount was read from the text.
func confidence(spanLen, textLen int, cleanAmount bool) float64 {
	score := baseConfidence
	if textLen > 0 {
		score += coverageWeight * math.Min(1, float64(spanLen)/float64(textLen))
	}
	if cleanAmount {
		score += cleanAmountBonus
	}
	return math.Min(score, maxConfidenceScore)
}

// parseAmount reads a captured number, allowing thousands separators.
func parseAmount(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("amount %q out of range", raw)
	}
	return v, nil
}

func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
}
