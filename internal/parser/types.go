// Package parser extracts a quantified activity from free text such as
// "I drove 10 km to work".
//
// Extraction is rule based: an ordered list of patterns is evaluated and the
// first one that matches wins. Rule order is a priority list, not a
// convenience; see DefaultRules.
package parser

import (
	"context"

	"github.com/rshade/footprint/internal/factors"
)

// Source identifies what produced a ParsedActivity.
type Source string

// Parse sources.
const (
	SourceRules Source = "rules"
	SourceAI    Source = "ai"
)

// ParsedActivity is the result of extracting an activity from text.
type ParsedActivity struct {
	// Category is the activity's category.
	Category factors.Category `json:"category"`

	// Activity is the factor table key (e.g. "driving").
	Activity string `json:"activity"`

	// Amount is the captured amount, in Unit. Never negative.
	Amount float64 `json:"amount"`

	// Unit is the raw unit as written, or the rule's default unit.
	Unit string `json:"unit"`

	// Confidence is an advisory score in [0, 1].
	Confidence float64 `json:"confidence"`

	// MatchedSpan is the part of the input that matched.
	MatchedSpan string `json:"matched_span"`

	// Rule is the name of the rule that matched, empty for AI results.
	Rule string `json:"rule,omitempty"`

	// Source records whether rules or the AI enhancer produced the result.
	Source Source `json:"source"`
}

// Enhancer is an optional collaborator that can improve or supersede a
// rule-based parse. base is nil when no rule matched. Implementations must
// return a result in the same shape; returning (nil, nil) means "no opinion".
type Enhancer interface {
	Enhance(ctx context.Context, text string, base *ParsedActivity) (*ParsedActivity, error)
}
