// Package gemini implements parser.Enhancer on top of Google's Gemini models.
//
// The enhancer is optional: it is only consulted when rule-based parsing
// fails or is unsure, and its answer is accepted only when it names an
// activity present in the emission factor table.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/rshade/footprint/internal/factors"
	"github.com/rshade/footprint/internal/parser"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// ErrNoContent is returned when the model answers with no usable text.
var ErrNoContent = errors.New("no content returned from model")

// generator is the subset of *genai.GenerativeModel the enhancer needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Enhancer asks a Gemini model to extract an activity from text.
type Enhancer struct {
	client *genai.Client
	model  generator
	table  *factors.Table
}

var _ parser.Enhancer = (*Enhancer)(nil)

// New connects to Gemini with apiKey. Close releases the client.
func New(ctx context.Context, apiKey, modelName string, table *factors.Table) (*Enhancer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	return &Enhancer{client: client, model: model, table: table}, nil
}

// Close releases the underlying client.
func (e *Enhancer) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// answer is the JSON object the model is asked to return.
type answer struct {
	Matched    bool    `json:"matched"`
	Category   string  `json:"category"`
	Activity   string  `json:"activity"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
	Confidence float64 `json:"confidence"`
}

// Enhance implements parser.Enhancer. It returns (nil, nil) when the model
// finds no loggable activity or names one outside the factor table.
func (e *Enhancer) Enhance(ctx context.Context, text string, base *parser.ParsedActivity) (*parser.ParsedActivity, error) {
	resp, err := e.model.GenerateContent(ctx, genai.Text(e.prompt(text, base)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	raw, err := firstText(resp)
	if err != nil {
		return nil, err
	}

	var a answer
	if err = json.Unmarshal([]byte(stripFences(raw)), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model response: %w", err)
	}
	if !a.Matched {
		return nil, nil
	}

	f, ok := e.table.Lookup(factors.Category(a.Category), a.Activity)
	if !ok || a.Amount < 0 || math.IsNaN(a.Amount) || math.IsInf(a.Amount, 0) {
		return nil, nil
	}

	unit := a.Unit
	if unit == "" {
		unit = f.Unit
	}

	return &parser.ParsedActivity{
		Category:    f.Category,
		Activity:    f.Activity,
		Amount:      a.Amount,
		Unit:        unit,
		Confidence:  math.Max(0, math.Min(1, a.Confidence)),
		MatchedSpan: strings.TrimSpace(text),
		Source:      parser.SourceAI,
	}, nil
}

func (e *Enhancer) prompt(text string, base *parser.ParsedActivity) string {
	var b strings.Builder
	b.WriteString("Extract one carbon-relevant activity from the user's message.\n")
	b.WriteString("Answer with a JSON object with keys matched (bool), category, activity, ")
	b.WriteString("amount (number), unit and confidence (0..1).\n")
	b.WriteString("category and activity must be one of these pairs (canonical unit in brackets):\n")
	for _, f := range e.table.Factors("") {
		fmt.Fprintf(&b, "- %s/%s [%s]\n", f.Category, f.Activity, f.Unit)
	}
	b.WriteString("If nothing matches, answer {\"matched\": false}.\n")
	if base != nil {
		fmt.Fprintf(&b, "A rule-based parser guessed %s/%s %.3f %s; correct it if wrong.\n",
			base.Category, base.Activity, base.Amount, base.Unit)
	}
	fmt.Fprintf(&b, "Message: %q\n", text)
	return b.String()
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoContent
	}
	part := resp.Candidates[0].Content.Parts[0]
	textPart, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("response part is not text, received %T", part)
	}
	return string(textPart), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
