package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Quotient-Labs/quote-agent/src/catalog"
	"github.com/Quotient-Labs/quote-agent/src/concurrent"
	"github.com/Quotient-Labs/quote-agent/src/models"
	"github.com/Quotient-Labs/quote-agent/src/quote"
)

// Analyzer produces a bill of materials from a free-form project
// description.
type Analyzer interface {
	Analyze(ctx context.Context, requirements string) (quote.BillOfMaterials, error)
}

var ErrEmptyAnalysis = errors.New("analysis: no usable line items")

// LLMAnalyzer asks a language model to map project requirements onto the
// catalog, then verifies every proposed line against the catalog before
// letting it into the result. Lines the model invents are dropped, not
// patched.
type LLMAnalyzer struct {
	model  models.Model
	source catalog.Source
	logger *zap.Logger
}

func NewLLMAnalyzer(model models.Model, source catalog.Source, logger *zap.Logger) (*LLMAnalyzer, error) {
	if model == nil {
		return nil, errors.New("analysis: nil model")
	}
	if source == nil {
		return nil, errors.New("analysis: nil catalog source")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMAnalyzer{model: model, source: source, logger: logger}, nil
}

// bomEnvelope is the JSON shape the model is asked to produce.
type bomEnvelope struct {
	LineItems      []bomLine `json:"line_items"`
	EstimatedTotal *float64  `json:"estimated_total,omitempty"`
}

type bomLine struct {
	SKU        string  `json:"sku"`
	Quantity   int     `json:"quantity"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, requirements string) (quote.BillOfMaterials, error) {
	prompt, err := a.buildPrompt(ctx, requirements)
	if err != nil {
		return quote.BillOfMaterials{}, err
	}

	raw, err := a.model.Generate(ctx, prompt)
	if err != nil {
		return quote.BillOfMaterials{}, fmt.Errorf("analysis: model call: %w", err)
	}

	payload, ok := extractJSON(raw)
	if !ok {
		return quote.BillOfMaterials{}, fmt.Errorf("analysis: no JSON object in model output")
	}

	var envelope bomEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return quote.BillOfMaterials{}, fmt.Errorf("analysis: decode: %w", err)
	}

	// Field-level checks first, then a catalog lookup per surviving line.
	// Both are fail-closed: a bad line is dropped and logged, never fixed up.
	candidates := envelope.LineItems[:0]
	for _, line := range envelope.LineItems {
		if line.SKU == "" || line.Quantity < 1 || line.Confidence < 0 || line.Confidence > 1 {
			a.logger.Debug("analysis line rejected",
				zap.String("sku", line.SKU),
				zap.Int("quantity", line.Quantity),
				zap.Float64("confidence", line.Confidence))
			continue
		}
		candidates = append(candidates, line)
	}

	type verified struct {
		line quote.BOMLine
		ok   bool
	}
	results, err := concurrent.ParallelMap(ctx, candidates, func(line bomLine) (verified, error) {
		item, ok, err := a.source.Item(ctx, line.SKU)
		if err != nil {
			return verified{}, err
		}
		if !ok {
			a.logger.Debug("analysis line dropped: unknown sku", zap.String("sku", line.SKU))
			return verified{}, nil
		}
		return verified{
			line: quote.BOMLine{
				SKU:         line.SKU,
				Description: item.Name,
				Quantity:    line.Quantity,
				Confidence:  line.Confidence,
				Reasoning:   line.Reasoning,
			},
			ok: true,
		}, nil
	}, 4)
	if err != nil {
		return quote.BillOfMaterials{}, fmt.Errorf("analysis: catalog verification: %w", err)
	}

	bom := quote.BillOfMaterials{EstimatedTotal: envelope.EstimatedTotal}
	for _, v := range results {
		if v.ok {
			bom.LineItems = append(bom.LineItems, v.line)
		}
	}
	if bom.Empty() {
		return quote.BillOfMaterials{}, ErrEmptyAnalysis
	}
	return bom, nil
}

func (a *LLMAnalyzer) buildPrompt(ctx context.Context, requirements string) (string, error) {
	items, err := a.source.Items(ctx)
	if err != nil {
		return "", fmt.Errorf("analysis: load catalog: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a construction materials estimator. ")
	b.WriteString("Given the project requirements, choose items ONLY from the catalog below.\n\n")
	b.WriteString("Catalog:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: %s ($%.2f)\n", item.ID, item.Name, item.UnitPrice)
	}
	b.WriteString("\nRespond with a single JSON object of the form:\n")
	b.WriteString(`{"line_items":[{"sku":"...","quantity":1,"confidence":0.9,"reasoning":"..."}],"estimated_total":0.0}`)
	b.WriteString("\nConfidence is between 0 and 1. Do not invent SKUs.\n\n")
	b.WriteString("Requirements:\n")
	b.WriteString(requirements)
	return b.String(), nil
}

// extractJSON returns the outermost JSON object embedded in text. Models
// often wrap their JSON in prose or code fences.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
