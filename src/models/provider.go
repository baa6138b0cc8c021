package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProvider is returned by NewProvider for provider names it does
// not recognize.
var ErrUnknownProvider = errors.New("models: unknown provider")

// NewProvider builds the Model for a provider name. Recognized values are
// "anthropic", "openai", "gemini", "ollama" and "scripted". The result is
// wrapped in a file-backed cache when the QUOTE_AGENT_LLM_CACHE_* variables
// are set.
func NewProvider(ctx context.Context, provider, model string) (Model, error) {
	var (
		m   Model
		err error
	)
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "anthropic":
		m = NewAnthropicModel(model)
	case "openai":
		m = NewOpenAIModel(model)
	case "gemini":
		m, err = NewGeminiModel(ctx, model)
	case "ollama":
		m, err = NewOllamaModel(model)
	case "scripted", "":
		m = NewScriptedModel()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if err != nil {
		return nil, err
	}
	return TryCreateCachedModel(m), nil
}
