// Package models provides the language-model adapters the assistant speaks
// through. Every provider is reduced to the same single-turn contract:
// prompt in, text out.
package models

import "context"

// Model is a single-turn text generator. Implementations must be safe for
// concurrent use; the orchestrator may serve many sessions at once.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
