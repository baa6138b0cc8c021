package directive

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Quotient-Labs/quote-agent/src/catalog"
)

// Hooks are the side effects an Engine applies for validated commands.
// Both must be set; the engine calls them at most once per command, in
// directive order.
type Hooks struct {
	AddToQuote      func(item catalog.Item, quantity int)
	RemoveFromQuote func(sku string)
}

// Result is the outcome of processing one piece of model output.
type Result struct {
	// Commands that passed validation and were executed, in the order
	// they appeared in the text.
	Commands []Command
	// CleanText is the input with every recognized directive removed,
	// valid or not. This is the only form shown to the user.
	CleanText string
}

// Engine extracts directives from model output, executes the valid ones
// against the catalog and quote hooks, and strips them from the display
// text.
type Engine struct {
	source catalog.Source
	hooks  Hooks
	logger *zap.Logger
}

// NewEngine builds an Engine. A nil logger is replaced with zap.NewNop().
func NewEngine(source catalog.Source, hooks Hooks, logger *zap.Logger) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("directive: nil catalog source")
	}
	if hooks.AddToQuote == nil || hooks.RemoveFromQuote == nil {
		return nil, fmt.Errorf("directive: both hooks must be set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{source: source, hooks: hooks, logger: logger}, nil
}

// Process runs the full pipeline on one model reply: scan, validate,
// execute, sanitize. Directives that fail validation or reference unknown
// SKUs are dropped without affecting their neighbours, and their reasons
// go only to the debug log, never into CleanText.
func (e *Engine) Process(ctx context.Context, text string) Result {
	matches := Scan(text)

	spans := make([]Span, 0, len(matches))
	commands := make([]Command, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, m.Span)
		cmd, err := ParseCommand(m)
		if err != nil {
			e.logger.Debug("directive rejected",
				zap.String("kind", string(m.Kind)),
				zap.String("sku", m.SKU),
				zap.Error(err))
			continue
		}
		commands = append(commands, cmd)
	}

	return Result{
		Commands:  e.Execute(ctx, commands),
		CleanText: Sanitize(text, spans),
	}
}

// Execute applies commands against the catalog and hooks, in order, each at
// most once. Add commands whose SKU is not in the catalog are skipped; a
// catalog error skips the command as well. The returned slice holds the
// commands whose side effect actually ran.
func (e *Engine) Execute(ctx context.Context, commands []Command) []Command {
	executed := make([]Command, 0, len(commands))
	for _, cmd := range commands {
		switch c := cmd.(type) {
		case AddToQuote:
			item, ok, err := e.source.Item(ctx, c.SKU)
			if err != nil {
				e.logger.Warn("catalog lookup failed",
					zap.String("sku", c.SKU), zap.Error(err))
				continue
			}
			if !ok {
				e.logger.Debug("directive skipped: unknown sku",
					zap.String("sku", c.SKU))
				continue
			}
			e.hooks.AddToQuote(item, c.Quantity)
			executed = append(executed, c)
		case RemoveFromQuote:
			e.hooks.RemoveFromQuote(c.SKU)
			executed = append(executed, c)
		default:
			e.logger.Debug("directive skipped: unknown command type")
		}
	}
	return executed
}
