// Package agent orchestrates quoting sessions for a building-materials
// assistant. Each turn routes a user message either straight to the
// language model (chat) or through requirements analysis (building
// projects), executes any directives the model emits, and returns exactly
// one sanitized assistant reply.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Quotient-Labs/quote-agent/src/analysis"
	"github.com/Quotient-Labs/quote-agent/src/catalog"
	"github.com/Quotient-Labs/quote-agent/src/concurrent"
	"github.com/Quotient-Labs/quote-agent/src/directive"
	"github.com/Quotient-Labs/quote-agent/src/models"
	"github.com/Quotient-Labs/quote-agent/src/quote"
)

const defaultSystemPrompt = `You are a quoting assistant for a building-materials supplier. Answer questions about the catalog and manage the customer's quote.

When the customer asks to add or remove items, emit one directive per change, exactly in this form:
[ACTION:ADD_TO_QUOTE, SKU:<sku>, QUANTITY:<integer>]
[ACTION:REMOVE_FROM_QUOTE, SKU:<sku>]
Use only SKUs from the catalog. Directives are machine-read and stripped before display, so also describe the change in plain language.`

// apologyReply is the only thing the user sees when a model or analyzer
// call fails. The cause goes to the log, never into the transcript.
const apologyReply = "Sorry, I ran into a problem handling that. Could you try again?"

// ErrNoPendingBOM is returned by AcceptBOM and DismissBOM when the session
// has no bill of materials awaiting a decision.
var ErrNoPendingBOM = errors.New("agent: no pending bill of materials")

// Agent wires a language model, a catalog, and a requirements analyzer into
// a session orchestrator.
type Agent struct {
	model        models.Model
	source       catalog.Source
	analyzer     analysis.Analyzer
	systemPrompt string
	historyLimit int
	logger       *zap.Logger

	// turns caps in-flight collaborator calls across all sessions. The
	// per-session busy flag serializes turns within a session; this pool
	// bounds the aggregate.
	turns *concurrent.WorkerPool
}

// Options configure a new Agent.
type Options struct {
	Model        models.Model
	Source       catalog.Source
	Analyzer     analysis.Analyzer // optional; defaults to the LLM analyzer
	SystemPrompt string
	HistoryLimit int
	// MaxConcurrentTurns bounds simultaneous model/analyzer calls across
	// sessions. Zero means the pool default.
	MaxConcurrentTurns int
	Logger             *zap.Logger
}

// New creates an Agent with the provided options.
func New(opts Options) (*Agent, error) {
	if opts.Model == nil {
		return nil, errors.New("agent requires a language model")
	}
	if opts.Source == nil {
		return nil, errors.New("agent requires a catalog source")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	analyzer := opts.Analyzer
	if analyzer == nil {
		var err error
		analyzer, err = analysis.NewLLMAnalyzer(opts.Model, opts.Source, logger)
		if err != nil {
			return nil, err
		}
	}

	historyLimit := opts.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 8
	}

	systemPrompt := opts.SystemPrompt
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}

	return &Agent{
		model:        opts.Model,
		source:       opts.Source,
		analyzer:     analyzer,
		systemPrompt: systemPrompt,
		historyLimit: historyLimit,
		logger:       logger,
		turns:        concurrent.NewWorkerPool(opts.MaxConcurrentTurns),
	}, nil
}

// NewSession starts an empty session whose quote mutations are wired to its
// own quote.
func (a *Agent) NewSession() (*Session, error) {
	s := newSession()
	engine, err := directive.NewEngine(a.source, directive.Hooks{
		AddToQuote:      s.quote.Add,
		RemoveFromQuote: s.quote.Remove,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return s, nil
}

// Respond processes one user message and returns the single assistant reply
// for the turn. A session handles one turn at a time; concurrent calls get
// ErrTurnInFlight. Model and analyzer failures are absorbed into an apology
// rather than an error, so the conversation always moves forward.
func (a *Agent) Respond(ctx context.Context, s *Session, input string) (string, error) {
	if err := s.beginTurn(); err != nil {
		return "", err
	}
	defer s.endTurn()

	s.append(RoleUser, input)

	if s.Mode() == ModeChat && analysis.ClassifyTurn(input) == analysis.TurnBuildingAnalysis {
		return a.analysisTurn(ctx, s, input), nil
	}
	return a.chatTurn(ctx, s), nil
}

func (a *Agent) chatTurn(ctx context.Context, s *Session) string {
	var raw string
	err := a.turns.Do(ctx, func() error {
		var genErr error
		raw, genErr = a.model.Generate(ctx, a.buildPrompt(ctx, s))
		return genErr
	})
	if err != nil {
		a.logger.Error("model call failed",
			zap.String("session", s.ID), zap.Error(err))
		s.append(RoleAssistant, apologyReply)
		return apologyReply
	}

	res := s.engine.Process(ctx, raw)
	s.append(RoleAssistant, res.CleanText)
	return res.CleanText
}

func (a *Agent) analysisTurn(ctx context.Context, s *Session, input string) string {
	s.setMode(ModeBuildingAnalysis)

	var bom quote.BillOfMaterials
	err := a.turns.Do(ctx, func() error {
		var analyzeErr error
		bom, analyzeErr = a.analyzer.Analyze(ctx, input)
		return analyzeErr
	})
	if err != nil {
		a.logger.Error("building analysis failed",
			zap.String("session", s.ID), zap.Error(err))
		s.setMode(ModeChat)
		s.append(RoleAssistant, apologyReply)
		return apologyReply
	}

	s.setPendingBOM(&bom)
	s.setMode(ModeBomPreview)

	reply := renderBOM(bom)
	s.append(RoleAssistant, reply)
	return reply
}

// AcceptBOM converts the pending bill of materials into quote additions.
// Lines that fail validation or are missing from the catalog are skipped;
// the rest are added in order. The session returns to chat mode.
func (a *Agent) AcceptBOM(ctx context.Context, s *Session) (string, error) {
	if err := s.beginTurn(); err != nil {
		return "", err
	}
	defer s.endTurn()

	pending := s.PendingBOM()
	if pending == nil || s.Mode() != ModeBomPreview {
		return "", ErrNoPendingBOM
	}

	commands := make([]directive.Command, 0, len(pending.LineItems))
	for _, line := range pending.LineItems {
		cmd := directive.AddToQuote{SKU: line.SKU, Quantity: line.Quantity}
		if err := cmd.Validate(); err != nil {
			a.logger.Debug("bill of materials line skipped",
				zap.String("sku", line.SKU), zap.Error(err))
			continue
		}
		commands = append(commands, cmd)
	}

	executed := s.engine.Execute(ctx, commands)

	s.setPendingBOM(nil)
	s.setMode(ModeChat)

	reply := fmt.Sprintf("Added %d item(s) to your quote. Subtotal: $%.2f.",
		len(executed), s.quote.Subtotal())
	s.append(RoleAssistant, reply)
	return reply, nil
}

// DismissBOM discards the pending bill of materials and returns the session
// to chat mode. The quote is untouched.
func (a *Agent) DismissBOM(s *Session) (string, error) {
	if err := s.beginTurn(); err != nil {
		return "", err
	}
	defer s.endTurn()

	if s.PendingBOM() == nil || s.Mode() != ModeBomPreview {
		return "", ErrNoPendingBOM
	}

	s.setPendingBOM(nil)
	s.setMode(ModeChat)

	const reply = "No problem, I've set that materials list aside. Anything else?"
	s.append(RoleAssistant, reply)
	return reply, nil
}

// buildPrompt assembles the model prompt: system preamble, catalog, current
// quote, and the recent transcript. The transcript already ends with the
// user message being answered.
func (a *Agent) buildPrompt(ctx context.Context, s *Session) string {
	var b strings.Builder
	b.WriteString(a.systemPrompt)
	b.WriteString("\n\nCatalog:\n")

	items, err := a.source.Items(ctx)
	if err != nil {
		a.logger.Warn("catalog listing failed", zap.Error(err))
	}
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: %s ($%.2f)\n", item.ID, item.Name, item.UnitPrice)
	}

	if lines := s.quote.Items(); len(lines) > 0 {
		b.WriteString("\nCurrent quote:\n")
		for _, line := range lines {
			fmt.Fprintf(&b, "- %s x%d\n", line.SKU, line.Quantity)
		}
	}

	b.WriteString("\nConversation:\n")
	for _, msg := range s.recent(a.historyLimit) {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	b.WriteString("assistant:")
	return b.String()
}

func renderBOM(bom quote.BillOfMaterials) string {
	var b strings.Builder
	b.WriteString("Here's what I'd recommend for your project:\n")
	for _, line := range bom.LineItems {
		fmt.Fprintf(&b, "- %s x%d %s", line.SKU, line.Quantity, line.Description)
		if line.Reasoning != "" {
			fmt.Fprintf(&b, " (%s)", line.Reasoning)
		}
		b.WriteString("\n")
	}
	if bom.EstimatedTotal != nil {
		fmt.Fprintf(&b, "Estimated total: $%.2f\n", *bom.EstimatedTotal)
	}
	b.WriteString("Say the word and I'll add these to your quote, or dismiss the list to keep chatting.")
	return b.String()
}
