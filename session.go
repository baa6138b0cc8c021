package agent

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Quotient-Labs/quote-agent/src/directive"
	"github.com/Quotient-Labs/quote-agent/src/quote"
)

// Mode is the conversational state a session is in. It decides how the next
// user message is handled.
type Mode string

const (
	// ModeChat answers the user directly, executing any directives the
	// model emits.
	ModeChat Mode = "chat"
	// ModeBuildingAnalysis is the transient state while a project
	// description is being analyzed into a bill of materials.
	ModeBuildingAnalysis Mode = "building_analysis"
	// ModeBomPreview means a bill of materials is awaiting the user's
	// accept or dismiss decision.
	ModeBomPreview Mode = "bom_preview"
)

// Role tags a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn half in the session transcript. Assistant content is
// always sanitized; raw model output never enters the transcript.
type Message struct {
	Role      Role
	Content   string
	CreatedAt time.Time
}

// ErrTurnInFlight is returned when a session receives a message while a
// previous turn is still being processed.
var ErrTurnInFlight = errors.New("agent: a turn is already in flight for this session")

// Session holds one user's conversation: transcript, quote under
// construction, pending bill of materials, and the current mode. A session
// processes at most one turn at a time.
type Session struct {
	ID string

	mu       sync.Mutex
	busy     bool
	mode     Mode
	messages []Message
	quote    *quote.Quote
	pending  *quote.BillOfMaterials
	engine   *directive.Engine
}

// newSession creates an empty session in chat mode. The directive engine is
// attached by Agent.NewSession.
func newSession() *Session {
	return &Session{
		ID:    uuid.NewString(),
		mode:  ModeChat,
		quote: quote.New(),
	}
}

// beginTurn claims the session for one turn. Callers must pair it with
// endTurn.
func (s *Session) beginTurn() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrTurnInFlight
	}
	s.busy = true
	return nil
}

func (s *Session) endTurn() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Mode returns the session's current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) setMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// Quote returns the quote being built in this session.
func (s *Session) Quote() *quote.Quote {
	return s.quote
}

// PendingBOM returns the bill of materials awaiting a decision, or nil.
func (s *Session) PendingBOM() *quote.BillOfMaterials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) setPendingBOM(b *quote.BillOfMaterials) {
	s.mu.Lock()
	s.pending = b
	s.mu.Unlock()
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) append(role Role, content string) {
	s.mu.Lock()
	s.messages = append(s.messages, Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	s.mu.Unlock()
}

// recent returns up to limit of the newest transcript messages, oldest
// first.
func (s *Session) recent(limit int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit >= len(s.messages) {
		out := make([]Message, len(s.messages))
		copy(out, s.messages)
		return out
	}
	out := make([]Message, limit)
	copy(out, s.messages[len(s.messages)-limit:])
	return out
}
