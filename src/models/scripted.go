package models

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ScriptedModel replays a fixed sequence of replies. It is the offline
// stand-in for a real provider, used by the demo binary and tests.
type ScriptedModel struct {
	mu      sync.Mutex
	replies []string
	next    int
	// Fallback is returned once the script runs out. Defaults to echoing
	// the last non-empty prompt line.
	Fallback string
}

func NewScriptedModel(replies ...string) *ScriptedModel {
	return &ScriptedModel{replies: replies}
}

func (s *ScriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next < len(s.replies) {
		reply := s.replies[s.next]
		s.next++
		return reply, nil
	}
	if s.Fallback != "" {
		return s.Fallback, nil
	}

	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return fmt.Sprintf("Echo: %s", line), nil
		}
	}
	return "Echo: <empty prompt>", nil
}

var _ Model = (*ScriptedModel)(nil)
