package chat

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Session captures one visitor's conversation with the assistant.
type Session struct {
	ID         string            `json:"id"`
	State      State             `json:"state"`
	Context    map[string]string `json:"context"`
	StartTime  time.Time         `json:"startTime"`
	LastActive time.Time         `json:"lastActive"`
	History    []Turn            `json:"history"`
}

// Turn is one user message and the reply it produced.
type Turn struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Bot       string    `json:"bot"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSession returns a session in the initial greeting state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		State:      StateGreeting,
		Context:    make(map[string]string),
		StartTime:  now,
		LastActive: now,
		History:    make([]Turn, 0, 16),
	}
}

// Slot returns the context value stored under key.
func (s *Session) Slot(key string) (string, bool) {
	v, ok := s.Context[key]
	return v, ok
}

// Clone returns a deep copy safe to hand out of the store.
func (s *Session) Clone() Session {
	out := *s
	out.Context = maps.Clone(s.Context)
	if out.Context == nil {
		out.Context = make(map[string]string)
	}
	out.History = append([]Turn(nil), s.History...)
	return out
}

// Duration returns how long the conversation has been running at now.
func (s *Session) Duration(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return now.Sub(s.StartTime)
}

// AppendTurn records a user message and the reply to it.
func (s *Session) AppendTurn(user, bot string, at time.Time) Turn {
	turn := Turn{
		ID:        uuid.NewString(),
		User:      user,
		Bot:       bot,
		Timestamp: at.UTC(),
	}
	s.History = append(s.History, turn)
	return turn
}

// SetSlot stores value under key. Empty values are ignored so a slot is never
// blanked once filled.
func (s *Session) SetSlot(key, value string) bool {
	if key == "" || value == "" {
		return false
	}
	if s.Context == nil {
		s.Context = make(map[string]string)
	}
	s.Context[key] = value
	return true
}
