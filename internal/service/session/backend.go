// Package session keeps conversation sessions for the lifetime of the process.
package session

import (
	"context"
	"sync"

	"github.com/zhouzirui/dinebot/backend/internal/model/chat"
)

// Backend persists sessions. Implementations store and return copies so
// callers never share state with the backend.
type Backend interface {
	Get(ctx context.Context, id string) (*chat.Session, bool, error)
	Put(ctx context.Context, s *chat.Session) error
	Delete(ctx context.Context, id string) error
	Range(ctx context.Context, fn func(s *chat.Session) bool) error
	Len(ctx context.Context) (int, error)
}

// MemoryBackend implements Backend with an in-memory map.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]*chat.Session)}
}

func (b *MemoryBackend) Get(_ context.Context, id string) (*chat.Session, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.sessions[id]
	if !ok {
		return nil, false, nil
	}
	copied := s.Clone()
	return &copied, true, nil
}

func (b *MemoryBackend) Put(_ context.Context, s *chat.Session) error {
	copied := s.Clone()

	b.mu.Lock()
	b.sessions[s.ID] = &copied
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	delete(b.sessions, id)
	b.mu.Unlock()
	return nil
}

// Range calls fn with a copy of every session until fn returns false.
func (b *MemoryBackend) Range(_ context.Context, fn func(s *chat.Session) bool) error {
	b.mu.RLock()
	snapshot := make([]chat.Session, 0, len(b.sessions))
	for _, s := range b.sessions {
		snapshot = append(snapshot, s.Clone())
	}
	b.mu.RUnlock()

	for i := range snapshot {
		if !fn(&snapshot[i]) {
			return nil
		}
	}
	return nil
}

func (b *MemoryBackend) Len(_ context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions), nil
}
