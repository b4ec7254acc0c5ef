package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zhouzirui/dinebot/backend/internal/model/chat"
)

var (
	ErrSessionIDRequired = errors.New("session id is required")
	ErrSessionNotFound   = errors.New("session not found")
)

// Store serializes every read-modify-write on a session id. Different ids
// proceed in parallel.
type Store struct {
	backend Backend
	locks   *keyedMutex
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	onSweep func(live int)
}

// Option customises a Store.
type Option func(*Store)

// WithTTL evicts sessions idle for longer than ttl. Zero disables eviction.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used by the sweeper.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithSweepHook is called with the remaining session count after each
// janitor sweep.
func WithSweepHook(fn func(live int)) Option {
	return func(s *Store) { s.onSweep = fn }
}

// NewStore wraps backend. A nil backend means an in-memory one.
func NewStore(backend Backend, opts ...Option) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &Store{
		backend: backend,
		locks:   newKeyedMutex(),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the idle eviction window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Update runs fn on the session with the given id under that id's lock,
// creating the session first if needed, and persists the result. When fn
// fails nothing is written.
func (s *Store) Update(ctx context.Context, id string, fn func(*chat.Session) error) (chat.Session, error) {
	if id == "" {
		return chat.Session{}, ErrSessionIDRequired
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	now := s.now()
	sess, ok, err := s.backend.Get(ctx, id)
	if err != nil {
		return chat.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if !ok || s.expired(sess, now) {
		sess = chat.NewSession(id, now)
	}

	if fn != nil {
		if err := fn(sess); err != nil {
			return chat.Session{}, err
		}
	}
	sess.LastActive = now

	if err := s.backend.Put(ctx, sess); err != nil {
		return chat.Session{}, fmt.Errorf("save session %s: %w", id, err)
	}
	return sess.Clone(), nil
}

// GetOrCreate returns the session for id, creating it in the greeting state.
func (s *Store) GetOrCreate(ctx context.Context, id string) (chat.Session, error) {
	return s.Update(ctx, id, nil)
}

// AppendTurn records one exchange on the session.
func (s *Store) AppendTurn(ctx context.Context, id, userText, botText string) error {
	_, err := s.Update(ctx, id, func(sess *chat.Session) error {
		sess.AppendTurn(userText, botText, s.now())
		return nil
	})
	return err
}

// SetContextSlot stores a context value on the session.
func (s *Store) SetContextSlot(ctx context.Context, id, key, value string) error {
	_, err := s.Update(ctx, id, func(sess *chat.Session) error {
		sess.SetSlot(key, value)
		return nil
	})
	return err
}

// Get returns an existing session without creating one.
func (s *Store) Get(ctx context.Context, id string) (chat.Session, error) {
	if id == "" {
		return chat.Session{}, ErrSessionIDRequired
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	sess, ok, err := s.backend.Get(ctx, id)
	if err != nil {
		return chat.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if !ok || s.expired(sess, s.now()) {
		return chat.Session{}, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Delete drops the session so the next message starts over.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrSessionIDRequired
	}

	unlock := s.locks.Lock(id)
	defer unlock()
	return s.backend.Delete(ctx, id)
}

// Len returns the number of stored sessions.
func (s *Store) Len(ctx context.Context) int {
	n, err := s.backend.Len(ctx)
	if err != nil {
		s.logger.Warn("count sessions failed", "error", err)
		return 0
	}
	return n
}

// Sweep removes sessions idle past the TTL and returns how many went.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	now := s.now()
	var candidates []string
	err := s.backend.Range(ctx, func(sess *chat.Session) bool {
		if s.expired(sess, now) {
			candidates = append(candidates, sess.ID)
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}

	removed := 0
	for _, id := range candidates {
		if s.evict(ctx, id, now) {
			removed++
		}
	}
	return removed, nil
}

// Run sweeps every interval until ctx is done. It returns immediately when
// eviction is disabled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("evicted idle sessions", "count", n, "ttl", s.ttl)
			}
			if s.onSweep != nil {
				s.onSweep(s.Len(ctx))
			}
		}
	}
}

// evict re-checks the session under its lock so an in-flight update wins.
func (s *Store) evict(ctx context.Context, id string, now time.Time) bool {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, ok, err := s.backend.Get(ctx, id)
	if err != nil || !ok || !s.expired(sess, now) {
		return false
	}
	if err := s.backend.Delete(ctx, id); err != nil {
		s.logger.Warn("evict session failed", "session_id", id, "error", err)
		return false
	}
	return true
}

func (s *Store) expired(sess *chat.Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.LastActive) > s.ttl
}
