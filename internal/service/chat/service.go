package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/dinebot/backend/internal/analysis/intent"
	"github.com/zhouzirui/dinebot/backend/internal/model/chat"
	"github.com/zhouzirui/dinebot/backend/internal/service/calllog"
	"github.com/zhouzirui/dinebot/backend/internal/service/kb"
	"github.com/zhouzirui/dinebot/backend/internal/service/render"
	"github.com/zhouzirui/dinebot/backend/internal/service/session"
)

var ErrSessionNotFound = session.ErrSessionNotFound

// Reply is the outcome of one message.
type Reply struct {
	Response  string `json:"response"`
	State     string `json:"state"`
	Intent    string `json:"intent,omitempty"`
	SessionID string `json:"session_id"`
}

// Recorder observes handled turns, typically for metrics.
type Recorder interface {
	RecordTurn(state, intent string)
	SetLiveSessions(n int)
}

// Service runs the conversation: state machine, knowledge base, templates
// and the conversation log.
type Service struct {
	sessions  *session.Store
	responder *kb.Responder
	renderer  *render.Renderer
	calls     *calllog.Logger
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithCallLog(l *calllog.Logger) Option {
	return func(s *Service) { s.calls = l }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the conversation engine. A nil renderer uses the
// built-in templates.
func NewService(sessions *session.Store, responder *kb.Responder, renderer *render.Renderer, opts ...Option) *Service {
	if renderer == nil {
		renderer = render.New(nil)
	}
	s := &Service{
		sessions:  sessions,
		responder: responder,
		renderer:  renderer,
		calls:     calllog.NewLogger(nil),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleMessage processes one user message. An empty sessionID starts a new
// session whose id is returned in the reply.
func (s *Service) HandleMessage(ctx context.Context, sessionID, message string) (Reply, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	message = strings.TrimSpace(message)

	var (
		reply  Reply
		record *calllog.Record
	)
	_, err := s.sessions.Update(ctx, sessionID, func(sess *chat.Session) error {
		now := s.now()

		switch {
		case message == "":
			text, err := s.renderer.Greeting(ctx)
			if err != nil {
				return err
			}
			sess.AppendTurn("", text, now)
			reply = Reply{Response: text, State: string(sess.State)}
			return nil

		case sess.State.Terminal():
			text, err := s.renderer.RenderKey(ctx, render.SessionEnded, render.Vars{UserMessage: message})
			if err != nil {
				return err
			}
			sess.AppendTurn(message, text, now)
			reply = Reply{Response: text, State: string(sess.State)}
			return nil
		}

		next, detected := intent.Transition(sess.State, message, sess.Context)
		if _, ok := sess.Slot(chat.SlotCity); !ok {
			if city, ok := intent.DetectCity(message); ok {
				sess.SetSlot(chat.SlotCity, city)
			}
		}
		if slot, value, ok := intent.ExtractSlot(detected, message); ok {
			sess.SetSlot(slot, value)
		}
		sess.State = next

		text, err := s.respond(ctx, sess, detected, message)
		if err != nil {
			return err
		}
		sess.AppendTurn(message, text, now)
		reply = Reply{Response: text, State: string(next), Intent: string(detected)}

		if logged(next) {
			label := string(detected)
			if label == "" {
				label = string(next)
			}
			city, _ := sess.Slot(chat.SlotCity)
			record = &calllog.Record{
				Timestamp:   now,
				SessionID:   sess.ID,
				UserQuery:   message,
				BotResponse: text,
				Intent:      label,
				City:        city,
				Duration:    sess.Duration(now),
			}
		}
		return nil
	})
	if err != nil {
		return Reply{}, fmt.Errorf("handle message: %w", err)
	}
	reply.SessionID = sessionID

	s.logger.Debug("chat turn handled",
		"session_id", sessionID, "state", reply.State, "intent", reply.Intent)

	if record != nil {
		s.calls.Log(ctx, *record)
	}
	if s.recorder != nil {
		s.recorder.RecordTurn(reply.State, reply.Intent)
		s.recorder.SetLiveSessions(s.sessions.Len(ctx))
	}
	return reply, nil
}

// respond builds the reply text for the session's new state.
func (s *Service) respond(ctx context.Context, sess *chat.Session, detected chat.Intent, message string) (string, error) {
	vars := render.Vars{UserMessage: message, Context: sess.Context, Intent: detected, Query: message}

	if sess.State == chat.StateFAQ {
		city, _ := sess.Slot(chat.SlotCity)
		if city == "" {
			return s.responder.FreeText(ctx, "", message), nil
		}
		if answer, ok := s.responder.Structured(ctx, city, string(chat.IntentFAQ), message); ok {
			return answer, nil
		}
		return s.renderer.Render(ctx, chat.StateFallback, vars)
	}

	return s.renderer.Render(ctx, sess.State, vars)
}

// logged reports whether entering state triggers a conversation log entry.
func logged(state chat.State) bool {
	switch state {
	case chat.StateBooking, chat.StateCancellation, chat.StateGoodbye:
		return true
	default:
		return false
	}
}

// History returns a snapshot of the session.
func (s *Service) History(ctx context.Context, sessionID string) (chat.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Reset forgets the session so the next message starts from the greeting.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return session.ErrSessionIDRequired
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.SetLiveSessions(s.sessions.Len(ctx))
	}
	return nil
}
