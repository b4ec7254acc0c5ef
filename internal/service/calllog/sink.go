package calllog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrDisabled is returned by Logger when no sink is configured.
var ErrDisabled = errors.New("conversation log disabled")

// Sink stores records.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// MultiSink fans a record out to every sink, joining their errors.
type MultiSink []Sink

func (m MultiSink) Append(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Outcomes reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeDisabled = "disabled"
)

// Recorder observes append outcomes.
type Recorder interface {
	RecordCallLog(outcome string)
}

// DefaultTimeout bounds a single append.
const DefaultTimeout = 5 * time.Second

// Logger appends records with a bounded timeout and never returns an error;
// failures are logged and reported as false.
type Logger struct {
	sink     Sink
	timeout  time.Duration
	logger   *slog.Logger
	recorder Recorder
}

type Option func(*Logger)

func WithTimeout(d time.Duration) Option {
	return func(l *Logger) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(l *Logger) { l.recorder = r }
}

// NewLogger wraps sink. A nil sink yields a Logger that reports every
// append as unsuccessful.
func NewLogger(sink Sink, opts ...Option) *Logger {
	l := &Logger{
		sink:    sink,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Enabled reports whether a sink is configured.
func (l *Logger) Enabled() bool {
	return l != nil && l.sink != nil
}

// Log appends rec and reports whether it was stored.
func (l *Logger) Log(ctx context.Context, rec Record) bool {
	if err := l.Append(ctx, rec); err != nil {
		if !errors.Is(err, ErrDisabled) {
			l.logger.Warn("conversation log append failed", "session_id", rec.SessionID, "error", err)
		}
		return false
	}
	return true
}

// Append is Log with the error exposed, for callers that report it.
func (l *Logger) Append(ctx context.Context, rec Record) error {
	if !l.Enabled() {
		l.record(OutcomeDisabled)
		return ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.sink.Append(ctx, rec); err != nil {
		l.record(OutcomeError)
		return fmt.Errorf("append record: %w", err)
	}
	l.record(OutcomeOK)
	return nil
}

func (l *Logger) record(outcome string) {
	if l != nil && l.recorder != nil {
		l.recorder.RecordCallLog(outcome)
	}
}
