// Package kb answers visitor questions from the per-city knowledge base.
package kb

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/dinebot/backend/internal/analysis/intent"
	kbmodel "github.com/zhouzirui/dinebot/backend/internal/model/kb"
)

// Answer modes reported to the Recorder.
const (
	ModeStructured = "structured"
	ModeFreeText   = "free_text"
)

// Answer outcomes reported to the Recorder.
const (
	OutcomeRemote    = "remote"
	OutcomeMatched   = "matched"
	OutcomeOverlap   = "overlap"
	OutcomeGreeting  = "greeting"
	OutcomeFallback  = "fallback"
	OutcomeNoMatch   = "no_match"
	OutcomeKBMissing = "kb_unavailable"
)

// DefaultRemoteTimeout bounds a remote backend call.
const DefaultRemoteTimeout = 5 * time.Second

// Recorder observes answers, typically for metrics.
type Recorder interface {
	RecordKBAnswer(mode, outcome string)
}

// Responder implements the structured and free-text answering modes over a
// knowledge-base store, optionally consulting a remote backend first.
type Responder struct {
	store         kbmodel.Store
	remote        Backend
	remoteTimeout time.Duration
	defaultCity   string
	logger        *slog.Logger
	recorder      Recorder

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customises a Responder.
type Option func(*Responder)

// WithRand injects the random source used for greeting and fallback phrases.
func WithRand(r *rand.Rand) Option {
	return func(rs *Responder) {
		if r != nil {
			rs.rng = r
		}
	}
}

// WithSeed is WithRand over a PCG source seeded with seed.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed)))
}

// WithRemote makes free-text mode try backend before the local data.
func WithRemote(backend Backend, timeout time.Duration) Option {
	return func(rs *Responder) {
		rs.remote = backend
		if timeout > 0 {
			rs.remoteTimeout = timeout
		}
	}
}

// WithDefaultCity sets the city used when neither the session nor the query names one.
func WithDefaultCity(city string) Option {
	return func(rs *Responder) { rs.defaultCity = city }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rs *Responder) {
		if logger != nil {
			rs.logger = logger
		}
	}
}

// WithRecorder sets the answer observer.
func WithRecorder(r Recorder) Option {
	return func(rs *Responder) { rs.recorder = r }
}

// NewResponder builds a Responder over store.
func NewResponder(store kbmodel.Store, opts ...Option) *Responder {
	rs := &Responder{
		store:         store,
		remoteTimeout: DefaultRemoteTimeout,
		defaultCity:   "Bangalore",
		logger:        slog.Default(),
		rng:           rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// Answer uses structured mode when both city and intent are known and
// free-text mode otherwise. Free-text mode always produces text.
func (r *Responder) Answer(ctx context.Context, city, category, query string) (string, bool) {
	if city != "" && category != "" {
		return r.Structured(ctx, city, category, query)
	}
	return r.FreeText(ctx, city, query), true
}

// Structured returns the first entry under category whose question shares at
// least two words with query or appears in it verbatim.
func (r *Responder) Structured(ctx context.Context, city, category, query string) (string, bool) {
	entries, err := kbmodel.Lookup(ctx, r.store, city, category)
	if err != nil {
		r.logger.Debug("structured lookup unavailable", "city", city, "intent", category, "error", err)
		r.record(ModeStructured, OutcomeKBMissing)
		return "", false
	}

	normalized := strings.ToLower(query)
	for _, entry := range entries {
		question := strings.ToLower(strings.TrimSpace(entry.Question))
		if question == "" || entry.Answer == "" {
			continue
		}

		matches := 0
		for _, word := range strings.Fields(question) {
			if strings.Contains(normalized, word) {
				matches++
			}
		}
		if matches >= 2 || strings.Contains(normalized, question) {
			r.record(ModeStructured, OutcomeMatched)
			return entry.Answer, true
		}
	}

	r.record(ModeStructured, OutcomeNoMatch)
	return "", false
}

// FreeText answers query by topic buckets, then word overlap, then a random
// fallback phrase. An empty city is resolved from the query or the default.
func (r *Responder) FreeText(ctx context.Context, city, query string) string {
	if city == "" {
		if detected, ok := intent.DetectCity(query); ok {
			city = detected
		} else {
			city = r.defaultCity
		}
	}

	if answer, ok := r.queryRemote(ctx, city, query); ok {
		r.record(ModeFreeText, OutcomeRemote)
		return answer
	}

	collection, err := r.store.Load(ctx, city)
	if err != nil {
		r.logger.Warn("knowledge base unavailable", "city", city, "error", err)
		r.record(ModeFreeText, OutcomeKBMissing)
		return TechnicalDifficulty
	}

	normalized := strings.ToLower(query)
	if answer, outcome := r.answerByTopic(collection, normalized); answer != "" {
		r.record(ModeFreeText, outcome)
		return answer
	}

	if answer := bestOverlap(collection[kbmodel.CategoryFAQ], normalized); answer != "" {
		r.record(ModeFreeText, OutcomeOverlap)
		return answer
	}

	r.record(ModeFreeText, OutcomeFallback)
	return r.pick(fallbackPhrases)
}

func (r *Responder) queryRemote(ctx context.Context, city, query string) (string, bool) {
	if r.remote == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, r.remoteTimeout)
	defer cancel()

	answer, err := r.remote.Query(ctx, city, query)
	if err != nil {
		r.logger.Warn("remote knowledge base failed, using local data", "backend", r.remote.Name(), "error", err)
		return "", false
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false
	}
	return answer, true
}

func (r *Responder) answerByTopic(collection kbmodel.Collection, normalized string) (string, string) {
	for _, t := range topics {
		if !containsAny(normalized, t.keywords) {
			continue
		}

		switch t.name {
		case topicGreeting:
			return r.pick(greetingPhrases), OutcomeGreeting
		case topicBooking:
			for _, entry := range collection[kbmodel.CategoryBooking] {
				if strings.Contains(entry.Info, bookingInfoMarker) {
					return entry.Details, OutcomeMatched
				}
			}
		default:
			for _, entry := range collection[kbmodel.CategoryFAQ] {
				if containsAny(strings.ToLower(entry.Question), t.markers) {
					return entry.Answer, OutcomeMatched
				}
			}
		}
		// only the first matching bucket is consulted
		return "", ""
	}
	return "", ""
}

// bestOverlap returns the answer whose question shares the most distinct words
// with the query; the first entry wins ties.
func bestOverlap(entries []kbmodel.Entry, normalized string) string {
	queryWords := wordSet(normalized)

	best := -1
	bestCount := 0
	for i, entry := range entries {
		count := 0
		for word := range wordSet(strings.ToLower(entry.Question)) {
			if _, ok := queryWords[word]; ok {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return entries[best].Answer
}

func (r *Responder) pick(options []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return options[r.rng.IntN(len(options))]
}

func (r *Responder) record(mode, outcome string) {
	if r.recorder != nil {
		r.recorder.RecordKBAnswer(mode, outcome)
	}
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
