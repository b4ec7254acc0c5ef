// Package app assembles the chatbot services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/api/option"

	"github.com/zhouzirui/dinebot/backend/internal/config"
	"github.com/zhouzirui/dinebot/backend/internal/metrics"
	kbModel "github.com/zhouzirui/dinebot/backend/internal/model/kb"
	"github.com/zhouzirui/dinebot/backend/internal/service/calllog"
	"github.com/zhouzirui/dinebot/backend/internal/service/chat"
	"github.com/zhouzirui/dinebot/backend/internal/service/kb"
	"github.com/zhouzirui/dinebot/backend/internal/service/render"
	"github.com/zhouzirui/dinebot/backend/internal/service/session"
)

// App holds the wired services.
type App struct {
	KB        kbModel.Store
	Responder *kb.Responder
	Sessions  *session.Store
	CallLog   *calllog.Logger
	Chat      *chat.Service
	Metrics   *metrics.Metrics

	closers []func() error
}

// Build wires every service described by cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		KB:      kbModel.NewFileStore(cfg.KB.Dir),
		Metrics: metrics.New(),
	}

	responder, err := a.buildResponder(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Responder = responder

	callLog, err := a.buildCallLog(ctx, cfg.CallLog, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.CallLog = callLog

	a.Sessions = session.NewStore(session.NewMemoryBackend(),
		session.WithTTL(cfg.Session.TTL),
		session.WithLogger(logger),
		session.WithSweepHook(a.Metrics.SetLiveSessions),
	)

	a.Chat = chat.NewService(a.Sessions, a.Responder, render.New(nil),
		chat.WithCallLog(a.CallLog),
		chat.WithRecorder(a.Metrics),
		chat.WithLogger(logger),
	)
	return a, nil
}

func (a *App) buildResponder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*kb.Responder, error) {
	opts := []kb.Option{
		kb.WithDefaultCity(cfg.KB.DefaultCity),
		kb.WithLogger(logger),
		kb.WithRecorder(a.Metrics),
	}
	if cfg.KB.RandomSeed != nil {
		opts = append(opts, kb.WithSeed(*cfg.KB.RandomSeed))
	}

	switch cfg.KB.Backend {
	case config.BackendRemote:
		backend := kb.NewHTTPBackend(cfg.KB.RemoteURL, cfg.KB.KnowledgeKey, cfg.KB.AgentKey, &http.Client{Timeout: cfg.KB.RemoteTimeout})
		opts = append(opts, kb.WithRemote(backend, cfg.KB.RemoteTimeout))
		logger.Info("knowledge base uses remote backend", "url", cfg.KB.RemoteURL)
	case config.BackendLLM:
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("create chat model: %w", err)
		}
		backend, err := kb.NewLLMBackend(ctx, chatModel, a.KB)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kb.WithRemote(backend, cfg.KB.RemoteTimeout))
		logger.Info("knowledge base uses llm backend", "model", cfg.AI.Model)
	default:
		logger.Info("knowledge base uses local files", "dir", cfg.KB.Dir)
	}

	return kb.NewResponder(a.KB, opts...), nil
}

// buildCallLog opens the configured sinks. A sheet that cannot be reached
// at startup is logged and skipped.
func (a *App) buildCallLog(ctx context.Context, cfg config.CallLogConfig, logger *slog.Logger) (*calllog.Logger, error) {
	var sinks calllog.MultiSink

	if cfg.SheetsEnabled() {
		sheet, err := calllog.NewSheetsSink(ctx, cfg.SheetsID, cfg.SheetsRange, option.WithCredentialsFile(cfg.SheetsCredentials))
		if err != nil {
			logger.Warn("google sheets logging disabled", "error", err)
		} else {
			sinks = append(sinks, sheet)
		}
	}

	if cfg.SQLitePath != "" {
		db, err := calllog.NewSQLiteSink(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open call log database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		sinks = append(sinks, db)
	}

	opts := []calllog.Option{
		calllog.WithTimeout(cfg.Timeout),
		calllog.WithLogger(logger),
		calllog.WithRecorder(a.Metrics),
	}
	switch len(sinks) {
	case 0:
		logger.Info("conversation logging disabled")
		return calllog.NewLogger(nil, opts...), nil
	case 1:
		return calllog.NewLogger(sinks[0], opts...), nil
	default:
		return calllog.NewLogger(sinks, opts...), nil
	}
}

// Close releases resources opened by Build.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
