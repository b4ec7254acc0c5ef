package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/dinebot/backend/internal/app"
	"github.com/zhouzirui/dinebot/backend/internal/config"
	"github.com/zhouzirui/dinebot/backend/internal/handler"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup completes before exit.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		return 1
	}
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Warn("failed to load .env file, continuing with system environment variables only", "error", envErr)
	}

	services, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		return 1
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Error("failed to release resources", "error", err)
		}
	}()

	if ttl := services.Sessions.TTL(); ttl > 0 {
		logger.Info("session expiry enabled", "ttl", ttl, "sweep_interval", cfg.Session.SweepInterval)
		go services.Sessions.Run(ctx, cfg.Session.SweepInterval)
	}

	router := handler.NewRouter(handler.Deps{
		Chat:           services.Chat,
		KB:             services.KB,
		CallLog:        services.CallLog,
		Metrics:        services.Metrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	if err := startServer(ctx, cfg.Server, router); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("dinebot backend listening", "addr", addr)
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
