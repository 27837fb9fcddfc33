package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookrag-ai/internal/app"
	"bookrag-ai/internal/config"
	"bookrag-ai/internal/http"
	"bookrag-ai/internal/schedule"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(app.NewLogger(cfg, os.Stdout))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("API server stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	components, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = components.Close()
	}()

	store, err := components.VectorStore(ctx)
	if err != nil {
		return err
	}

	services, err := components.Services(store)
	if err != nil {
		return err
	}
	slog.Info("RAG engine initialized", "collection", cfg.QdrantCollection)

	// Background ingestion writes to the stores closed by components.Close.
	defer func() {
		waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := services.Content.Wait(waitCtx); err != nil {
			slog.Warn("Ingestion still running at shutdown", "error", err)
		}
	}()

	if cfg.IngestOnStartup {
		if err := services.Content.StartIngest(ctx, false); err != nil {
			slog.Warn("Startup ingestion not started", "error", err)
		} else {
			slog.Info("Startup ingestion started", "root", cfg.MarkdownSourcePath)
		}
	}

	if cfg.IngestSchedule != "" {
		scheduler := schedule.NewCronScheduler()
		if err := scheduler.AddJob(schedule.NewIngestJob(services.Content, false), cfg.IngestSchedule); err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	router := http.NewRouter(&http.Deps{
		ChatService:    services.Chat,
		ContentService: services.Content,
		VectorStore:    store,
		Collection:     cfg.QdrantCollection,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &nethttp.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		slog.Debug("Chat configuration", "provider", cfg.ChatProvider, "model", cfg.ChatModel, "max_tokens", cfg.MaxTokens)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
