// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/brodal/ratatosk/internal/api"
	"github.com/brodal/ratatosk/internal/graph"
	"github.com/brodal/ratatosk/internal/search"
	"github.com/brodal/ratatosk/internal/share"
	"github.com/brodal/ratatosk/internal/sse"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.Graph.SQLitePath),
		slog.Bool("watch_db", cfg.Graph.WatchDB),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Open the note graph database.
	store, err := graph.Open(cfg.Graph.SQLitePath)
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()

	// SSE broker for graph lifecycle events.
	broker := sse.NewBroker(2 * time.Second)

	// Load the initial snapshot; later reloads are announced over SSE.
	var cache *graph.Cache
	cache, err = graph.NewCache(store, func() {
		broker.PublishReloaded(cache.Snapshot().NoteCount())
	})
	if err != nil {
		return fmt.Errorf("load graph snapshot: %w", err)
	}

	logger.Info("Graph snapshot loaded", slog.Int("notes", cache.Snapshot().NoteCount()))

	// Build search service and routers.
	svc := search.NewService(cache)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)
	shareRouter := share.NewRouter(svc)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Internal API under /api, public share API under /share/api.
	r.Mount("/api", apiRouter)
	r.Mount("/share/api", shareRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the SQLite file for external writers.
	if cfg.Graph.WatchDB {
		g.Go(func() error {
			if err := graph.Watch(gCtx, cache, cfg.Graph.SQLitePath, logger, broker.PublishStale); err != nil {
				logger.Warn("db watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		broker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
