// Pathway Advisor - learner intake and study-plan server
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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/aztecedu/pathway-advisor/internal/advisor"
	"github.com/aztecedu/pathway-advisor/internal/api"
	"github.com/aztecedu/pathway-advisor/internal/catalog"
	"github.com/aztecedu/pathway-advisor/internal/config"
	"github.com/aztecedu/pathway-advisor/internal/identity"
	"github.com/aztecedu/pathway-advisor/internal/intake"
	"github.com/aztecedu/pathway-advisor/internal/llm"
	"github.com/aztecedu/pathway-advisor/internal/middleware"
	"github.com/aztecedu/pathway-advisor/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "followup_mode", cfg.FollowupMode, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	var cat *catalog.Catalog
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			slog.Error("Failed to load lesson catalog", "path", cfg.CatalogPath, "error", err)
			os.Exit(1)
		}
		slog.Info("Lesson catalog loaded", "path", cfg.CatalogPath, "lessons", cat.Len())
	} else {
		slog.Info("No catalog configured, plans use fallback lesson names")
	}

	llmCfg := llm.Config{
		Enabled:       cfg.LLM.Enabled,
		Endpoint:      cfg.LLM.Endpoint,
		Model:         cfg.LLM.Model,
		FallbackModel: cfg.LLM.FallbackModel,
		Timeout:       cfg.LLM.Timeout,
		MaxRetries:    cfg.LLM.MaxRetries,
	}
	llmClient := llm.NewClient(llmCfg)
	if cfg.LLM.Enabled {
		if llmClient.Available(context.Background()) {
			slog.Info("Generative backend reachable", "endpoint", cfg.LLM.Endpoint, "model", cfg.LLM.Model)
		} else {
			slog.Warn("Generative backend unreachable, replies use deterministic fallbacks",
				"endpoint", cfg.LLM.Endpoint)
		}
	} else {
		slog.Info("Generative backend disabled, replies use deterministic fallbacks")
	}

	tlog, err := advisor.NewTranscriptLogger(advisor.TranscriptLogConfig{
		Enabled:   cfg.TranscriptLog.Enabled,
		Dir:       cfg.TranscriptLog.Dir,
		QueueSize: cfg.TranscriptLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := tlog.Close(); closeErr != nil {
			slog.Error("Failed to close transcript logger", "error", closeErr)
		}
	}()

	// Initialize services.
	svc := advisor.NewService(
		intake.FollowupMode(cfg.FollowupMode),
		llmClient,
		llmCfg,
		advisor.CatalogFinder{Catalog: cat},
		repo,
		tlog,
		logger,
	)

	// Initialize handlers.
	limiter := api.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	baseHandler := api.NewHandler(svc, repo, cat, limiter)
	healthHandler := api.NewHealthHandler(repo, llmClient)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	healthHandler.RegisterHealth(r)
	baseHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
