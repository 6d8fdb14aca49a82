package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/geeddi-ai/geeddi-server/internal/ai"
	"github.com/geeddi-ai/geeddi-server/internal/course"
	"github.com/geeddi-ai/geeddi-server/internal/feedback"
	"github.com/geeddi-ai/geeddi-server/internal/platform/cache"
	"github.com/geeddi-ai/geeddi-server/internal/platform/config"
	"github.com/geeddi-ai/geeddi-server/internal/platform/database"
	"github.com/geeddi-ai/geeddi-server/internal/server"
	"github.com/geeddi-ai/geeddi-server/internal/session"
	"github.com/geeddi-ai/geeddi-server/internal/topics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	router := buildRouter(cfg)
	generator, err := course.NewGenerator(course.GeneratorConfig{
		Completer:            router,
		CourseMaxTokens:      cfg.Generation.CourseMaxTokens,
		ExplanationMaxTokens: cfg.Generation.ExplanationMaxTokens,
	})
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	store, ready, cleanup, err := buildFeedbackStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if ready == nil {
		ready = make(map[string]server.ReadyCheck)
	}
	ready["ai"] = router.HealthCheck

	catalog, err := topics.NewCatalog(cfg.TopicsPath)
	if err != nil {
		return fmt.Errorf("loading topic catalog: %w", err)
	}

	manager, err := session.NewManager(session.ManagerConfig{
		Generator:  generator,
		StageDelay: cfg.Generation.StageDelay,
	})
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}

	srv, err := server.New(server.Config{
		Sessions: manager,
		Feedback: store,
		Topics:   catalog,
		Ready:    ready,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // websocket streams stay open
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setupLogger configures the default slog logger from config.
func setupLogger(cfg config.LogConfig) {
	level := parseLogLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildRouter assembles the AI provider chain. Google Gemini is primary,
// OpenAI the fallback.
func buildRouter(cfg *config.Config) *ai.Router {
	router := ai.NewRouter()

	if cfg.AI.Google.APIKey != "" {
		var opts []ai.GoogleOption
		if cfg.AI.Google.Model != "" {
			opts = append(opts, ai.WithGoogleModel(cfg.AI.Google.Model))
		}
		router.Register("google", ai.NewGoogleProvider(cfg.AI.Google.APIKey, opts...))
	}
	if cfg.AI.OpenAI.APIKey != "" {
		var opts []ai.OpenAIOption
		if cfg.AI.OpenAI.Model != "" {
			opts = append(opts, ai.WithModel(cfg.AI.OpenAI.Model))
		}
		router.Register("openai", ai.NewOpenAIProvider(cfg.AI.OpenAI.APIKey, opts...))
	}

	return router
}

// buildFeedbackStore creates the configured store along with its readiness
// checks and a cleanup function.
func buildFeedbackStore(ctx context.Context, cfg *config.Config) (feedback.Store, map[string]server.ReadyCheck, func(), error) {
	switch cfg.Feedback.Driver {
	case "redis":
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to cache: %w", err)
		}
		store := feedback.NewRedisStore(c.Client)
		ready := map[string]server.ReadyCheck{"cache": c.HealthCheck}
		return store, ready, func() { c.Close() }, nil

	case "postgres":
		db, err := database.New(ctx, database.Config{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		store, err := feedback.NewPostgresStore(db.Pool)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		ready := map[string]server.ReadyCheck{"database": db.HealthCheck}
		return store, ready, db.Close, nil

	default:
		return feedback.NewMemoryStore(), nil, func() {}, nil
	}
}
