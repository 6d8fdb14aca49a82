package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/geeddi-ai/geeddi-server/internal/platform/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildRouter(t *testing.T) {
	cfg := &config.Config{}
	cfg.AI.Google.APIKey = "g-key"
	cfg.AI.OpenAI.APIKey = "o-key"

	router := buildRouter(cfg)
	if !router.HasProvider() {
		t.Fatal("router should have providers registered")
	}

	empty := buildRouter(&config.Config{})
	if empty.HasProvider() {
		t.Fatal("router should be empty without API keys")
	}
}

func TestBuildFeedbackStore_MemoryDefault(t *testing.T) {
	cfg := &config.Config{}
	cfg.Feedback.Driver = "memory"

	store, ready, cleanup, err := buildFeedbackStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildFeedbackStore() error = %v", err)
	}
	defer cleanup()

	if store == nil {
		t.Fatal("store is nil")
	}
	if len(ready) != 0 {
		t.Errorf("memory store needs no readiness checks, got %v", ready)
	}
}
