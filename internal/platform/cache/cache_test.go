package cache

import (
	"testing"
)

func TestNew_RejectsBadURLs(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"not a url", "localhost listening on 6379"},
		{"wrong scheme", "http://localhost:6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(t.Context(), tt.url); err == nil {
				t.Errorf("New(%q) should fail before dialing", tt.url)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	if _, err := New(t.Context(), "redis://localhost:59999"); err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}
