package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-classroom/internal/platform/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Storage:   config.StorageConfig{Driver: "memory"},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Auth:      config.AuthConfig{JWTSecret: "test-secret", JWTIssuer: "pai-classroom"},
		Generator: config.GeneratorConfig{MaxCount: 100, Seed: 1},
	}
}

func TestHealthEndpoints(t *testing.T) {
	handler, cleanup, err := newHandler(t.Context(), memoryConfig())
	if err != nil {
		t.Fatalf("newHandler() error = %v", err)
	}
	defer cleanup()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "problem index is public",
			path:       "/api/problems",
			wantStatus: http.StatusOK,
		},
		{
			name:       "task routes need a token",
			path:       "/api/classes/ABC123/tasks",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && strings.TrimSpace(rec.Body.String()) != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestNewHandler_BadCatalog(t *testing.T) {
	cfg := memoryConfig()
	cfg.CatalogPath = t.TempDir() + "/missing.yaml"

	if _, _, err := newHandler(t.Context(), cfg); err == nil {
		t.Fatal("newHandler() error = nil, want catalog error")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(config.LogConfig{Level: tt.level, Format: "json"})
			if !logger.Enabled(t.Context(), tt.want) {
				t.Errorf("level %v disabled", tt.want)
			}
			if tt.want > slog.LevelDebug && logger.Enabled(t.Context(), tt.want-1) {
				t.Errorf("level below %v enabled", tt.want)
			}
		})
	}
}
