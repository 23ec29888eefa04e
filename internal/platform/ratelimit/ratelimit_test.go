package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/p-n-ai/pai-classroom/internal/platform/cache"
)

type fakeLimiter struct {
	calls int
	limit int
	err   error
}

func (f *fakeLimiter) Allow(_ context.Context, _ string) (Result, error) {
	f.calls++
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{
		Allowed:   f.calls <= f.limit,
		Remaining: max(f.limit-f.calls, 0),
		ResetIn:   90 * time.Second,
	}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	limiter := &fakeLimiter{limit: 2}
	h := Middleware(Config{Limiter: limiter, Max: 2, Window: 5 * time.Minute})(okHandler())

	for i := 1; i <= 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/x", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/x", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "90" {
		t.Errorf("Retry-After = %q, want 90", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}

	var body struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Details struct {
				Max    int   `json:"max"`
				Window int64 `json:"window"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "error" || body.Error.Code != "TOO_MANY_REQUESTS" {
		t.Errorf("body = %+v", body)
	}
	if body.Error.Details.Max != 2 || body.Error.Details.Window != 300000 {
		t.Errorf("details = %+v, want max 2 window 300000ms", body.Error.Details)
	}
}

func TestMiddleware_FailsOpen(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("connection refused")}
	h := Middleware(Config{Limiter: limiter, Max: 1, Window: time.Minute})(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 when limiter fails", rec.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"remote addr", "", "10.0.0.7:51234", "10.0.0.7"},
		{"forwarded", "203.0.113.9, 10.0.0.1", "10.0.0.1:80", "203.0.113.9"},
		{"no port", "", "10.0.0.8", "10.0.0.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedisLimiter_Allow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := t.Context()
	ctr, err := testcontainers.Run(ctx, "redis:7-alpine",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("6379/tcp").WithStartupTimeout(60*time.Second)),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	endpoint, err := ctr.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}

	c, err := cache.New(ctx, "redis://"+endpoint)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })

	l := NewRedisLimiter(c, 3, time.Minute)
	fixed := time.Date(2026, 1, 1, 12, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	for i := 1; i <= 4; i++ {
		res, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if wantAllowed := i <= 3; res.Allowed != wantAllowed {
			t.Errorf("request %d Allowed = %v, want %v", i, res.Allowed, wantAllowed)
		}
		if res.ResetIn != 50*time.Second {
			t.Errorf("ResetIn = %v, want 50s", res.ResetIn)
		}
	}

	if res, _ := l.Allow(ctx, "10.0.0.2"); !res.Allowed || res.Remaining != 2 {
		t.Errorf("other client = %+v, want allowed with 2 remaining", res)
	}

	fixed = fixed.Add(time.Minute)
	if res, _ := l.Allow(ctx, "10.0.0.1"); !res.Allowed {
		t.Error("next window should reset the count")
	}
}

type memCounter struct {
	counts map[string]int64
}

func (m *memCounter) IncrWindow(_ context.Context, key string, window time.Duration, now time.Time) (int64, time.Duration, error) {
	start := now.Truncate(window)
	k := key + "@" + start.String()
	m.counts[k]++
	return m.counts[k], start.Add(window).Sub(now), nil
}

func TestRedisLimiter_Window(t *testing.T) {
	l := NewRedisLimiter(&memCounter{counts: map[string]int64{}}, 2, time.Minute)
	fixed := time.Date(2026, 1, 1, 12, 0, 45, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	want := []Result{
		{Allowed: true, Remaining: 1, ResetIn: 15 * time.Second},
		{Allowed: true, Remaining: 0, ResetIn: 15 * time.Second},
		{Allowed: false, Remaining: 0, ResetIn: 15 * time.Second},
	}
	for i, w := range want {
		got, err := l.Allow(t.Context(), "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if got != w {
			t.Errorf("request %d = %+v, want %+v", i+1, got, w)
		}
	}
}
