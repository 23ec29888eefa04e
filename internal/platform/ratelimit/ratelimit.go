// Package ratelimit counts requests per client in fixed windows stored in
// Redis and rejects clients that exceed the limit.
package ratelimit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Counter increments a per-key counter in the fixed window containing now.
// *cache.Cache implements it.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration, now time.Time) (int64, time.Duration, error)
}

// RedisLimiter is a fixed-window limiter: one counter increment per request
// on a key named after the client and the window start.
type RedisLimiter struct {
	counter Counter
	max     int
	window  time.Duration
	now     func() time.Time
}

// NewRedisLimiter allows limit requests per client in each window.
func NewRedisLimiter(counter Counter, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{counter: counter, max: limit, window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	count, resetIn, err := l.counter.IncrWindow(ctx, "ratelimit:"+key, l.window, l.now())
	if err != nil {
		return Result{}, err
	}
	return Result{
		Allowed:   int(count) <= l.max,
		Remaining: max(l.max-int(count), 0),
		ResetIn:   resetIn,
	}, nil
}

// Config configures Middleware.
type Config struct {
	Limiter Limiter
	Max     int
	Window  time.Duration
	// Key identifies the client. Default: ClientIP.
	Key func(*http.Request) string
}

// Middleware rejects requests over the limit with 429. Limiter errors let
// the request through.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	key := cfg.Key
	if key == nil {
		key = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), key(r))
			if err != nil {
				slog.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				secs := int(res.ResetIn.Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				writeTooManyRequests(w, cfg.Max, cfg.Window)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For address, or the host part of
// the connection's remote address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, limit int, window time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": "Too many requests, please try again later.",
		"error": map[string]any{
			"code": "TOO_MANY_REQUESTS",
			"details": map[string]any{
				"max":    limit,
				"window": window.Milliseconds(),
			},
		},
	})
}
