package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/forgo/jobs/api/internal/model"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, resetTime time.Time, err error)
	Limit() int
}

// RateLimiter counts requests per key in fixed windows held in process
// memory. It allows the same traffic as RedisRateLimiter.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*counter
	rate     int           // Requests per window
	window   time.Duration // Window length
	cleanup  time.Duration // Cleanup interval for expired windows
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

type counter struct {
	count int
	start time.Time
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int           // Requests per window (default 100)
	Window  time.Duration // Time window (default 15 minutes)
	Cleanup time.Duration // Cleanup interval (default 5 minutes)
}

func (cfg *RateLimitConfig) applyDefaults() {
	if cfg.Rate <= 0 {
		cfg.Rate = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = 5 * time.Minute
	}
}

// NewRateLimiter creates a new in-memory rate limiter
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	cfg.applyDefaults()

	rl := &RateLimiter{
		windows:  make(map[string]*counter),
		rate:     cfg.Rate,
		window:   cfg.Window,
		cleanup:  cfg.Cleanup,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the rate limiter cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// Limit returns the number of requests allowed per window
func (rl *RateLimiter) Limit() int {
	return rl.rate
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupExpired()
		case <-rl.stopChan:
			return
		}
	}
}

func (rl *RateLimiter) cleanupExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, w := range rl.windows {
		if !w.start.After(cutoff) {
			delete(rl.windows, key)
		}
	}
}

// Allow counts a request against the key's current window. A window opens
// on the first request and closes a full window length later.
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, int, time.Time, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.windows[key]
	if !exists || now.Sub(w.start) >= rl.window {
		w = &counter{start: now}
		rl.windows[key] = w
	}

	reset := w.start.Add(rl.window)
	if w.count >= rl.rate {
		return false, 0, reset, nil
	}

	w.count++
	return true, rl.rate - w.count, reset, nil
}

// RedisRateLimiter counts requests in fixed windows shared by every
// instance pointing at the same Redis.
type RedisRateLimiter struct {
	client *redis.Client
	rate   int
	window time.Duration
	prefix string
}

// NewRedisRateLimiter creates a Redis-backed rate limiter
func NewRedisRateLimiter(client *redis.Client, cfg RateLimitConfig) *RedisRateLimiter {
	cfg.applyDefaults()
	return &RedisRateLimiter{
		client: client,
		rate:   cfg.Rate,
		window: cfg.Window,
		prefix: "ratelimit:",
	}
}

// Limit returns the number of requests allowed per window
func (rl *RedisRateLimiter) Limit() int {
	return rl.rate
}

// Allow increments the key's counter for the current window
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	redisKey := rl.prefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rl.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit counter: %w", err)
	}

	left := ttl.Val()

	// First hit of a window, or a counter left without expiry
	if incr.Val() == 1 || left <= 0 {
		if err := rl.client.PExpire(ctx, redisKey, rl.window).Err(); err != nil {
			return false, 0, time.Time{}, fmt.Errorf("rate limit expiry: %w", err)
		}
		left = rl.window
	}

	count := int(incr.Val())
	reset := time.Now().Add(left)

	remaining := rl.rate - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.rate, remaining, reset, nil
}

// RateLimit returns a middleware that limits requests per client address.
// If the limiter itself fails the request is let through.
func RateLimit(limiter Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetClientIP(r)

			allowed, remaining, resetTime, err := limiter.Allow(r.Context(), key)
			if err != nil {
				slog.Warn("rate limiter unavailable", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				retryAfter := int(time.Until(resetTime).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				model.NewRateLimitError(retryAfter).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
