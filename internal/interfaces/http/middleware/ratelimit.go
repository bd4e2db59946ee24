package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitConfig holds configuration for the per-client rate limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate per client.
	RequestsPerSecond float64

	// BurstSize is the maximum burst above the sustained rate.
	BurstSize int

	// SkipPaths bypass rate limiting entirely.
	SkipPaths []string

	// CleanupInterval is how often idle client buckets are dropped.
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns the production rate limit configuration.
func DefaultRateLimitConfig(rps int) RateLimitConfig {
	if rps <= 0 {
		rps = 10
	}
	return RateLimitConfig{
		RequestsPerSecond: float64(rps),
		BurstSize:         rps * 2,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		CleanupInterval:   5 * time.Minute,
	}
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimiter is a token bucket limiter keyed by client IP.  chi's RealIP
// middleware runs first, so RemoteAddr already reflects X-Forwarded-For.
type RateLimiter struct {
	cfg     RateLimitConfig
	buckets map[string]*tokenBucket
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter builds a limiter and starts its cleanup loop.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	l := &RateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*tokenBucket),
		stop:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow reports whether one request from key may proceed, and how many
// requests remain in the current burst window.
func (l *RateLimiter) Allow(key string) (bool, int) {
	now := time.Now()

	l.mu.RLock()
	bucket, ok := l.buckets[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		bucket, ok = l.buckets[key]
		if !ok {
			bucket = &tokenBucket{tokens: float64(l.cfg.BurstSize), lastRefill: now}
			l.buckets[key] = bucket
		}
		l.mu.Unlock()
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.tokens += now.Sub(bucket.lastRefill).Seconds() * l.cfg.RequestsPerSecond
	if bucket.tokens > float64(l.cfg.BurstSize) {
		bucket.tokens = float64(l.cfg.BurstSize)
	}
	bucket.lastRefill = now

	if bucket.tokens < 1 {
		return false, 0
	}
	bucket.tokens--
	return true, int(bucket.tokens)
}

func (l *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

func (l *RateLimiter) cleanup() {
	threshold := time.Now().Add(-l.cfg.CleanupInterval)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		bucket.mu.Lock()
		idle := bucket.lastRefill.Before(threshold)
		bucket.mu.Unlock()
		if idle {
			delete(l.buckets, key)
		}
	}
}

// Stop terminates the cleanup loop.
func (l *RateLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Handler returns the rate limiting middleware.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	skip := make(map[string]bool, len(l.cfg.SkipPaths))
	for _, p := range l.cfg.SkipPaths {
		skip[p] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skip[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		allowed, remaining := l.Allow(host)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.BurstSize))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			w.Header().Set("Retry-After", "1")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":"COMMON_007","message":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
