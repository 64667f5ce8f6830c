package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig sets the sustained rate and the burst headroom granted
// to each client key.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 100, BurstSize: 200}
}

// limiter is a token bucket: level refills continuously at perSec up to
// capacity, and each request spends one token.
type limiter struct {
	mu       sync.Mutex
	level    float64
	capacity float64
	perSec   float64
	refilled time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{
		level:    float64(cfg.BurstSize),
		capacity: float64(cfg.BurstSize),
		perSec:   cfg.RequestsPerSecond,
		refilled: time.Now(),
	}
}

func (l *limiter) allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.level += now.Sub(l.refilled).Seconds() * l.perSec
	if l.level > l.capacity {
		l.level = l.capacity
	}
	l.refilled = now

	if l.level < 1 {
		return false
	}
	l.level--
	return true
}

// retryAfter estimates the whole seconds until the next token arrives.
func (l *limiter) retryAfter() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.perSec <= 0 {
		return 1
	}
	return int((1-l.level)/l.perSec) + 1
}

type limiterSet struct {
	mu   sync.RWMutex
	byID map[string]*limiter
	cfg  RateLimitConfig
}

func newLimiterSet(cfg RateLimitConfig) *limiterSet {
	return &limiterSet{byID: make(map[string]*limiter), cfg: cfg}
}

func (s *limiterSet) get(key string) *limiter {
	s.mu.RLock()
	l, ok := s.byID[key]
	s.mu.RUnlock()
	if ok {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.byID[key]; ok {
		return l
	}
	l = newLimiter(s.cfg)
	s.byID[key] = l
	return l
}

// clientKey buckets requests by resolved tenant and source address, so
// one noisy clinic cannot starve the others.
func clientKey(c echo.Context) string {
	key := c.RealIP()
	if tenant, ok := c.Get("tenant_id").(string); ok && tenant != "" {
		key = tenant + ":" + key
	}
	return key
}

// RateLimit rejects requests over the configured rate with 429 and a
// Retry-After hint.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	set := newLimiterSet(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := set.get(clientKey(c))

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limitHeader)
			if !l.allow() {
				h.Set("Retry-After", strconv.Itoa(l.retryAfter()))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
