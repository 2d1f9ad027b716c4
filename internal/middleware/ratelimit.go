package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"netopscore/internal/apperrors"
)

// tokenBucket implements a simple per-key token-bucket rate limiter.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func newTokenBucket(ratePerSecond float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: ratePerSecond,
		lastRefill: time.Now(),
	}
}

func (b *tokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// LoginRateLimiter gates POST /login by client IP, keyed independently
// per IP so one abusive client cannot lock everyone else out.
type LoginRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

// NewLoginRateLimiter builds an empty per-client-IP limiter. Its
// arguments are not used: the rate and burst applied are the ones
// passed to Middleware.
func NewLoginRateLimiter(ratePerSecond float64, burst int) *LoginRateLimiter {
	return &LoginRateLimiter{buckets: make(map[string]*tokenBucket)}
}

// Middleware returns an echo middleware enforcing the limiter.
func (l *LoginRateLimiter) Middleware(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			l.mu.Lock()
			bucket, ok := l.buckets[ip]
			if !ok {
				bucket = newTokenBucket(ratePerSecond, burst)
				l.buckets[ip] = bucket
			}
			l.mu.Unlock()

			if !bucket.Allow() {
				return apperrors.Conflict("RATE_LIMITED", "too many login attempts, try again later")
			}
			return next(c)
		}
	}
}
