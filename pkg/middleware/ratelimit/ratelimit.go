// Package ratelimit throttles clients with per-key token buckets.
package ratelimit

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/freightdesk/backoffice/pkg/controller"
)

// RetryAfterSeconds is sent in the Retry-After header of rejected requests.
const RetryAfterSeconds = "1"

// RateLimiter decides whether a request for key may proceed.
// Implementations must be safe for concurrent use.
type RateLimiter interface {
	Allow(key string) bool
}

// TokenBucketLimiter keeps one token bucket per key. Buckets refill at the
// configured rate and hold at most burst tokens.
type TokenBucketLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewTokenBucketLimiter creates a limiter allowing requestsPerSecond on
// average with bursts of up to burst requests per key.
func NewTokenBucketLimiter(requestsPerSecond float64, burst int) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

// Allow implements RateLimiter.
func (l *TokenBucketLimiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

func (l *TokenBucketLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	return limiter.(*rate.Limiter)
}

// KeyFunc extracts the rate limiting key from a request.
type KeyFunc func(*gin.Context) string

// ByClientIP keys requests by gin's client IP, which honors the engine's
// trusted proxy settings.
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit rejects requests over the limit with 429 and a Retry-After
// header. A nil keyFunc keys by client IP.
func RateLimit(limiter RateLimiter, keyFunc KeyFunc) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = ByClientIP
	}
	return func(c *gin.Context) {
		if !limiter.Allow(keyFunc(c)) {
			c.Header("Retry-After", RetryAfterSeconds)
			controller.Error(c, controller.NewTooManyRequestsError("rate limit exceeded"))
			return
		}
		c.Next()
	}
}
