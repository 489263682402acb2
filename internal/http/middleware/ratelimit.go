// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory token-bucket rate limiter with per-caller
// buckets (golang.org/x/time/rate) and opportunistic eviction of idle buckets.
// It is process-local; horizontally scaled deployments need a shared limiter.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-wallet-backend/internal/apierr"
)

// ErrRateLimited is written when a caller exhausts its bucket.
var ErrRateLimited = apierr.New(http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Rate limit exceeded, retry later")

// KeyFunc selects the identity used to key a rate-limit bucket.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP prefers the authenticated user id and falls back to the
// client IP. Keys are prefixed so the two namespaces never collide.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if uid, ok := UserID(c); ok {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements a per-key token-bucket rate limiter. It is safe for
// concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    KeyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64
}

// NewRateLimiter constructs a RateLimiter. burst <= 0 is coerced to 1.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// getVisitor returns the limiter for key, creating it if absent. Every 5000
// lookups idle buckets are evicted; eviction runs before the requested bucket
// is touched so a stale bucket can be dropped even when it is the one asked for.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= 5000 {
		for k, vv := range rl.visitors {
			if now.Sub(vv.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay that must not consume tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler returns the limiting middleware. Denied requests get a Retry-After
// header (whole seconds, at least 1) and the ErrRateLimited envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		if rl.getVisitor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
		WriteError(c, ErrRateLimited)
	}
}

// retryAfterSeconds is the time to refill one token, rounded up.
func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.rps <= 0 {
		return 1
	}
	secs := int(math.Ceil(1 / float64(rl.rps)))
	if secs < 1 {
		return 1
	}
	return secs
}
