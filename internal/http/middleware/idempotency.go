// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key support for mutating endpoints. The
// middleware validates the header, stashes the key, and asks an optional
// lookup whether (user, scope, key) already completed. Handlers decide how to
// serve a replay; the middleware only marks it.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-wallet-backend/internal/apierr"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// ErrInvalidIdempotencyKey is written for keys that are too long or contain
// characters outside the token alphabet.
var ErrInvalidIdempotencyKey = apierr.New(http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", "Idempotency-Key header is invalid")

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stored by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup found a completed request for the key.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyScope identifies the operation a key belongs to: the method and
// the concrete request path, so the same key on two payees never collides.
func IdempotencyScope(c *gin.Context) string {
	return c.Request.Method + " " + c.Request.URL.Path
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Nil uses ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a still-valid result exists for
// (userID, scope, key) at now. Errors are treated as a miss.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates and stashes the Idempotency-Key header.
//
//   - header absent:  no-op
//   - header invalid: ErrInvalidIdempotencyKey through WriteError
//   - lookup hit:     replay and rate-bypass flags are set
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			WriteError(c, ErrInvalidIdempotencyKey)
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			uid, _ := UserID(c)
			exists, err := lookup(c.Request.Context(), uid, IdempotencyScope(c), key, time.Now().UTC())
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			}
			if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
