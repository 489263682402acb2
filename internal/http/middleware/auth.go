// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. The token is resolved to
// a user id by an injected TokenResolver; the middleware itself only parses
// the header and stores the result under the "userID" Gin key.
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-wallet-backend/internal/apierr"
)

const (
	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"
	// userIDKey is the Gin context key holding the authenticated user id.
	userIDKey = "userID"
)

// ErrMalformedAuthorization is returned for an Authorization header that is
// not of the form "Bearer <token>".
var ErrMalformedAuthorization = apierr.New(401, "INVALID_TOKEN", "Authorization header must be a Bearer token")

// TokenResolver maps a bearer token to the owning user id. Implementations
// return a domain failure (e.g. 401 INVALID_TOKEN) for unknown tokens.
type TokenResolver func(ctx context.Context, token string) (userID string, err error)

// BearerAuth authenticates the request.
//
//   - header absent:         MissingHeaderError("Authorization")
//   - header not "Bearer x": ErrMalformedAuthorization
//   - resolver error:        forwarded as-is
//
// Failures are written through WriteError and abort the chain.
func BearerAuth(resolve TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderAuthorization))
		if raw == "" {
			WriteError(c, &apierr.MissingHeaderError{Name: HeaderAuthorization})
			return
		}

		scheme, token, ok := strings.Cut(raw, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			WriteError(c, ErrMalformedAuthorization)
			return
		}

		uid, err := resolve(c.Request.Context(), token)
		if err != nil {
			WriteError(c, err)
			return
		}

		c.Set(userIDKey, uid)
		c.Next()
	}
}

// UserID returns the authenticated user id stored by BearerAuth.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}
