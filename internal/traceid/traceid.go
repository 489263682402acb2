// Package traceid carries the per-request correlation identifier that is
// echoed in every error envelope and log record.
//
// The identifier is bound once per request by the HTTP middleware and can be
// read from anywhere on the request path through the request context (or the
// Gin context, under the "traceId" key). Reads never fail: when no identifier
// is bound the sentinel "N/A" is returned.
package traceid

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Key is the Gin context key under which the trace id is stored.
	Key = "traceId"
	// Missing is returned when no trace id is bound to the request.
	Missing = "N/A"
)

type ctxKey struct{}

// WithTraceID returns a copy of ctx carrying id. Blank ids are not bound.
func WithTraceID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the trace id bound to ctx, or Missing.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return Missing
	}
	if s, ok := ctx.Value(ctxKey{}).(string); ok && s != "" {
		return s
	}
	return Missing
}

// FromGin returns the trace id for the request behind c. The Gin context key
// wins over the request context; Missing is returned when neither is set.
func FromGin(c *gin.Context) string {
	if c == nil {
		return Missing
	}
	if v, ok := c.Get(Key); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request != nil {
		return FromContext(c.Request.Context())
	}
	return Missing
}

// New returns a fresh 32-character lowercase hex identifier.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
