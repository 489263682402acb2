// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides trace id binding, structured request logging, and a
// panic-safe recovery handler:
//
//   - TraceID() binds a per-request correlation id (inherited from the
//     inbound trace header, the active OpenTelemetry span, or freshly
//     generated) under the "traceId" key and in the request context.
//   - Logger() emits a scrubbed structured access log and attaches a
//     request-scoped zerolog.Logger that carries the trace id.
//   - Recovery() converts panics into Unexpected failures that go through the
//     same error envelope as every other failure.
//   - LoggerFrom() retrieves the request-scoped logger.
//
// Recommended order: TraceID(), Logger(opts), ErrorHandler(), Recovery().
package middleware

import (
	"fmt"
	"regexp"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-wallet-backend/internal/traceid"
)

const (
	// DefaultTraceHeader is the header used to inherit and echo the trace id.
	DefaultTraceHeader = "X-Trace-ID"
	// loggerKey is the Gin context key of the request-scoped logger.
	loggerKey = "logger"
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
	// maxInboundTraceLen caps inherited trace ids.
	maxInboundTraceLen = 128
)

// inboundTraceRE accepts opaque ids made of token characters only, so a
// client cannot inject log or header syntax through the trace header.
var inboundTraceRE = regexp.MustCompile(`^[A-Za-z0-9._\-:]+$`)

// TraceID binds the trace id for the request.
//
// Resolution order:
//  1. the inbound header (if it is a safe token of at most 128 bytes)
//  2. the trace id of the active OpenTelemetry span (when otelgin runs first)
//  3. a new 32-hex id
//
// The id is stored under traceid.Key, in the request context, and echoed in
// the response header. An empty header name falls back to DefaultTraceHeader.
func TraceID(header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultTraceHeader
	}
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if len(id) > maxInboundTraceLen || !inboundTraceRE.MatchString(id) {
			id = ""
		}
		if id == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				id = sc.TraceID().String()
			}
		}
		if id == "" {
			id = traceid.New()
		}

		c.Set(traceid.Key, id)
		c.Request = c.Request.WithContext(traceid.WithTraceID(c.Request.Context(), id))
		c.Writer.Header().Set(header, id)
		c.Next()
	}
}

// Logger writes a structured access log for each request and response and
// stores a request-scoped logger in the Gin context.
//
// The query string and request headers pass through a Redactor built from
// opts; bodies are never logged. Level is chosen by outcome: error for 5xx,
// warn for 4xx, info otherwise.
func Logger(opts RedactOptions) gin.HandlerFunc {
	red := NewRedactor(opts)
	return func(c *gin.Context) {
		start := time.Now()
		headers := red.Headers(c.Request.Header)

		path := c.FullPath()
		if path == "" {
			// Fallback when route not matched / 404.
			path = c.Request.URL.Path
		}

		// The scoped logger only carries request identity; method and path
		// are added per record so they are never duplicated.
		l := log.With().
			Str("trace_id", traceid.FromGin(c)).
			Str("remote_ip", c.ClientIP()).
			Logger()

		c.Set(loggerKey, &l)

		c.Next()

		uid, _ := c.Get(userIDKey)
		ev := l.With().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", truncate(red.Scrub(c.Request.URL.RawQuery), maxQueryLogLength)).
			Str("user_agent", c.Request.UserAgent()).
			Interface("headers", headers).
			Str("user_id", asString(uid)).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		var e *zerolog.Event
		switch status := c.Writer.Status(); {
		case status >= 500:
			e = ev.Error()
		case status >= 400:
			e = ev.Warn()
		default:
			e = ev.Info()
		}
		if len(c.Errors) > 0 {
			e = e.Str("errors", c.Errors.String())
		}
		e.Msg("request")
	}
}

// Recovery intercepts panics and routes them through WriteError as
// Unexpected failures. The panic value and the goroutine stack travel with
// the failure so the ERROR record carries the full diagnostic trail; the
// client only sees the generic internal error message.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := &PanicError{Value: rec, Stack: debug.Stack()}
				if c.Writer.Written() {
					LoggerFrom(c).Error().
						Interface("panic", rec).
						Bytes("stack", err.Stack).
						Msg("panic recovered after response was written")
					c.Abort()
					return
				}
				WriteError(c, err)
			}
		}()
		c.Next()
	}
}

// PanicError is the failure raised by Recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap exposes an error panic value to errors.Is/As.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// LoggerFrom returns the request-scoped zerolog.Logger, or a copy of the
// global logger tagged with the trace id when Logger() did not run.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Str("trace_id", traceid.FromGin(c)).Logger()
	return &l
}

// withStack attaches a stack trace to err unless it already carries one.
func withStack(err error) error {
	type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
	var st stackTracer
	if pkgerrors.As(err, &st) {
		return err
	}
	return pkgerrors.WithStack(err)
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate returns s unchanged when within max length, otherwise it truncates
// s to max bytes and appends an ellipsis. A max <= 0 disables truncation.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
