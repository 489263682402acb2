// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file is the single exit point for failures. WriteError classifies a
// failure (apierr.Classify), logs it at the right severity, and writes the
// canonical error envelope. ErrorHandler dispatches failures that handlers
// attached with c.Error.
package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-wallet-backend/internal/apierr"
	"github.com/tbourn/go-wallet-backend/internal/traceid"
)

// apiErrors counts error envelopes by status and code. Codes come from a
// closed set plus the domain codes, so cardinality stays bounded.
var apiErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of error envelopes written, by status and code.",
	},
	[]string{"status", "code"},
)

// apiErrorEvent tags every failure record so it can be told apart from the
// access log.
const apiErrorEvent = "api_error"

func init() {
	prometheus.MustRegister(apiErrors)
}

// WriteError emits the error envelope for err and aborts the chain.
//
//   - status >= 500: ERROR record with the failure and its stack attached
//   - otherwise:     WARN record, no diagnostic trail
//
// Both records carry method, path, status and code; the record message is
// the envelope message. The response is
// application/json; charset=utf-8 and its status equals envelope.error.status.
// If a response was already written, only the log record is emitted.
func WriteError(c *gin.Context, err error) {
	cls := apierr.Classify(err)
	env := apierr.NewEnvelope(cls, traceid.FromGin(c))

	logFailure(c, cls, err)
	apiErrors.WithLabelValues(strconv.Itoa(cls.Status), cls.Code).Inc()

	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(cls.Status, env)
}

// ErrorHandler is the top-level failure dispatcher. After the chain runs, the
// last error attached with c.Error is written through WriteError unless a
// response has already been produced.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

func logFailure(c *gin.Context, cls apierr.Classification, err error) {
	lg := LoggerFrom(c)

	path := c.Request.URL.Path
	var ev *zerolog.Event
	if cls.ServerError() {
		ev = lg.Error().Stack().Err(withStack(err))
		var pe *PanicError
		if errors.As(err, &pe) {
			ev = ev.Interface("panic", pe.Value).Bytes("panic_stack", pe.Stack)
		}
	} else {
		ev = lg.Warn()
	}

	// The record's message is the client-facing message.
	ev.Str("event", apiErrorEvent).
		Str("method", c.Request.Method).
		Str("path", path).
		Int("status", cls.Status).
		Str("code", cls.Code).
		Msg(cls.Message)
}
