// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, a hardening middleware that attaches a
// conservative set of HTTP security headers for a JSON banking API running
// behind a reverse proxy. HSTS is opt-in and only sent over HTTPS; no-store
// keeps account data out of shared caches.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	EnableHSTS   bool          // set true only when traffic is HTTPS end-to-end
	HSTSMaxAge   time.Duration // defaults to 180 days
	NoStore      bool          // add Cache-Control: no-store
	EnablePolicy bool          // include Permissions-Policy and friends
	// ExposeHeaders are appended to Access-Control-Expose-Headers when the
	// response carries them, so browser clients can read the trace id.
	ExposeHeaders []string
}

// SecurityHeaders returns a Gin middleware that adds security headers to
// each response.
//
//   - always:        X-Content-Type-Options, X-Frame-Options, Referrer-Policy
//   - EnablePolicy:  Permissions-Policy, X-Permitted-Cross-Domain-Policies
//   - NoStore:       Cache-Control: no-store, Pragma, Expires
//   - EnableHSTS:    Strict-Transport-Security, HTTPS requests only
//
// Headers listed in ExposeHeaders (X-Trace-ID by default) are added to
// Access-Control-Expose-Headers without duplicating existing entries.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	expose := opt.ExposeHeaders
	if len(expose) == 0 {
		expose = []string{DefaultTraceHeader}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		for _, name := range expose {
			if h.Get(name) != "" {
				appendExposed(h, name)
			}
		}

		c.Next()
	}
}

// appendExposed adds name to Access-Control-Expose-Headers unless present.
func appendExposed(h http.Header, name string) {
	const hdr = "Access-Control-Expose-Headers"
	cur := h.Get(hdr)
	if cur == "" {
		h.Set(hdr, name)
		return
	}
	for _, p := range strings.Split(cur, ",") {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return
		}
	}
	h.Set(hdr, cur+", "+name)
}

// isHTTPS reports whether the request used HTTPS directly or via a proxy
// that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
