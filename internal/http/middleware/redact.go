// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the scrubbing applied to request metadata before it
// reaches the access log. Bodies are never logged; query strings and header
// values are passed through a Redactor that masks banking identifiers and
// common PII, and credential headers are replaced entirely.
package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// RedactOptions configures the access-log scrubber.
//
// MaskHeaders adds header names whose values are replaced with "[REDACTED]".
// Matching is case-insensitive and merged with Authorization, Cookie,
// Set-Cookie and Idempotency-Key.
type RedactOptions struct {
	MaskHeaders []string
}

// Order matters: UUIDs and IBANs contain digit runs the looser account and
// phone patterns would otherwise split.
var (
	uuidRE    = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	ibanRE    = regexp.MustCompile(`\b[A-Z]{2}\d{2}(?:[ ]?[A-Z0-9]{4}){2,7}(?:[ ]?[A-Z0-9]{1,4})?\b`)
	emailRE   = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	bearerRE  = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/\-]+=*`)
	panRE     = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
	accountRE = regexp.MustCompile(`\b\d{8,11}\b`)
	phoneRE   = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// Redactor scrubs strings and headers for logging. The zero value masks only
// the built-in headers.
type Redactor struct {
	maskHeaders map[string]struct{}
}

// NewRedactor builds a Redactor from opts.
func NewRedactor(opts RedactOptions) *Redactor {
	mh := map[string]struct{}{
		"authorization":                       {},
		"cookie":                              {},
		"set-cookie":                          {},
		strings.ToLower(HeaderIdempotencyKey): {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			mh[h] = struct{}{}
		}
	}
	return &Redactor{maskHeaders: mh}
}

// Scrub masks identifiers inside s.
func (r *Redactor) Scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = ibanRE.ReplaceAllString(s, "[REDACTED:iban]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	s = bearerRE.ReplaceAllString(s, "Bearer [REDACTED]")
	s = panRE.ReplaceAllStringFunc(s, func(m string) string {
		if luhn(m) {
			return "[REDACTED:card]"
		}
		return m
	})
	s = accountRE.ReplaceAllString(s, "[REDACTED:account]")
	s = phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// luhn reports whether the digits of s form a 13 to 19 digit number with a
// valid Luhn checksum. Separators are ignored.
func luhn(s string) bool {
	sum, n := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			continue
		}
		d := int(c - '0')
		if n%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		n++
	}
	return n >= 13 && n <= 19 && sum%10 == 0
}

// Headers returns a flattened, scrubbed copy of h.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if r.masked(k) {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.Scrub(strings.Join(vv, ", "))
	}
	return out
}

func (r *Redactor) masked(name string) bool {
	if r == nil || r.maskHeaders == nil {
		switch strings.ToLower(name) {
		case "authorization", "cookie", "set-cookie":
			return true
		}
		return false
	}
	_, ok := r.maskHeaders[strings.ToLower(name)]
	return ok
}
