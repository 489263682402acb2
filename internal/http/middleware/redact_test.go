package middleware

import (
	"net/http"
	"testing"
)

func TestRedactor_Scrub(t *testing.T) {
	red := NewRedactor(RedactOptions{})

	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"page=1&limit=100", "page=1&limit=100"},
		{"email=a.b@example.com", "email=[REDACTED:email]"},
		{"card=4111111111111111", "card=[REDACTED:card]"},
		{"card=4111 1111 1111 1111", "card=[REDACTED:card]"},
		{"page=500000000000000000&limit=20", "page=500000000000000000&limit=20"},
		{"acct=12345678", "acct=[REDACTED:account]"},
		{"id=123e4567-e89b-12d3-a456-426614174000", "id=[REDACTED:id]"},
		{"iban=GB82WEST12345698765432", "iban=[REDACTED:iban]"},
		{"Bearer tok123", "Bearer [REDACTED]"},
		{"call 212-555-1212", "call [REDACTED:phone]"},
	}
	for _, tc := range cases {
		if got := red.Scrub(tc.in); got != tc.want {
			t.Errorf("Scrub(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLuhn(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"4111111111111111", true},
		{"5500-0000-0000-0004", true},
		{"4111111111111112", false},
		{"500000000000000000", false},
		{"0000000000", false},
	}
	for _, tc := range cases {
		if got := luhn(tc.in); got != tc.want {
			t.Errorf("luhn(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRedactor_Headers(t *testing.T) {
	red := NewRedactor(RedactOptions{MaskHeaders: []string{" X-Api-Key ", ""}})

	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Cookie", "sid=1")
	h.Set("X-Api-Key", "k")
	h.Set(HeaderIdempotencyKey, "idem-1")
	h.Set("X-Note", "mail x@y.io")
	h.Add("Accept", "application/json")
	h.Add("Accept", "text/plain")

	got := red.Headers(h)
	for _, k := range []string{"Authorization", "Cookie", "X-Api-Key", HeaderIdempotencyKey} {
		if got[k] != "[REDACTED]" {
			t.Errorf("%s not masked: %q", k, got[k])
		}
	}
	if got["X-Note"] != "mail [REDACTED:email]" {
		t.Errorf("X-Note not scrubbed: %q", got["X-Note"])
	}
	if got["Accept"] != "application/json, text/plain" {
		t.Errorf("Accept not joined: %q", got["Accept"])
	}
}

func TestRedactor_ZeroValueMasksCredentials(t *testing.T) {
	var red Redactor
	h := http.Header{}
	h.Set("Authorization", "Bearer x")
	h.Set("X-Other", "v")

	got := red.Headers(h)
	if got["Authorization"] != "[REDACTED]" || got["X-Other"] != "v" {
		t.Fatalf("unexpected headers: %v", got)
	}
}
