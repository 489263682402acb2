// Package apierr defines the failure taxonomy of the public API, the
// classifier that maps any failure onto a stable (status, code, message)
// triple, and the JSON envelope written for every error response.
//
// Handlers and middleware never build error bodies themselves: they raise one
// of the types below (or any other error) and let the HTTP error middleware
// classify and emit it.
//
// Example response:
//
//	HTTP/1.1 401 Unauthorized
//	{
//	  "error": {
//	    "status": 401,
//	    "code": "INVALID_CREDENTIALS",
//	    "message": "Invalid userId or pin",
//	    "traceId": "abc123def456"
//	  }
//	}
package apierr

import (
	"fmt"
	"strings"
)

// Error is an application-raised failure that already carries its wire
// classification. Status, Code and Message are forwarded to the client
// verbatim, so Message must be safe to expose.
type Error struct {
	Status  int
	Code    string
	Message string
	// Cause is logged for 5xx statuses and never sent to the client.
	Cause error
}

// New returns a domain failure with the given wire triple.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap returns a domain failure that keeps cause for diagnostics.
func Wrap(cause error, status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Code, e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by status and code, so sentinel domain errors
// can be compared with errors.Is even after Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Status == t.Status && e.Code == t.Code
}

// FieldError is a single per-field message of a request body validation.
type FieldError struct {
	Field   string
	Message string
}

// BodyValidationError reports that a decoded request body failed validation.
// Fields keep the validator's encounter order.
type BodyValidationError struct {
	Fields []FieldError
}

func (e *BodyValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "body validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "body validation failed: " + strings.Join(parts, "; ")
}

// Violation is a constraint failure on a single scalar parameter.
type Violation struct {
	Param   string
	Message string
}

// ConstraintError reports constraint violations on query, path or header
// parameters.
type ConstraintError struct {
	Violations []Violation
}

func (e *ConstraintError) Error() string {
	if len(e.Violations) == 0 {
		return "constraint violation"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Param+": "+v.Message)
	}
	return "constraint violation: " + strings.Join(parts, "; ")
}

// MissingHeaderError reports an absent required request header.
type MissingHeaderError struct {
	Name string
}

func (e *MissingHeaderError) Error() string { return "missing header " + e.Name }

// MissingParameterError reports an absent required query parameter.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string { return "missing parameter " + e.Name }

// TypeMismatchError reports a parameter that could not be converted to its
// expected type. Type is a display name such as "Integer"; empty means unknown.
type TypeMismatchError struct {
	Name  string
	Type  string
	Value string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("parameter %s: cannot convert %q to %s", e.Name, e.Value, orUnknown(e.Type))
}

// UnreadableBodyError reports a missing or syntactically malformed body.
type UnreadableBodyError struct {
	Cause error
}

func (e *UnreadableBodyError) Error() string {
	if e.Cause == nil {
		return "unreadable body"
	}
	return "unreadable body: " + e.Cause.Error()
}

func (e *UnreadableBodyError) Unwrap() error { return e.Cause }

// RouteNotFoundError reports that no route matched the request path.
type RouteNotFoundError struct {
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string { return "no route for " + e.Method + " " + e.Path }

// MethodNotAllowedError reports a path that exists but not for Method.
// A nil Allowed means the supported set is unknown.
type MethodNotAllowedError struct {
	Method  string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return "method " + e.Method + " not allowed, supported: " + formatAllowed(e.Allowed)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
