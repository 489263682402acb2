package apierr

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Stable codes emitted by the classifier. Domain failures may carry any
// other code.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternal           = "INTERNAL_ERROR"
)

// Fixed client-facing messages.
const (
	MsgValidationFailed = "Validation failed"
	MsgUnreadableBody   = "Request body is missing or malformed"
	MsgRouteNotFound    = "The requested resource was not found"
	MsgUnexpected       = "Unexpected error."
)

// Classification is the wire triple derived from a failure.
type Classification struct {
	Status  int
	Code    string
	Message string
}

// ServerError reports whether the classification belongs to the 5xx range.
func (c Classification) ServerError() bool {
	return c.Status >= http.StatusInternalServerError
}

// Unexpected is the classification of every failure the taxonomy does not
// recognise. The original error text is never part of it.
var Unexpected = Classification{
	Status:  http.StatusInternalServerError,
	Code:    CodeInternal,
	Message: MsgUnexpected,
}

// Classify maps err onto its Classification. Rules are matched in order and
// see through wrapping (errors.As); the first match wins. Classify is total:
// nil, unknown errors and malformed domain failures all map to Unexpected.
func Classify(err error) Classification {
	if err == nil {
		return Unexpected
	}

	var (
		domainErr   *Error
		bodyErr     *BodyValidationError
		constrErr   *ConstraintError
		headerErr   *MissingHeaderError
		paramErr    *MissingParameterError
		mismatchErr *TypeMismatchError
		unreadErr   *UnreadableBodyError
		routeErr    *RouteNotFoundError
		methodErr   *MethodNotAllowedError
	)

	switch {
	case errors.As(err, &domainErr):
		return classifyDomain(domainErr)

	case errors.As(err, &bodyErr):
		msg := MsgValidationFailed
		for _, f := range bodyErr.Fields {
			if f.Message != "" {
				msg = f.Message
				break
			}
		}
		return badRequest(CodeValidation, msg)

	case errors.As(err, &constrErr):
		msg := MsgValidationFailed
		if v, ok := firstViolation(constrErr.Violations); ok {
			msg = v.Message
		}
		return badRequest(CodeValidation, msg)

	case errors.As(err, &headerErr):
		return badRequest(CodeValidation, "Missing required header: "+headerErr.Name)

	case errors.As(err, &paramErr):
		return badRequest(CodeValidation, "Required parameter '"+paramErr.Name+"' is missing")

	case errors.As(err, &mismatchErr):
		return badRequest(CodeValidation,
			"Parameter '"+mismatchErr.Name+"' must be of type "+orUnknown(mismatchErr.Type))

	case errors.As(err, &unreadErr):
		return badRequest(CodeInvalidRequestBody, MsgUnreadableBody)

	case errors.As(err, &routeErr):
		return Classification{Status: http.StatusNotFound, Code: CodeNotFound, Message: MsgRouteNotFound}

	case errors.As(err, &methodErr):
		msg := "Method '" + methodErr.Method + "' is not supported. Supported: " + formatAllowed(methodErr.Allowed)
		return Classification{Status: http.StatusMethodNotAllowed, Code: CodeMethodNotAllowed, Message: msg}
	}

	return Unexpected
}

func classifyDomain(e *Error) Classification {
	// A nil or out-of-range domain failure is a programming error.
	if e == nil || e.Status < 400 || e.Status > 599 || e.Code == "" || e.Message == "" {
		return Unexpected
	}
	return Classification{Status: e.Status, Code: e.Code, Message: e.Message}
}

func badRequest(code, msg string) Classification {
	return Classification{Status: http.StatusBadRequest, Code: code, Message: msg}
}

// firstViolation picks the smallest violation by (Param, Message) so the
// choice does not depend on the order in which violations were collected.
func firstViolation(vs []Violation) (Violation, bool) {
	var (
		best  Violation
		found bool
	)
	for _, v := range vs {
		if v.Message == "" {
			continue
		}
		if !found || v.Param < best.Param || (v.Param == best.Param && v.Message < best.Message) {
			best, found = v, true
		}
	}
	return best, found
}

// formatAllowed renders the supported method set as "[GET, PUT]", or
// "unknown" when the set is not known.
func formatAllowed(methods []string) string {
	if methods == nil {
		return "unknown"
	}
	seen := make(map[string]struct{}, len(methods))
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return "[" + strings.Join(out, ", ") + "]"
}
