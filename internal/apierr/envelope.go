package apierr

import "github.com/tbourn/go-wallet-backend/internal/traceid"

// Body is the inner object of an error envelope.
type Body struct {
	// HTTP status, always equal to the response status
	Status int `json:"status" example:"401"`
	// Stable, machine-readable code
	Code string `json:"code" example:"INVALID_CREDENTIALS"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Invalid userId or pin"`
	// Request correlation id, "N/A" when none was bound
	TraceID string `json:"traceId" example:"abc123def456"`
}

// Envelope is the error body returned by every endpoint.
type Envelope struct {
	Error Body `json:"error"`
}

// NewEnvelope wraps a classification and trace id into the wire shape.
func NewEnvelope(c Classification, traceID string) Envelope {
	if traceID == "" {
		traceID = traceid.Missing
	}
	return Envelope{Error: Body{
		Status:  c.Status,
		Code:    c.Code,
		Message: c.Message,
		TraceID: traceID,
	}}
}
