// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler sends JSON back to the client. Centralising the header,
// status and encoding steps here keeps error shapes identical across routes.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/raffle-registry/internal/registration"
)

// Response is the standard envelope returned for error and acknowledgement
// cases. Read routes return the record (or list) directly.
//
//	{ "status": "error", "error": "first name must contain 3 or more characters", "field": "firstName" }
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Field  string `json:"field,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
// Headers must be set before WriteHeader, and WriteHeader before the body.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
// Use this for decode errors, bad headers and storage failures.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError surfaces the broken registration rule and the field it
// applies to.
func ValidationError(err *registration.ValidationError) Response {
	return Response{
		Status: StatusError,
		Error:  err.Reason,
		Field:  err.Field,
	}
}
