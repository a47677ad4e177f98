package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/issue-tracker/internal/pkg/logger"
)

// ErrorBody describes a failed request.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Envelope is the standard body for every API response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// Success wraps data in a successful envelope. data may be nil.
func Success(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail builds an error envelope.
func Fail(code, message string) Envelope {
	return Envelope{Error: &ErrorBody{Message: message, Code: code}}
}

// JSON writes a JSON response with the given status code. If encoding
// fails the error is logged; the status line has already been sent.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("json encode failed", "error", err)
	}
}

// Error writes a failure envelope.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, Fail(code, message))
}
