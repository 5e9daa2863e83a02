// Package errors defines the JSON error envelope used by the health
// HTTP server.
package errors

import (
	"context"
	"encoding/json"
	"net/http"
)

// Stable machine-readable error codes for the HTTP surface.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// HTTPErrorResponse is the envelope for every non-2xx response body.
type HTTPErrorResponse struct {
	Error HTTPError `json:"error"`
}

// HTTPError carries the code, message, and correlation ID.
type HTTPError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// WriteHTTPError emits the envelope with the given status.
func WriteHTTPError(w http.ResponseWriter, status int, code, message, requestID string) {
	writeEnvelope(w, status, HTTPError{Code: code, Message: message, RequestID: requestID})
}

// WriteHTTPErrorDetails is WriteHTTPError with structured context
// attached to the envelope.
func WriteHTTPErrorDetails(w http.ResponseWriter, status int, code, message, requestID string, details map[string]any) {
	writeEnvelope(w, status, HTTPError{Code: code, Message: message, RequestID: requestID, Details: details})
}

func writeEnvelope(w http.ResponseWriter, status int, e HTTPError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{Error: e})
}

// NotFoundHandler is the router fallback for unknown paths.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteHTTPError(w, http.StatusNotFound, CodeNotFound, "resource not found", RequestIDFrom(r))
}

// MethodNotAllowedHandler is the router fallback for bad methods.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	WriteHTTPError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", RequestIDFrom(r))
}

// RequestIDFrom extracts the correlation ID placed by the RequestID
// middleware, falling back to the inbound header.
func RequestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

type requestIDKey struct{}

// WithRequestID returns a request whose context carries the ID.
func WithRequestID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
}
