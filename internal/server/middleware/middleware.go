// Package middleware provides the request correlation and panic
// recovery layers for the health server.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/3leaps/splunkmcp/internal/errors"
)

// ErrorResponse aliases the shared envelope so callers decoding
// middleware output do not need a second type.
type ErrorResponse = apperrors.HTTPErrorResponse

// RequestID assigns a correlation ID to every request. An inbound
// X-Request-ID header wins; otherwise a fresh UUID is generated. The
// ID is echoed on the response and stored in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, apperrors.WithRequestID(r, id))
	})
}

// Recovery converts panics into a 500 JSON envelope instead of tearing
// down the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				apperrors.WriteHTTPError(w, http.StatusInternalServerError,
					apperrors.CodeInternal,
					fmt.Sprintf("panic: %v", rec),
					apperrors.RequestIDFrom(r))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ErrorHandler is the historical name for Recovery.
func ErrorHandler(next http.Handler) http.Handler {
	return Recovery(next)
}
