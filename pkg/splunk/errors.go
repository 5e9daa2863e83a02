package splunk

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorKind is the closed set of failure classifications surfaced to
// callers. Every failure path in Search resolves to exactly one kind;
// nothing escapes unclassified.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation_error"
	KindAuth        ErrorKind = "authentication_error"
	KindPermission  ErrorKind = "permission_error"
	KindQuerySyntax ErrorKind = "query_syntax_error"
	KindTimeout     ErrorKind = "timeout_error"
	KindConnection  ErrorKind = "connection_error"
	KindPlatform    ErrorKind = "platform_error"
)

// SearchError is the typed failure returned by client operations.
//
// Details carries kind-specific diagnostics (HTTP status, elapsed time,
// last job state, partial row counts) and is safe to serialize into a
// tool response envelope.
type SearchError struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SearchError) Unwrap() error {
	return e.Err
}

// newError builds a SearchError with an initialized Details map.
func newError(kind ErrorKind, msg string, err error) *SearchError {
	return &SearchError{Kind: kind, Message: msg, Details: map[string]any{}, Err: err}
}

// withDetail attaches one diagnostic key and returns the error for chaining.
func (e *SearchError) withDetail(key string, value any) *SearchError {
	e.Details[key] = value
	return e
}

// httpStatusError is the transport-level failure for non-2xx responses.
// It preserves the raw status code and body for classification.
type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("splunk returned HTTP %d: %s", e.StatusCode, snippet(e.Body, 200))
}

// snippet bounds diagnostic payloads carried inside error messages.
func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// syntax-error markers seen in Splunk job diagnostics and 400 bodies.
var syntaxMarkers = []string{
	"unknown search command",
	"error in 'search' command",
	"unbalanced quotes",
	"mismatched ']'",
	"malformed search",
	"parseerror",
}

func looksLikeSyntaxError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range syntaxMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// classify maps a raw failure from submission, polling, or result
// collection into the closed taxonomy. op names the stage for the
// error message ("submit", "poll", "results", ...).
func classify(op string, err error) *SearchError {
	var se *SearchError
	if errors.As(err, &se) {
		return se
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case 401:
			return newError(KindAuth, "authentication failed, check credentials", err).
				withDetail("http_status", statusErr.StatusCode).
				withDetail("platform_message", snippet(statusErr.Body, 500))
		case 403:
			return newError(KindPermission, "insufficient permissions for this operation", err).
				withDetail("http_status", statusErr.StatusCode).
				withDetail("platform_message", snippet(statusErr.Body, 500))
		case 400:
			if looksLikeSyntaxError(statusErr.Body) {
				return newError(KindQuerySyntax, "query rejected by splunk", err).
					withDetail("http_status", statusErr.StatusCode).
					withDetail("platform_message", snippet(statusErr.Body, 500))
			}
		}
		return newError(KindPlatform, fmt.Sprintf("unexpected splunk response during %s", op), err).
			withDetail("http_status", statusErr.StatusCode).
			withDetail("platform_message", snippet(statusErr.Body, 500))
	}

	if errors.Is(err, context.Canceled) {
		return newError(KindTimeout, fmt.Sprintf("search canceled during %s", op), err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, fmt.Sprintf("deadline exceeded during %s", op), err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return newError(KindConnection, fmt.Sprintf("cannot reach splunk during %s", op), err)
	}

	return newError(KindPlatform, fmt.Sprintf("unexpected failure during %s", op), err)
}

// isTransient reports whether an error is worth retrying at the
// poll/submission layer. Only network-level failures qualify; HTTP
// status failures and context cancellation are final.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
