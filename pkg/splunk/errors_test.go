package splunk

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHTTPStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorKind
	}{
		{"unauthorized", 401, "call not properly authenticated", KindAuth},
		{"forbidden", 403, "insufficient permission to access this resource", KindPermission},
		{"bad request with syntax diagnostic", 400, "Unknown search command 'bogus'.", KindQuerySyntax},
		{"bad request without syntax diagnostic", 400, "invalid earliest_time", KindPlatform},
		{"server error", 500, "internal server error", KindPlatform},
		{"service unavailable", 503, "KV store initializing", KindPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("submit", &httpStatusError{StatusCode: tt.status, Body: tt.body})
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.status, err.Details["http_status"])
			assert.Contains(t, err.Details["platform_message"], tt.body)
		})
	}
}

func TestClassifyNetworkAndContextFailures(t *testing.T) {
	connRefused := &url.Error{Op: "Get", URL: "https://splunk:8089", Err: errors.New("connection refused")}

	assert.Equal(t, KindConnection, classify("poll", connRefused).Kind)
	assert.Equal(t, KindTimeout, classify("poll", context.DeadlineExceeded).Kind)
	assert.Contains(t, classify("poll", context.DeadlineExceeded).Message, "deadline exceeded")
	assert.Equal(t, KindTimeout, classify("poll", fmt.Errorf("wait: %w", context.Canceled)).Kind)
	assert.Contains(t, classify("poll", fmt.Errorf("wait: %w", context.Canceled)).Message, "canceled")
	assert.Equal(t, KindPlatform, classify("poll", errors.New("weird decoder state")).Kind)
}

func TestClassifyPassesThroughSearchError(t *testing.T) {
	orig := newError(KindValidation, "bad input", nil)
	got := classify("submit", orig)
	assert.Same(t, orig, got)
}

func TestClassifyIsTotal(t *testing.T) {
	// Whatever comes in, something classified comes out.
	inputs := []error{
		nil,
		errors.New("x"),
		&httpStatusError{StatusCode: 418, Body: "teapot"},
		&partialResultError{err: errors.New("boom")},
	}
	for _, in := range inputs {
		got := classify("op", in)
		require.NotNil(t, got)
		assert.NotEmpty(t, got.Kind)
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&url.Error{Op: "Get", URL: "u", Err: errors.New("reset")}))
	assert.False(t, isTransient(&httpStatusError{StatusCode: 500}))
	assert.False(t, isTransient(context.DeadlineExceeded))
	assert.False(t, isTransient(nil))
	assert.False(t, isTransient(errors.New("decode failure")))
}

func TestSearchErrorUnwrap(t *testing.T) {
	inner := &httpStatusError{StatusCode: 401, Body: "no"}
	err := classify("submit", inner)

	var statusErr *httpStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 401, statusErr.StatusCode)
}

func TestLooksLikeSyntaxError(t *testing.T) {
	assert.True(t, looksLikeSyntaxError("Unknown search command 'frob'"))
	assert.True(t, looksLikeSyntaxError("Error in 'search' command: Unable to parse"))
	assert.False(t, looksLikeSyntaxError("The job has expired"))
}
