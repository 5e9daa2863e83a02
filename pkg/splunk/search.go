package splunk

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Request bounds enforced before any network call.
const (
	MaxCountCeiling = 10000
	TimeoutCeiling  = 3600
)

// SearchRequest describes one search invocation. Time expressions are
// platform syntax (relative like "-24h@h" or absolute) and are passed
// through opaquely.
type SearchRequest struct {
	Query        string
	EarliestTime string
	LatestTime   string
	MaxCount     int
	Timeout      int // seconds
}

// ApplyDefaults fills unset fields with the platform defaults.
func (r *SearchRequest) ApplyDefaults() {
	if r.EarliestTime == "" {
		r.EarliestTime = "-24h@h"
	}
	if r.LatestTime == "" {
		r.LatestTime = "now"
	}
	if r.MaxCount == 0 {
		r.MaxCount = 100
	}
	if r.Timeout == 0 {
		r.Timeout = 60
	}
}

// Validate checks request bounds. A violation is a validation failure
// and must be returned before any network call is made.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return newError(KindValidation, "query cannot be empty", nil)
	}
	if r.MaxCount < 1 || r.MaxCount > MaxCountCeiling {
		return newError(KindValidation,
			fmt.Sprintf("max_count %d out of range 1-%d", r.MaxCount, MaxCountCeiling), nil)
	}
	if r.Timeout < 1 || r.Timeout > TimeoutCeiling {
		return newError(KindValidation,
			fmt.Sprintf("timeout %d out of range 1-%d", r.Timeout, TimeoutCeiling), nil)
	}
	return nil
}

// leadingCommand matches queries that already start with a pipeline or
// an explicit search command.
var leadingCommand = regexp.MustCompile(`^\s*(\||search\s)`)

// normalizedQuery prepends the implicit "search" command when the query
// text does not start with one, matching what the REST API expects.
func (r SearchRequest) normalizedQuery() string {
	q := strings.TrimSpace(r.Query)
	if leadingCommand.MatchString(q) {
		return q
	}
	return "search " + q
}

// SearchOutcome is the successful result of one search invocation.
// Failures are returned separately as *SearchError; intermediate
// states (job handle, result pages) are never exposed.
type SearchOutcome struct {
	SID         string           `json:"sid"`
	Results     []map[string]any `json:"results"`
	ResultCount int              `json:"result_count"`
	Truncated   bool             `json:"truncated"`
	Duration    time.Duration    `json:"duration"`
}

// Search runs one complete search lifecycle: validate, submit, poll to
// a terminal state under the request's timeout, collect paginated
// results, and delete the remote job.
//
// The error, when non-nil, is always a *SearchError from the closed
// taxonomy. The deadline is enforced at poll boundaries, so the call
// may overrun the nominal timeout by at most one poll interval.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchOutcome, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err.(*SearchError)
	}

	start := time.Now()
	deadline := start.Add(time.Duration(req.Timeout) * time.Second)

	ctx, cancel := context.WithDeadline(ctx, deadline.Add(c.pollPolicy.MaxInterval))
	defer cancel()

	j, err := c.submit(ctx, req)
	if err != nil {
		return nil, classify("submit", err)
	}

	c.logger.Info("search submitted",
		zap.String("sid", j.sid),
		zap.Int("max_count", req.MaxCount),
		zap.Int("timeout_s", req.Timeout))

	if err := c.waitDone(ctx, j, deadline, c.pollPolicy); err != nil {
		return nil, classify("poll", err)
	}

	switch j.state {
	case StateTimedOut:
		return nil, newError(KindTimeout,
			fmt.Sprintf("search exceeded %ds timeout", req.Timeout), nil).
			withDetail("elapsed_s", time.Since(start).Seconds()).
			withDetail("last_state", string(j.state)).
			withDetail("last_dispatch_state", j.content.DispatchState).
			withDetail("sid", j.sid)

	case StateFailed:
		msgs := j.failureMessages()
		kind := KindPlatform
		msg := "search job failed"
		if anySyntaxMessage(msgs) {
			kind = KindQuerySyntax
			msg = "query rejected by splunk"
		}
		return nil, newError(kind, msg, nil).
			withDetail("sid", j.sid).
			withDetail("platform_messages", msgs)

	case StateCanceled:
		return nil, newError(KindPlatform, "search job was canceled remotely", nil).
			withDetail("sid", j.sid)
	}

	rows, truncated, err := c.collectResults(ctx, j, req.MaxCount)
	if err != nil {
		var partial *partialResultError
		mapped := classify("results", err)
		if errors.As(err, &partial) {
			mapped.withDetail("partial_results", partial.rows).
				withDetail("partial_count", len(partial.rows))
		}
		mapped.withDetail("sid", j.sid)
		return nil, mapped
	}

	c.deleteJob(j.sid)

	outcome := &SearchOutcome{
		SID:         j.sid,
		Results:     rows,
		ResultCount: len(rows),
		Truncated:   truncated,
		Duration:    time.Since(start),
	}
	c.logger.Info("search completed",
		zap.String("sid", j.sid),
		zap.Int("rows", outcome.ResultCount),
		zap.Bool("truncated", outcome.Truncated),
		zap.Duration("duration", outcome.Duration))
	return outcome, nil
}

func anySyntaxMessage(msgs []string) bool {
	for _, m := range msgs {
		if looksLikeSyntaxError(m) {
			return true
		}
	}
	return false
}
