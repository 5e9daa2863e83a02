package splunk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// JobState is the lifecycle state of one search job as observed by the
// poll loop. Terminal states are Done, Failed, Canceled, and TimedOut.
type JobState string

const (
	StateQueued   JobState = "queued"
	StateParsing  JobState = "parsing"
	StateRunning  JobState = "running"
	StateDone     JobState = "done"
	StateFailed   JobState = "failed"
	StateCanceled JobState = "canceled"
	StateTimedOut JobState = "timed_out"
)

// terminal reports whether the poll loop stops at this state.
func (s JobState) terminal() bool {
	switch s {
	case StateDone, StateFailed, StateCanceled, StateTimedOut:
		return true
	}
	return false
}

// stateFromContent maps Splunk's dispatch reporting onto the local
// state machine. IsDone/IsFailed win over dispatchState; intermediate
// dispatch phases (PARSING, FINALIZING, PAUSED) collapse into the
// non-terminal set.
func stateFromContent(content jobContent) JobState {
	switch {
	case content.IsFailed:
		return StateFailed
	case content.IsDone:
		return StateDone
	}
	switch strings.ToUpper(content.DispatchState) {
	case "QUEUED":
		return StateQueued
	case "PARSING":
		return StateParsing
	case "CANCELED", "CANCELLED":
		return StateCanceled
	default:
		return StateRunning
	}
}

// PollPolicy controls the status poll loop. All values are explicit so
// tests can inject a zero-delay schedule.
type PollPolicy struct {
	// InitialInterval is the delay before the first re-poll.
	InitialInterval time.Duration

	// MaxInterval caps the backed-off delay.
	MaxInterval time.Duration

	// Multiplier grows the delay after each poll. Values <= 1 disable
	// backoff.
	Multiplier float64

	// MaxRetries bounds consecutive transient transport failures on a
	// single submit or poll before the failure is treated as fatal.
	MaxRetries int
}

// DefaultPollPolicy keeps short searches responsive (sub-second first
// poll) while bounding request volume on long ones.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     3 * time.Second,
		Multiplier:      2,
		MaxRetries:      3,
	}
}

// next returns the delay that follows cur.
func (p PollPolicy) next(cur time.Duration) time.Duration {
	if p.Multiplier <= 1 {
		return cur
	}
	grown := time.Duration(float64(cur) * p.Multiplier)
	if grown > p.MaxInterval {
		return p.MaxInterval
	}
	return grown
}

// job tracks one search invocation. It is local to the invocation and
// discarded once a terminal state is reached.
type job struct {
	sid        string
	state      JobState
	content    jobContent
	createdAt  time.Time
	lastPolled time.Time
}

// submit creates the search job and returns its handle. Transient
// transport errors are retried per policy; anything else propagates.
func (c *Client) submit(ctx context.Context, req SearchRequest) (*job, error) {
	form := url.Values{
		"search":        {req.normalizedQuery()},
		"earliest_time": {req.EarliestTime},
		"latest_time":   {req.LatestTime},
		"max_count":     {strconv.Itoa(req.MaxCount)},
		"output_mode":   {"json"},
	}

	body, err := c.withRetry(ctx, func() ([]byte, error) {
		return c.postForm(ctx, "/services/search/jobs", nil, form)
	})
	if err != nil {
		return nil, err
	}

	var created newJobResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("decode job creation response: %w", err)
	}
	if created.SID == "" {
		return nil, fmt.Errorf("job creation response carried no sid")
	}

	c.logger.Debug("search job created", zap.String("sid", created.SID))
	return &job{sid: created.SID, state: StateQueued, createdAt: time.Now()}, nil
}

// poll refreshes the job's state from the remote platform.
func (c *Client) poll(ctx context.Context, j *job) error {
	body, err := c.withRetry(ctx, func() ([]byte, error) {
		return c.get(ctx, "/services/search/jobs/"+url.PathEscape(j.sid), nil)
	})
	if err != nil {
		return err
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return fmt.Errorf("decode job status: %w", err)
	}
	if len(feed.Entry) == 0 {
		return fmt.Errorf("no status entry for job %s", j.sid)
	}

	var content jobContent
	if err := json.Unmarshal(feed.Entry[0].Content, &content); err != nil {
		return fmt.Errorf("decode job content: %w", err)
	}

	j.content = content
	j.state = stateFromContent(content)
	j.lastPolled = time.Now()
	return nil
}

// waitDone drives the poll loop until the job reaches a terminal state
// or the deadline elapses.
//
// The deadline is checked only at poll boundaries, so the call may
// overrun the nominal deadline by at most one poll interval. On
// timeout a cancel request is issued fire-and-forget and the job is
// marked TimedOut locally; if the remote job happens to complete after
// the cancel was issued the timeout still stands. Caller-initiated
// cancellation also cancels the job but surfaces as the context error.
func (c *Client) waitDone(ctx context.Context, j *job, deadline time.Time, policy PollPolicy) error {
	interval := policy.InitialInterval

	for {
		if err := c.poll(ctx, j); err != nil {
			// A poll cut short by the expiring context after the
			// deadline is a timeout, not a transport failure.
			if errors.Is(err, context.DeadlineExceeded) && !time.Now().Before(deadline) {
				c.cancelJob(j.sid)
				j.state = StateTimedOut
				return nil
			}
			if errors.Is(err, context.Canceled) {
				c.cancelJob(j.sid)
			}
			return err
		}
		if j.state.terminal() {
			return nil
		}

		now := time.Now()
		if !now.Before(deadline) {
			c.cancelJob(j.sid)
			j.state = StateTimedOut
			return nil
		}

		sleep := interval
		if until := deadline.Sub(now); until < sleep {
			sleep = until
		}
		select {
		case <-ctx.Done():
			c.cancelJob(j.sid)
			// The wrapping context only carries the search deadline,
			// so Canceled here is always caller-initiated.
			if errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
			j.state = StateTimedOut
			return nil
		case <-time.After(sleep):
		}
		interval = policy.next(interval)
	}
}

// cancelJob issues a best-effort cancel. It runs with its own short
// deadline detached from the caller's context so an expired search
// context cannot block the cancel from going out.
func (c *Client) cancelJob(sid string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	form := url.Values{"action": {"cancel"}}
	if _, err := c.postForm(ctx, "/services/search/jobs/"+url.PathEscape(sid)+"/control", nil, form); err != nil {
		c.logger.Debug("job cancel request failed", zap.String("sid", sid), zap.Error(err))
		return
	}
	c.logger.Debug("job cancel requested", zap.String("sid", sid))
}

// deleteJob removes a finished job server-side. Best effort; a failed
// delete never changes the search outcome.
func (c *Client) deleteJob(sid string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.delete(ctx, "/services/search/jobs/"+url.PathEscape(sid), nil); err != nil {
		c.logger.Debug("job delete failed", zap.String("sid", sid), zap.Error(err))
	}
}

// failureMessages flattens job diagnostics for a Failed outcome.
func (j *job) failureMessages() []string {
	msgs := make([]string, 0, len(j.content.Messages))
	for _, m := range j.content.Messages {
		if m.Text == "" {
			continue
		}
		msgs = append(msgs, m.Text)
	}
	return msgs
}

// withRetry runs fn, retrying transient transport failures with the
// client's retry budget. HTTP status failures are never retried here;
// they carry classification payload and must surface intact.
func (c *Client) withRetry(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	policy := c.pollPolicy
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		body, err := fn()
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isTransient(err) {
			return nil, err
		}
		if attempt == policy.MaxRetries {
			break
		}
		c.logger.Debug("transient transport failure, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.InitialInterval):
		}
	}
	return nil, lastErr
}
