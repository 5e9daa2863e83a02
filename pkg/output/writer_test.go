package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLWriterEmitsOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "inv-123")
	w.SetSID("1756064805.1039")

	ctx := context.Background()
	require.NoError(t, w.WriteResult(ctx, &ResultRecord{Row: map[string]any{"_raw": "event 0"}}))
	require.NoError(t, w.WriteSummary(ctx, &SummaryRecord{Query: "index=main", ResultCount: 1}))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, TypeResult, first.Type)
	assert.Equal(t, "inv-123", first.InvocationID)
	assert.Equal(t, "1756064805.1039", first.SID)
	assert.False(t, first.TS.IsZero())

	var row ResultRecord
	require.NoError(t, json.Unmarshal(first.Data, &row))
	assert.Equal(t, "event 0", row.Row["_raw"])

	var second Record
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, TypeSummary, second.Type)
}

func TestJSONLWriterErrorRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "inv-err")

	err := w.WriteError(context.Background(), &ErrorRecord{
		Kind:    "timeout_error",
		Message: "search exceeded 60s timeout",
		Details: map[string]any{"elapsed_s": 61.2},
	})
	require.NoError(t, err)

	var rec Record
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, TypeError, rec.Type)

	var payload ErrorRecord
	require.NoError(t, json.Unmarshal(rec.Data, &payload))
	assert.Equal(t, "timeout_error", payload.Kind)
	assert.Equal(t, 61.2, payload.Details["elapsed_s"])
}

func TestJSONLWriterClosedRejectsWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "inv-closed")
	require.NoError(t, w.Close())

	err := w.WriteResult(context.Background(), &ResultRecord{Row: map[string]any{}})
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestJSONLWriterCanceledContext(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "inv-ctx")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteResult(ctx, &ResultRecord{Row: map[string]any{}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestJSONLWriterConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&syncBuffer{buf: &buf}, "inv-conc")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = w.WriteResult(context.Background(), &ResultRecord{Row: map[string]any{"n": n}})
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 20)
	for _, line := range lines {
		var rec Record
		require.NoError(t, json.Unmarshal([]byte(line), &rec), "line must be valid JSON: %s", line)
	}
}

// syncBuffer guards a bytes.Buffer for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}
