package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/splunkmcp/pkg/splunk"
)

func TestWriteIndexTable(t *testing.T) {
	indexes := []splunk.IndexInfo{
		{Name: "main", TotalEventCount: 10, CurrentDBSizeMB: 512.5, Disabled: false},
		{Name: "security", TotalEventCount: 42, CurrentDBSizeMB: 8, Disabled: true},
	}

	var buf bytes.Buffer
	require.NoError(t, writeIndexTable(&buf, indexes))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "SIZE_MB")
	assert.Contains(t, out, "512.5")
	assert.Contains(t, out, "8.0")
	assert.NotContains(t, out, "%!d")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 3)
}

func TestWriteIndexTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeIndexTable(&buf, nil))
	assert.Contains(t, buf.String(), "NAME")
	assert.Contains(t, buf.String(), "DISABLED")
}
