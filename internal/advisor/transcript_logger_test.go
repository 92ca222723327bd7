package advisor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptLoggerWritesNDJSON(t *testing.T) {
	dir := t.TempDir()
	tl, err := NewTranscriptLogger(TranscriptLogConfig{Enabled: true, Dir: dir, QueueSize: 10}, nil)
	require.NoError(t, err)

	tl.Log(TranscriptLogEvent{
		LearnerID:      "anon_1",
		ConversationID: "conv-1",
		Direction:      "inbound",
		EventType:      "learner_message",
		Content:        "CBCS",
	})
	tl.Log(TranscriptLogEvent{
		LearnerID:      "anon_1",
		ConversationID: "conv-1",
		Direction:      "outbound",
		EventType:      "prompt",
		Content:        "Great choice!",
	})
	require.NoError(t, tl.Close())

	data, err := os.ReadFile(filepath.Join(dir, "anon_1", "conv-1.ndjson"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first TranscriptLogEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "inbound", first.Direction)
	assert.Equal(t, "CBCS", first.Content)
	assert.NotEmpty(t, first.Timestamp)

	var second TranscriptLogEvent
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "prompt", second.EventType)
}

func TestTranscriptLoggerAnonymousFallbackPaths(t *testing.T) {
	dir := t.TempDir()
	tl, err := NewTranscriptLogger(TranscriptLogConfig{Enabled: true, Dir: dir, QueueSize: 10}, nil)
	require.NoError(t, err)

	tl.Log(TranscriptLogEvent{Direction: "outbound", EventType: "prompt", Content: "hi"})
	require.NoError(t, tl.Close())

	_, err = os.Stat(filepath.Join(dir, "anonymous", "unsaved.ndjson"))
	assert.NoError(t, err)
}

func TestTranscriptLoggerDisabledIsNoop(t *testing.T) {
	tl, err := NewTranscriptLogger(TranscriptLogConfig{Enabled: false}, nil)
	require.NoError(t, err)

	// No queue exists; Log and Close must both be safe.
	tl.Log(TranscriptLogEvent{Content: "ignored"})
	assert.NoError(t, tl.Close())
}
