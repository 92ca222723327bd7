package advisor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TranscriptLogEvent is one NDJSON record of an intake exchange.
type TranscriptLogEvent struct {
	Timestamp      string `json:"ts"`
	LearnerID      string `json:"learner_id"`
	ConversationID string `json:"conversation_id"`
	Direction      string `json:"direction"` // "inbound" | "outbound"
	EventType      string `json:"event_type"`
	Content        string `json:"content"`
}

// TranscriptLogConfig controls NDJSON transcript logging.
type TranscriptLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// TranscriptLogger appends intake exchanges to per-conversation NDJSON
// files. Writes happen on a background goroutine behind a bounded queue so
// request handling never blocks on disk; events are dropped with a warning
// when the queue is full.
type TranscriptLogger struct {
	cfg    TranscriptLogConfig
	queue  chan TranscriptLogEvent
	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewTranscriptLogger creates the logger and starts its writer goroutine.
// A disabled config returns a logger whose Log is a no-op.
func NewTranscriptLogger(cfg TranscriptLogConfig, logger *slog.Logger) (*TranscriptLogger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tl := &TranscriptLogger{
		cfg:    cfg,
		done:   make(chan struct{}),
		logger: logger,
	}
	if !cfg.Enabled {
		return tl, nil
	}

	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
		tl.cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript log dir: %w", err)
	}

	tl.queue = make(chan TranscriptLogEvent, tl.cfg.QueueSize)
	tl.wg.Add(1)
	go tl.writeLoop()
	return tl, nil
}

// Log enqueues an event. Never blocks.
func (t *TranscriptLogger) Log(event TranscriptLogEvent) {
	if t == nil || !t.cfg.Enabled {
		return
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case t.queue <- event:
	default:
		t.logger.Warn("transcript log queue full, dropping event",
			"conversation_id", event.ConversationID, "event_type", event.EventType)
	}
}

// Close drains pending events and stops the writer.
func (t *TranscriptLogger) Close() error {
	if t == nil || !t.cfg.Enabled {
		return nil
	}
	close(t.done)
	t.wg.Wait()
	return nil
}

func (t *TranscriptLogger) writeLoop() {
	defer t.wg.Done()
	for {
		select {
		case event := <-t.queue:
			t.write(event)
		case <-t.done:
			for {
				select {
				case event := <-t.queue:
					t.write(event)
				default:
					return
				}
			}
		}
	}
}

func (t *TranscriptLogger) write(event TranscriptLogEvent) {
	learner := event.LearnerID
	if learner == "" {
		learner = "anonymous"
	}
	conversation := event.ConversationID
	if conversation == "" {
		conversation = "unsaved"
	}

	dir := filepath.Join(t.cfg.Dir, learner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.logger.Warn("failed to create transcript log dir", "dir", dir, "error", err)
		return
	}

	path := filepath.Join(dir, conversation+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.logger.Warn("failed to open transcript log file", "path", path, "error", err)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			t.logger.Warn("failed to close transcript log file", "path", path, "error", closeErr)
		}
	}()

	line, err := json.Marshal(event)
	if err != nil {
		t.logger.Warn("failed to marshal transcript log event", "error", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		t.logger.Warn("failed to write transcript log event", "path", path, "error", err)
	}
}
