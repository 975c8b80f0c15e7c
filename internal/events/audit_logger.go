package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEntry is one line of the append-only run audit log.
type AuditEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	RunID     string         `json:"run_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// AuditLogger appends run lifecycle events to a JSONL file. Wire it to a bus
// with Attach; every event type is recorded.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
	path string

	unsubscribe []func()
}

// NewAuditLogger opens (or creates) the JSONL audit log at path.
func NewAuditLogger(path string) (*AuditLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &AuditLogger{file: file, path: path}, nil
}

// Attach subscribes the logger to every run event type on the bus.
func (l *AuditLogger) Attach(bus *Bus) {
	for _, et := range []EventType{EventRunStarted, EventStepCompleted, EventGateFailed, EventRunFinished} {
		l.unsubscribe = append(l.unsubscribe, bus.Subscribe(et, l.record))
	}
}

func (l *AuditLogger) record(event Event) {
	entry := AuditEntry{
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		RunID:     event.RunID,
		Details:   event.Data,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	_, _ = l.file.Write(data)
}

// Close detaches the logger from the bus and closes the file.
func (l *AuditLogger) Close() error {
	for _, unsub := range l.unsubscribe {
		unsub()
	}
	l.unsubscribe = nil

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Sync()
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}

// Path returns the audit log location.
func (l *AuditLogger) Path() string {
	return l.path
}
