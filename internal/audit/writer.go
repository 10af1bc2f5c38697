// Package audit appends consumed expense events to a JSONL trail.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"expensed/internal/events"
)

// Entry is one line of the audit trail.
type Entry struct {
	Action     string    `json:"action"`
	ExpenseID  int64     `json:"expense_id"`
	OccurredAt time.Time `json:"occurred_at"`
	ReceivedAt time.Time `json:"received_at"`
}

// Writer appends one JSON line per expense event to a file. Appends are
// serialized with a mutex; the file stays open for the writer's lifetime.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	path string
}

func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", path, err)
	}

	return &Writer{file: file, path: path}, nil
}

// HandleEvent records one consumed event. It satisfies the handler signature
// of events.Client.ConsumeExpenseEvents.
func (w *Writer) HandleEvent(ctx context.Context, ev *events.ExpenseEvent) error {
	entry := Entry{
		Action:     ev.Action,
		ExpenseID:  ev.ID,
		OccurredAt: ev.Timestamp,
		ReceivedAt: time.Now(),
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	slog.InfoContext(ctx, "Audit entry recorded",
		"action", entry.Action,
		"expense_id", entry.ExpenseID,
		"path", w.path)

	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
