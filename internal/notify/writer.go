// Package notify provides cross-process notification of completed
// summarization runs using filesystem events. The engine process writes one
// event file per run; a dispatcher or UI process watches the directory and
// reacts without polling the database.
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Event is the payload written to an event file.
type Event struct {
	Type           string   `json:"type"`
	OrganizationID string   `json:"organization_id"`
	UserID         string   `json:"user_id,omitempty"`
	TotalSummaries int      `json:"total_summaries"`
	SummaryIDs     []string `json:"summary_ids,omitempty"`
	Time           int64    `json:"time"`
}

// EventRunComplete is the event type written after every summarization run.
const EventRunComplete = "summarization_run_complete"

// EventWriter writes notification event files to a shared directory.
type EventWriter struct {
	dir string
}

// NewEventWriter creates a writer that emits events to the given directory.
func NewEventWriter(dir string) *EventWriter {
	return &EventWriter{dir: dir}
}

// NotifyRunComplete writes a run-completion event file.
// Safe to call concurrently. Errors are returned but not fatal.
func (w *EventWriter) NotifyRunComplete(organizationID, userID string, totalSummaries int, summaryIDs []string) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("notify: mkdir %s: %w", w.dir, err)
	}
	evt := Event{
		Type:           EventRunComplete,
		OrganizationID: organizationID,
		UserID:         userID,
		TotalSummaries: totalSummaries,
		SummaryIDs:     summaryIDs,
		Time:           time.Now().UnixNano(),
	}
	data, _ := json.Marshal(evt)
	filename := fmt.Sprintf("%d-%s.event", evt.Time, sanitizeID(organizationID))
	return os.WriteFile(filepath.Join(w.dir, filename), data, 0o600)
}

// sanitizeID replaces characters unsafe for filenames.
func sanitizeID(id string) string {
	out := make([]byte, len(id))
	for i := 0; i < len(id); i++ {
		if id[i] == '/' || id[i] == ':' {
			out[i] = '_'
		} else {
			out[i] = id[i]
		}
	}
	return string(out)
}
