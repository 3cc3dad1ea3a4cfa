package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScheduledJob declares recurring summarization intent for an organization.
// The engine only persists the row; an external dispatcher owns the cron
// loop that reacts to it.
type ScheduledJob struct {
	ID             string    `json:"id"`              // Unique identifier (format: job:uuid)
	OrganizationID string    `json:"organization_id"` // Tenant identifier
	JobType        string    `json:"job_type"`        // e.g. "memory_summarization"
	IntervalHours  int       `json:"interval_hours"`  // Run cadence, must be > 0
	CreatedAt      time.Time `json:"created_at"`
}

// JobTypeMemorySummarization is the job type written by the scheduler.
const JobTypeMemorySummarization = "memory_summarization"

// Validate checks the invariants a scheduled job must satisfy before insert.
func (j *ScheduledJob) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if j.OrganizationID == "" {
		return fmt.Errorf("job organization ID is required")
	}
	if j.IntervalHours <= 0 {
		return fmt.Errorf("job interval must be positive, got %d", j.IntervalHours)
	}
	return nil
}

// NewJobID generates a unique scheduled-job identifier (format: job:uuid).
func NewJobID() string {
	return "job:" + uuid.NewString()
}
