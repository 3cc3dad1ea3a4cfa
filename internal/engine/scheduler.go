package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/pkg/types"
)

// Scheduler registers recurring summarization intent. It only persists the
// job row; an external dispatcher owns the cron loop that reacts to it.
type Scheduler struct {
	jobs storage.JobStore
}

// NewScheduler creates a scheduler over the given job store.
func NewScheduler(jobs storage.JobStore) *Scheduler {
	return &Scheduler{jobs: jobs}
}

// ScheduleRegularSummarization persists a recurring job for the
// organization and returns the generated job ID. On persistence failure it
// returns an empty ID and the error; callers must check the error rather
// than expect a panic.
func (s *Scheduler) ScheduleRegularSummarization(ctx context.Context, organizationID string, intervalHours int) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("%w: organization ID is required", storage.ErrInvalidInput)
	}
	if intervalHours <= 0 {
		return "", fmt.Errorf("%w: interval must be positive, got %d", storage.ErrInvalidInput, intervalHours)
	}

	job := &types.ScheduledJob{
		ID:             types.NewJobID(),
		OrganizationID: organizationID,
		JobType:        types.JobTypeMemorySummarization,
		IntervalHours:  intervalHours,
		CreatedAt:      time.Now(),
	}

	id, err := s.jobs.InsertScheduledJob(ctx, job)
	if err != nil {
		log.Printf("ERROR: failed to schedule summarization for org %s: %v", organizationID, err)
		return "", fmt.Errorf("failed to schedule summarization: %w", err)
	}

	return id, nil
}
