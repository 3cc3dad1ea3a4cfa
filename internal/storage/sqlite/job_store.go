package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/pkg/types"
)

// InsertScheduledJob persists the job row and returns its generated ID.
func (s *Store) InsertScheduledJob(ctx context.Context, job *types.ScheduledJob) (string, error) {
	if job == nil {
		return "", storage.ErrInvalidInput
	}
	if err := job.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (id, organization_id, job_type, interval_hours, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, job.ID, job.OrganizationID, job.JobType, job.IntervalHours, job.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("sqlite: failed to insert scheduled job: %w", err)
	}

	return job.ID, nil
}

// Compile-time assertion.
var _ storage.JobStore = (*Store)(nil)
