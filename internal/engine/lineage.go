package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/pkg/types"
)

// LineageStore persists a summary as a new memory record together with
// derived_from edges linking it to every source memory. It is the only
// component that writes to the memories and memory_relationships tables.
type LineageStore struct {
	memories storage.MemoryStore
}

// NewLineageStore creates a lineage store over the given memory store.
func NewLineageStore(memories storage.MemoryStore) *LineageStore {
	return &LineageStore{memories: memories}
}

// StoreSummaryAsMemory inserts summary as a new memory row stamped with the
// given organization and user, then inserts one derived_from edge per
// source memory.
//
// The memory insert is all-or-nothing: if it fails, no relationship rows
// are written and the error is returned. The relationship insert is
// best-effort: if it fails after the memory row exists, the summary stands
// with orphaned lineage, the failure is logged, and the summary ID is still
// returned.
func (l *LineageStore) StoreSummaryAsMemory(ctx context.Context, summary *types.Memory, sources []*types.Memory, organizationID, userID string) (string, error) {
	if summary == nil {
		return "", fmt.Errorf("%w: summary memory is required", storage.ErrInvalidInput)
	}
	if organizationID == "" {
		return "", fmt.Errorf("%w: organization ID is required", storage.ErrInvalidInput)
	}

	summary.OrganizationID = organizationID
	summary.UserID = userID
	if summary.ID == "" {
		summary.ID = types.NewMemoryID()
	}
	if summary.MemoryType == "" {
		summary.MemoryType = types.MemoryTypeInsight
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now()
	}
	if summary.Metadata == nil {
		summary.Metadata = make(map[string]interface{})
	}
	summary.Metadata["is_summary"] = true
	summary.Metadata["source"] = "summarization"
	summary.Metadata["source_count"] = len(sources)

	id, err := l.memories.InsertMemory(ctx, summary)
	if err != nil {
		return "", fmt.Errorf("failed to insert summary memory: %w", err)
	}

	if len(sources) == 0 {
		return id, nil
	}

	now := time.Now()
	rels := make([]*types.MemoryRelationship, 0, len(sources))
	for _, src := range sources {
		rels = append(rels, &types.MemoryRelationship{
			ID:               types.NewRelationshipID(),
			OrganizationID:   organizationID,
			FromID:           id,
			ToID:             src.ID,
			RelationshipType: types.RelationshipDerivedFrom,
			CreatedAt:        now,
		})
	}

	if err := l.memories.InsertRelationships(ctx, rels); err != nil {
		// The summary row already exists; leave it standing without lineage.
		// Repair tooling can rebuild edges from the metadata source count.
		log.Printf("WARNING: failed to insert %d lineage edges for summary %s: %v", len(rels), id, err)
	}

	return id, nil
}
