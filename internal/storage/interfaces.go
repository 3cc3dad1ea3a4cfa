// Package storage provides the storage interfaces consumed by the Recall
// summarization engine.
//
// The interfaces are small and focused so backends can be implemented
// independently and swapped freely; every implementation must filter each
// query by organization ID. A query that omits that filter is a correctness
// bug, not a style choice.
package storage

import (
	"context"

	"github.com/harborcrm/recall/pkg/types"
)

// MemoryStore provides the memory and relationship operations the
// summarization engine needs. It is deliberately narrower than a full CRUD
// store: the engine reads eligible memories and writes derived records, and
// nothing else.
type MemoryStore interface {
	// FetchEligibleMemories returns the memories eligible for summarization
	// in the given organization, optionally narrowed to one user. When
	// userID is empty, all of the organization's eligible memories are
	// returned. Derived summary records are excluded so routine runs do not
	// re-summarize their own output.
	FetchEligibleMemories(ctx context.Context, organizationID, userID string) ([]*types.Memory, error)

	// InsertMemory persists a new memory row and returns its ID.
	InsertMemory(ctx context.Context, memory *types.Memory) (string, error)

	// InsertRelationships persists the given derivation edges. All edges in
	// one call belong to the same organization.
	InsertRelationships(ctx context.Context, rels []*types.MemoryRelationship) error

	// GetMemory retrieves one memory by ID within an organization.
	// Returns ErrNotFound when no such memory exists in that organization.
	GetMemory(ctx context.Context, organizationID, id string) (*types.Memory, error)

	// GetRelationships returns the outgoing edges of the given memory
	// within an organization, e.g. a summary's derived_from lineage.
	GetRelationships(ctx context.Context, organizationID, fromID string) ([]*types.MemoryRelationship, error)

	// Close releases any resources held by the store.
	Close() error
}

// SubscriptionStore resolves an organization's billing state. Both lookups
// return ErrNotFound when the row does not exist; the config resolver treats
// any error as "fall back to defaults".
type SubscriptionStore interface {
	// GetSubscriptionForOrganization returns the organization's active
	// subscription.
	GetSubscriptionForOrganization(ctx context.Context, organizationID string) (*types.Subscription, error)

	// GetPlan returns a subscription plan by ID, including its raw feature
	// payload.
	GetPlan(ctx context.Context, planID string) (*types.SubscriptionPlan, error)
}

// JobStore persists recurring-job declarations.
type JobStore interface {
	// InsertScheduledJob persists the job row and returns its generated ID.
	InsertScheduledJob(ctx context.Context, job *types.ScheduledJob) (string, error)
}
