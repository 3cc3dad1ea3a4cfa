package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RelationshipDerivedFrom is the relationship type written by the lineage
// store: the from-side summary memory was derived from the to-side source.
const RelationshipDerivedFrom = "derived_from"

// MemoryRelationship is a directed edge between two memories. The
// summarization engine only ever writes derived_from edges (summary -> source)
// and never mutates or deletes existing edges.
type MemoryRelationship struct {
	ID               string    `json:"id"`                // Unique identifier (format: rel:uuid)
	OrganizationID   string    `json:"organization_id"`   // Stored redundantly so edge queries stay isolation-safe
	FromID           string    `json:"from_id"`           // Source of the edge (the summary memory)
	ToID             string    `json:"to_id"`             // Target of the edge (a source memory)
	RelationshipType string    `json:"relationship_type"` // Edge semantics, e.g. "derived_from"
	CreatedAt        time.Time `json:"created_at"`        // Creation timestamp
}

// Validate checks the invariants a relationship must satisfy before insert.
func (r *MemoryRelationship) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("relationship ID is required")
	}
	if r.OrganizationID == "" {
		return fmt.Errorf("relationship organization ID is required")
	}
	if r.FromID == "" || r.ToID == "" {
		return fmt.Errorf("relationship endpoints are required")
	}
	if r.RelationshipType == "" {
		return fmt.Errorf("relationship type is required")
	}
	return nil
}

// NewRelationshipID generates a unique relationship identifier (format: rel:uuid).
func NewRelationshipID() string {
	return "rel:" + uuid.NewString()
}
