// Package types defines the core domain types shared across the Recall
// summarization engine: memories, derivation relationships, subscription
// plans, and scheduled jobs. All records are scoped to exactly one
// organization; OrganizationID is the isolation boundary and is mandatory
// on every persisted row.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MemoryType classifies a memory record. Type is a hard partition boundary
// for clustering: memories of different types are never co-clustered.
type MemoryType string

const (
	// MemoryTypePreference records a stated preference ("prefers email over calls").
	MemoryTypePreference MemoryType = "preference"

	// MemoryTypeFeedback records feedback about a product or interaction.
	MemoryTypeFeedback MemoryType = "feedback"

	// MemoryTypeInteraction records a discrete interaction event.
	MemoryTypeInteraction MemoryType = "interaction"

	// MemoryTypeObservation records a passive observation extracted elsewhere.
	MemoryTypeObservation MemoryType = "observation"

	// MemoryTypeInsight is reserved for derived records: summaries produced
	// by the summarization engine are stored with this type.
	MemoryTypeInsight MemoryType = "insight"
)

// IsValid reports whether t is one of the closed enumeration values.
func (t MemoryType) IsValid() bool {
	switch t {
	case MemoryTypePreference, MemoryTypeFeedback, MemoryTypeInteraction,
		MemoryTypeObservation, MemoryTypeInsight:
		return true
	}
	return false
}

// Memory is a single unit of tenant knowledge: a fact, preference, feedback
// item, or observation extracted by the ingestion pipeline, or an insight
// derived from other memories by the summarization engine.
type Memory struct {
	ID             string     `json:"id"`                // Unique identifier (format: mem:uuid)
	OrganizationID string     `json:"organization_id"`   // Tenant identifier; mandatory, the sole isolation boundary
	UserID         string     `json:"user_id,omitempty"` // Optional sub-tenant scoping (who the memory is about/from)
	Content        string     `json:"content"`           // Free text, non-empty
	MemoryType     MemoryType `json:"memory_type"`       // Closed enumeration; insight is reserved for derived records

	// ContentEmbedding is the externally produced dense vector for Content.
	// Nil when no embedding has been generated yet; memories without an
	// embedding are excluded from similarity clustering.
	ContentEmbedding []float64 `json:"content_embedding,omitempty"`

	ImportanceScore float64                `json:"importance_score"`   // 0.0-1.0, informational to clustering, used for truncation
	Metadata        map[string]interface{} `json:"metadata,omitempty"` // Open key/value bag; summaries carry provenance hints here
	CreatedAt       time.Time              `json:"created_at"`         // Immutable creation timestamp
}

// IsSummary reports whether this memory is a derived summary record, based
// on the is_summary metadata flag written by the lineage store.
func (m *Memory) IsSummary() bool {
	if m.Metadata == nil {
		return false
	}
	v, ok := m.Metadata["is_summary"].(bool)
	return ok && v
}

// HasEmbedding reports whether the memory carries a non-empty embedding
// vector and is therefore eligible for similarity clustering.
func (m *Memory) HasEmbedding() bool {
	return len(m.ContentEmbedding) > 0
}

// Validate checks the invariants every memory must satisfy before it is
// persisted. It does not check the embedding; embeddings are optional.
func (m *Memory) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("memory ID is required")
	}
	if m.OrganizationID == "" {
		return fmt.Errorf("memory organization ID is required")
	}
	if m.Content == "" {
		return fmt.Errorf("memory content is required")
	}
	if !m.MemoryType.IsValid() {
		return fmt.Errorf("invalid memory type: %q", m.MemoryType)
	}
	if m.ImportanceScore < 0 || m.ImportanceScore > 1 {
		return fmt.Errorf("importance score must be in [0,1], got %f", m.ImportanceScore)
	}
	return nil
}

// NewMemoryID generates a unique memory identifier (format: mem:uuid).
func NewMemoryID() string {
	return "mem:" + uuid.NewString()
}
