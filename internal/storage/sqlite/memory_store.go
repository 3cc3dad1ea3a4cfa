package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/pkg/types"
)

// FetchEligibleMemories returns the organization's memories eligible for
// summarization, oldest first. Derived insight records are excluded so
// routine runs do not re-summarize their own output. An empty userID
// returns memories for all users in the organization.
func (s *Store) FetchEligibleMemories(ctx context.Context, organizationID, userID string) ([]*types.Memory, error) {
	if organizationID == "" {
		return nil, fmt.Errorf("%w: organization ID is required", storage.ErrInvalidInput)
	}

	query := `
		SELECT id, organization_id, user_id, content, content_embedding,
		       memory_type, importance_score, metadata, created_at
		FROM memories
		WHERE organization_id = ? AND memory_type != ?
	`
	args := []interface{}{organizationID, string(types.MemoryTypeInsight)}

	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query eligible memories: %w", err)
	}
	defer rows.Close()

	var memories []*types.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate memories: %w", err)
	}

	return memories, nil
}

// InsertMemory persists a new memory row and returns its ID.
func (s *Store) InsertMemory(ctx context.Context, memory *types.Memory) (string, error) {
	if memory == nil {
		return "", storage.ErrInvalidInput
	}
	if err := memory.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	var metadataJSON []byte
	if memory.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(memory.Metadata)
		if err != nil {
			return "", fmt.Errorf("sqlite: failed to marshal metadata: %w", err)
		}
	}

	if memory.CreatedAt.IsZero() {
		memory.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, organization_id, user_id, content, content_embedding,
		                      memory_type, importance_score, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		memory.ID,
		memory.OrganizationID,
		nullString(memory.UserID),
		memory.Content,
		serializeEmbedding(memory.ContentEmbedding),
		string(memory.MemoryType),
		memory.ImportanceScore,
		nullBytes(metadataJSON),
		memory.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: failed to insert memory: %w", err)
	}

	return memory.ID, nil
}

// InsertRelationships persists the given derivation edges in one transaction.
func (s *Store) InsertRelationships(ctx context.Context, rels []*types.MemoryRelationship) error {
	if len(rels) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO memory_relationships (id, organization_id, from_id, to_id, relationship_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite: failed to prepare relationship insert: %w", err)
	}
	defer stmt.Close()

	for _, rel := range rels {
		if err := rel.Validate(); err != nil {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		if rel.CreatedAt.IsZero() {
			rel.CreatedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, rel.ID, rel.OrganizationID, rel.FromID, rel.ToID, rel.RelationshipType, rel.CreatedAt); err != nil {
			return fmt.Errorf("sqlite: failed to insert relationship %s: %w", rel.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: failed to commit relationships: %w", err)
	}
	return nil
}

// GetMemory retrieves one memory by ID within an organization.
func (s *Store) GetMemory(ctx context.Context, organizationID, id string) (*types.Memory, error) {
	if organizationID == "" || id == "" {
		return nil, fmt.Errorf("%w: organization ID and memory ID are required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, organization_id, user_id, content, content_embedding,
		       memory_type, importance_score, metadata, created_at
		FROM memories
		WHERE organization_id = ? AND id = ?
	`, organizationID, id)

	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetRelationships returns the outgoing edges of the given memory within an
// organization.
func (s *Store) GetRelationships(ctx context.Context, organizationID, fromID string) ([]*types.MemoryRelationship, error) {
	if organizationID == "" || fromID == "" {
		return nil, fmt.Errorf("%w: organization ID and from ID are required", storage.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organization_id, from_id, to_id, relationship_type, created_at
		FROM memory_relationships
		WHERE organization_id = ? AND from_id = ?
		ORDER BY created_at ASC, id ASC
	`, organizationID, fromID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query relationships: %w", err)
	}
	defer rows.Close()

	var rels []*types.MemoryRelationship
	for rows.Next() {
		rel := &types.MemoryRelationship{}
		if err := rows.Scan(&rel.ID, &rel.OrganizationID, &rel.FromID, &rel.ToID, &rel.RelationshipType, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan relationship: %w", err)
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate relationships: %w", err)
	}

	return rels, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanMemory reads one memory row.
func scanMemory(row rowScanner) (*types.Memory, error) {
	var (
		m            types.Memory
		userID       sql.NullString
		embeddingRaw []byte
		memoryType   string
		metadataRaw  []byte
	)

	err := row.Scan(&m.ID, &m.OrganizationID, &userID, &m.Content, &embeddingRaw,
		&memoryType, &m.ImportanceScore, &metadataRaw, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: failed to scan memory: %w", err)
	}

	m.UserID = userID.String
	m.MemoryType = types.MemoryType(memoryType)

	m.ContentEmbedding, err = deserializeEmbedding(embeddingRaw)
	if err != nil {
		return nil, err
	}

	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &m.Metadata); err != nil {
			return nil, fmt.Errorf("sqlite: failed to unmarshal metadata for %s: %w", m.ID, err)
		}
	}

	return &m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

// Compile-time assertion.
var _ storage.MemoryStore = (*Store)(nil)
