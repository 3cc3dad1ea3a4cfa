package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/pkg/types"
)

func TestStoreSummaryAsMemory_StampsScopeAndMetadata(t *testing.T) {
	store := newFakeMemoryStore()
	lineage := NewLineageStore(store)

	sources := []*types.Memory{
		newTestMemory("mem:src-1", types.MemoryTypePreference, nil),
		newTestMemory("mem:src-2", types.MemoryTypePreference, nil),
	}
	summary := &types.Memory{
		Content:         "Customer prefers async communication.",
		ImportanceScore: 0.6,
	}

	id, err := lineage.StoreSummaryAsMemory(context.Background(), summary, sources, "org:1", "user:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty summary ID")
	}

	stored, err := store.GetMemory(context.Background(), "org:1", id)
	if err != nil {
		t.Fatalf("summary not found: %v", err)
	}
	if stored.OrganizationID != "org:1" {
		t.Errorf("OrganizationID = %q, want org:1", stored.OrganizationID)
	}
	if stored.UserID != "user:1" {
		t.Errorf("UserID = %q, want user:1", stored.UserID)
	}
	if stored.MemoryType != types.MemoryTypeInsight {
		t.Errorf("MemoryType = %q, want insight", stored.MemoryType)
	}
	if !stored.IsSummary() {
		t.Error("stored summary should have is_summary metadata")
	}
	if count, _ := stored.Metadata["source_count"].(int); count != 2 {
		t.Errorf("source_count = %v, want 2", stored.Metadata["source_count"])
	}

	rels := store.relationshipsFrom(id)
	if len(rels) != 2 {
		t.Fatalf("expected 2 derived_from edges, got %d", len(rels))
	}
	targets := map[string]bool{}
	for _, r := range rels {
		if r.RelationshipType != types.RelationshipDerivedFrom {
			t.Errorf("relationship type = %q, want derived_from", r.RelationshipType)
		}
		if r.OrganizationID != "org:1" {
			t.Errorf("relationship org = %q, want org:1", r.OrganizationID)
		}
		targets[r.ToID] = true
	}
	if !targets["mem:src-1"] || !targets["mem:src-2"] {
		t.Errorf("edges do not cover both sources: %v", targets)
	}
}

func TestStoreSummaryAsMemory_NilSummaryIsInvalid(t *testing.T) {
	lineage := NewLineageStore(newFakeMemoryStore())

	_, err := lineage.StoreSummaryAsMemory(context.Background(), nil, nil, "org:1", "")
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStoreSummaryAsMemory_MissingOrganizationIsInvalid(t *testing.T) {
	lineage := NewLineageStore(newFakeMemoryStore())

	_, err := lineage.StoreSummaryAsMemory(context.Background(), &types.Memory{Content: "x"}, nil, "", "")
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStoreSummaryAsMemory_MemoryInsertFailureWritesNoEdges(t *testing.T) {
	store := newFakeMemoryStore()
	store.insertMemErr = errFakeStore
	lineage := NewLineageStore(store)

	sources := []*types.Memory{newTestMemory("mem:src-1", types.MemoryTypeFeedback, nil)}
	id, err := lineage.StoreSummaryAsMemory(context.Background(), &types.Memory{Content: "x"}, sources, "org:1", "")
	if err == nil {
		t.Fatal("expected error when memory insert fails")
	}
	if id != "" {
		t.Errorf("expected empty ID on failure, got %q", id)
	}
	if store.insertRelCalls != 0 {
		t.Errorf("relationship insert called %d times after memory failure, want 0", store.insertRelCalls)
	}
}

func TestStoreSummaryAsMemory_EdgeFailureStillReturnsID(t *testing.T) {
	store := newFakeMemoryStore()
	store.insertRelErr = errFakeStore
	lineage := NewLineageStore(store)

	sources := []*types.Memory{newTestMemory("mem:src-1", types.MemoryTypeFeedback, nil)}
	id, err := lineage.StoreSummaryAsMemory(context.Background(), &types.Memory{Content: "x"}, sources, "org:1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected summary ID even when edge insert fails")
	}
	if _, err := store.GetMemory(context.Background(), "org:1", id); err != nil {
		t.Errorf("summary row should exist despite edge failure: %v", err)
	}
}

func TestStoreSummaryAsMemory_NoSourcesNoEdges(t *testing.T) {
	store := newFakeMemoryStore()
	lineage := NewLineageStore(store)

	id, err := lineage.StoreSummaryAsMemory(context.Background(), &types.Memory{Content: "x", CreatedAt: time.Now()}, nil, "org:1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.insertRelCalls != 0 {
		t.Errorf("relationship insert called %d times for zero sources, want 0", store.insertRelCalls)
	}
	if len(store.relationshipsFrom(id)) != 0 {
		t.Error("expected no edges for summary with no sources")
	}
}
