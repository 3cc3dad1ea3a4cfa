package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/pkg/types"
)

// fakeMemoryStore is an in-memory MemoryStore that records every write
// so tests can assert on exactly what the engine persisted.
type fakeMemoryStore struct {
	mu            sync.Mutex
	memories      map[string]*types.Memory
	order         []string
	relationships []*types.MemoryRelationship

	fetchErr       error
	insertMemErr   error
	insertRelErr   error
	fetchedOrgIDs  []string
	insertedOrgIDs []string
	insertMemCalls int
	insertRelCalls int
}

func newFakeMemoryStore() *fakeMemoryStore {
	return &fakeMemoryStore{memories: make(map[string]*types.Memory)}
}

func (s *fakeMemoryStore) seed(memories ...*types.Memory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range memories {
		if _, exists := s.memories[m.ID]; !exists {
			s.order = append(s.order, m.ID)
		}
		s.memories[m.ID] = m
	}
}

func (s *fakeMemoryStore) FetchEligibleMemories(ctx context.Context, organizationID, userID string) ([]*types.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchedOrgIDs = append(s.fetchedOrgIDs, organizationID)
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	// Insertion order stands in for the real stores' created_at ordering.
	var out []*types.Memory
	for _, id := range s.order {
		m := s.memories[id]
		if m.OrganizationID != organizationID {
			continue
		}
		if userID != "" && m.UserID != userID {
			continue
		}
		if m.IsSummary() || m.MemoryType == types.MemoryTypeInsight {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *fakeMemoryStore) InsertMemory(ctx context.Context, memory *types.Memory) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertMemCalls++
	if s.insertMemErr != nil {
		return "", s.insertMemErr
	}
	if memory.ID == "" {
		memory.ID = fmt.Sprintf("mem:fake-%d", s.insertMemCalls)
	}
	if _, exists := s.memories[memory.ID]; !exists {
		s.order = append(s.order, memory.ID)
	}
	s.memories[memory.ID] = memory
	s.insertedOrgIDs = append(s.insertedOrgIDs, memory.OrganizationID)
	return memory.ID, nil
}

func (s *fakeMemoryStore) InsertRelationships(ctx context.Context, relationships []*types.MemoryRelationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertRelCalls++
	if s.insertRelErr != nil {
		return s.insertRelErr
	}
	s.relationships = append(s.relationships, relationships...)
	return nil
}

func (s *fakeMemoryStore) GetMemory(ctx context.Context, organizationID, id string) (*types.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memories[id]
	if !ok || m.OrganizationID != organizationID {
		return nil, storage.ErrNotFound
	}
	return m, nil
}

func (s *fakeMemoryStore) GetRelationships(ctx context.Context, organizationID, fromID string) ([]*types.MemoryRelationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.MemoryRelationship
	for _, r := range s.relationships {
		if r.OrganizationID == organizationID && r.FromID == fromID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeMemoryStore) Close() error { return nil }

func (s *fakeMemoryStore) summaries() []*types.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Memory
	for _, m := range s.memories {
		if m.IsSummary() {
			out = append(out, m)
		}
	}
	return out
}

func (s *fakeMemoryStore) relationshipsFrom(fromID string) []*types.MemoryRelationship {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.MemoryRelationship
	for _, r := range s.relationships {
		if r.FromID == fromID {
			out = append(out, r)
		}
	}
	return out
}

var _ storage.MemoryStore = (*fakeMemoryStore)(nil)

// fakeSubscriptionStore serves a single subscription/plan pair, or errors.
type fakeSubscriptionStore struct {
	subscription *types.Subscription
	plan         *types.SubscriptionPlan
	subErr       error
	planErr      error
}

func (s *fakeSubscriptionStore) GetSubscriptionForOrganization(ctx context.Context, organizationID string) (*types.Subscription, error) {
	if s.subErr != nil {
		return nil, s.subErr
	}
	if s.subscription == nil || s.subscription.OrganizationID != organizationID {
		return nil, storage.ErrNotFound
	}
	return s.subscription, nil
}

func (s *fakeSubscriptionStore) GetPlan(ctx context.Context, planID string) (*types.SubscriptionPlan, error) {
	if s.planErr != nil {
		return nil, s.planErr
	}
	if s.plan == nil || s.plan.ID != planID {
		return nil, storage.ErrNotFound
	}
	return s.plan, nil
}

var _ storage.SubscriptionStore = (*fakeSubscriptionStore)(nil)

// fakeJobStore records inserted jobs.
type fakeJobStore struct {
	jobs      []*types.ScheduledJob
	insertErr error
}

func (s *fakeJobStore) InsertScheduledJob(ctx context.Context, job *types.ScheduledJob) (string, error) {
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.jobs = append(s.jobs, job)
	return job.ID, nil
}

var _ storage.JobStore = (*fakeJobStore)(nil)

// fakeGenerator returns a canned response and counts calls.
type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	prompts  []string
}

func (g *fakeGenerator) Complete(ctx context.Context, prompt string, maxOutputChars int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func (g *fakeGenerator) GetModel() string { return "fake-model" }

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var errFakeStore = errors.New("fake store failure")
var errFakeLLM = errors.New("fake llm failure")
