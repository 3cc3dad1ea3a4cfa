package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/harborcrm/recall/internal/llm"
	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/pkg/types"
)

// Options tunes engine behavior.
type Options struct {
	// CompletionsPerSecond rate-limits generative-service calls across the
	// whole engine. <= 0 disables the limiter.
	CompletionsPerSecond float64

	// CompletionBurst is the limiter burst size (default: 1).
	CompletionBurst int
}

// SummarizationResult aggregates the outcome of one summarization run.
type SummarizationResult struct {
	// TotalSummaries is the number of summaries persisted this run.
	TotalSummaries int `json:"total_summaries"`

	// SummaryIDs lists the IDs of the persisted summary memories, in the
	// deterministic cluster-processing order of the run.
	SummaryIDs []string `json:"summary_ids"`
}

// Engine orchestrates memory summarization for one organization at a time:
// resolve config, gate on the plan's feature flag, fetch eligible memories,
// cluster by type then by embedding similarity, summarize each cluster, and
// persist each summary with lineage back to its sources.
//
// All collaborators are injected at construction; the engine holds no
// global state and no cross-organization state, so concurrent runs for
// different organizations are safe. Runs for the same organization within
// one process serialize on an advisory per-organization lock; runs in
// separate processes are not mutually excluded.
type Engine struct {
	memories   storage.MemoryStore
	resolver   *ConfigResolver
	summarizer *Summarizer
	lineage    *LineageStore
	scheduler  *Scheduler

	// orgLocks serializes same-organization runs within this process.
	orgLocksMu sync.Mutex
	orgLocks   map[string]*sync.Mutex

	// onRunComplete, when set, fires after every summarization run with the
	// run's scope and aggregate result. Used for cross-process notification.
	onRunComplete func(organizationID, userID string, result *SummarizationResult)
}

// NewEngine creates a summarization engine with the given collaborators.
func NewEngine(memories storage.MemoryStore, subscriptions storage.SubscriptionStore, jobs storage.JobStore, generator llm.TextGenerator, opts Options) (*Engine, error) {
	if memories == nil {
		return nil, fmt.Errorf("memory store is required")
	}
	if subscriptions == nil {
		return nil, fmt.Errorf("subscription store is required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job store is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("text generator is required")
	}

	return &Engine{
		memories:   memories,
		resolver:   NewConfigResolver(subscriptions),
		summarizer: NewSummarizer(generator, opts.CompletionsPerSecond, opts.CompletionBurst),
		lineage:    NewLineageStore(memories),
		scheduler:  NewScheduler(jobs),
		orgLocks:   make(map[string]*sync.Mutex),
	}, nil
}

// SetOnRunComplete sets a callback fired after every completed
// summarization run, including gated and empty runs. Runs that abort with
// an error do not fire it.
func (e *Engine) SetOnRunComplete(callback func(organizationID, userID string, result *SummarizationResult)) {
	e.onRunComplete = callback
}

// GetConfigForOrganization resolves the organization's effective
// summarization configuration. It never fails; lookup errors degrade to
// the default config.
func (e *Engine) GetConfigForOrganization(ctx context.Context, organizationID string) types.SummarizationConfig {
	return e.resolver.GetConfigForOrganization(ctx, organizationID)
}

// StoreSummaryAsMemory persists a summary memory with lineage edges to its
// sources. See LineageStore.StoreSummaryAsMemory.
func (e *Engine) StoreSummaryAsMemory(ctx context.Context, summary *types.Memory, sources []*types.Memory, organizationID, userID string) (string, error) {
	return e.lineage.StoreSummaryAsMemory(ctx, summary, sources, organizationID, userID)
}

// ScheduleRegularSummarization registers a recurring summarization job for
// the organization. See Scheduler.ScheduleRegularSummarization.
func (e *Engine) ScheduleRegularSummarization(ctx context.Context, organizationID string, intervalHours int) (string, error) {
	return e.scheduler.ScheduleRegularSummarization(ctx, organizationID, intervalHours)
}

// SummarizeAllMemories runs one full summarization pass for the given
// organization, optionally scoped to one user. Per-cluster failures
// (generation or persistence) are logged and skipped; they never abort the
// remaining clusters. The returned error is non-nil only when the run
// cannot proceed at all (the eligible-memory fetch failed).
func (e *Engine) SummarizeAllMemories(ctx context.Context, organizationID, userID string) (*SummarizationResult, error) {
	if organizationID == "" {
		return nil, fmt.Errorf("%w: organization ID is required", storage.ErrInvalidInput)
	}

	unlock := e.lockOrganization(organizationID)
	defer unlock()

	result := &SummarizationResult{SummaryIDs: []string{}}
	runFailed := false
	defer func() {
		if e.onRunComplete != nil && !runFailed {
			e.onRunComplete(organizationID, userID, result)
		}
	}()

	cfg := e.resolver.GetConfigForOrganization(ctx, organizationID)
	if !cfg.Features.EnableMemorySummarization {
		log.Printf("summarization disabled for org %s (tier %s), skipping run", organizationID, cfg.SubscriptionTier)
		return result, nil
	}

	memories, err := e.memories.FetchEligibleMemories(ctx, organizationID, userID)
	if err != nil {
		runFailed = true
		return nil, fmt.Errorf("failed to fetch eligible memories: %w", err)
	}
	if len(memories) == 0 {
		return result, nil
	}

	groups := ClusterMemoriesByType(memories)

	// Process type partitions in first-seen input order so a run over
	// identical input is deterministic.
	for _, memoryType := range typeOrder(memories) {
		clusters := ClusterMemoriesBySimilarity(groups[memoryType], cfg.SimilarityThreshold)

		for _, cluster := range clusters {
			if len(cluster) < cfg.MinMemoriesForSummary {
				continue
			}
			cluster = truncateByImportance(cluster, cfg.MaxMemoriesPerSummary)

			id, ok := e.summarizeMemoryGroup(ctx, cluster, memoryType, cfg, organizationID, userID)
			if ok {
				result.SummaryIDs = append(result.SummaryIDs, id)
			}
		}
	}

	result.TotalSummaries = len(result.SummaryIDs)
	log.Printf("summarization run complete for org %s: %d summaries from %d memories", organizationID, result.TotalSummaries, len(memories))
	return result, nil
}

// summarizeMemoryGroup generates and persists one summary for a cluster.
// Returns (id, true) on success and ("", false) when the cluster was
// skipped because generation or persistence failed.
func (e *Engine) summarizeMemoryGroup(ctx context.Context, cluster []*types.Memory, memoryType types.MemoryType, cfg types.SummarizationConfig, organizationID, userID string) (string, bool) {
	texts := make([]string, len(cluster))
	var importanceSum float64
	for i, m := range cluster {
		texts[i] = m.Content
		importanceSum += m.ImportanceScore
	}

	summaryText, err := e.summarizer.GenerateSummary(ctx, texts, memoryType, cfg.MaxSummaryChars)
	if err != nil {
		log.Printf("WARNING: summary generation failed for a %d-memory %s cluster in org %s: %v", len(cluster), memoryType, organizationID, err)
		return "", false
	}
	if summaryText == "" {
		return "", false
	}

	summary := &types.Memory{
		ID:              types.NewMemoryID(),
		Content:         summaryText,
		MemoryType:      types.MemoryTypeInsight,
		ImportanceScore: importanceSum / float64(len(cluster)),
		Metadata: map[string]interface{}{
			"source_type": string(memoryType),
		},
		CreatedAt: time.Now(),
	}

	id, err := e.lineage.StoreSummaryAsMemory(ctx, summary, cluster, organizationID, userID)
	if err != nil {
		log.Printf("WARNING: failed to persist summary for a %s cluster in org %s: %v", memoryType, organizationID, err)
		return "", false
	}

	return id, true
}

// typeOrder returns the distinct memory types in first-seen input order.
func typeOrder(memories []*types.Memory) []types.MemoryType {
	seen := make(map[types.MemoryType]bool)
	var order []types.MemoryType
	for _, m := range memories {
		if !seen[m.MemoryType] {
			seen[m.MemoryType] = true
			order = append(order, m.MemoryType)
		}
	}
	return order
}

// truncateByImportance caps a cluster at max members, keeping the highest
// importance scores. Ties keep input order (stable sort), so truncation is
// deterministic for identical input.
func truncateByImportance(cluster []*types.Memory, max int) []*types.Memory {
	if max < 1 || len(cluster) <= max {
		return cluster
	}
	kept := make([]*types.Memory, len(cluster))
	copy(kept, cluster)
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ImportanceScore > kept[j].ImportanceScore
	})
	return kept[:max]
}

// lockOrganization acquires the advisory per-organization run lock and
// returns its release function.
func (e *Engine) lockOrganization(organizationID string) func() {
	e.orgLocksMu.Lock()
	mu, ok := e.orgLocks[organizationID]
	if !ok {
		mu = &sync.Mutex{}
		e.orgLocks[organizationID] = mu
	}
	e.orgLocksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
