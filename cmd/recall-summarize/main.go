// Command recall-summarize runs the memory summarization engine for one
// organization: a single pass over its eligible memories, or registration
// of a recurring job for the external dispatcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harborcrm/recall/internal/config"
	"github.com/harborcrm/recall/internal/engine"
	"github.com/harborcrm/recall/internal/llm"
	"github.com/harborcrm/recall/internal/notify"
	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/internal/storage/postgres"
	"github.com/harborcrm/recall/internal/storage/sqlite"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file (optional, uses env vars by default)")
	orgID      = flag.String("org", "", "Organization ID to summarize (required)")
	userID     = flag.String("user", "", "Optional user ID to narrow the run")
	schedule   = flag.Int("schedule", 0, "Register a recurring job with this interval in hours instead of running now")
	showConfig = flag.Bool("show-config", false, "Print the organization's effective summarization config and exit")
)

// store is the composite interface both backends satisfy.
type store interface {
	storage.MemoryStore
	storage.SubscriptionStore
	storage.JobStore
}

func main() {
	flag.Parse()

	if *orgID == "" {
		fmt.Fprintln(os.Stderr, "recall-summarize: -org is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer st.Close()

	generator, err := llm.NewTextGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	eng, err := engine.NewEngine(st, st, st, generator, engine.Options{
		CompletionsPerSecond: cfg.Engine.CompletionsPerSecond,
		CompletionBurst:      cfg.Engine.CompletionBurst,
	})
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	if cfg.Notify.EventsPath != "" {
		writer := notify.NewEventWriter(cfg.Notify.EventsPath)
		eng.SetOnRunComplete(func(organizationID, runUserID string, result *engine.SummarizationResult) {
			if err := writer.NotifyRunComplete(organizationID, runUserID, result.TotalSummaries, result.SummaryIDs); err != nil {
				log.Printf("WARNING: failed to write run event: %v", err)
			}
		})
	}

	ctx := context.Background()

	if *showConfig {
		printConfig(ctx, eng)
		return
	}

	if *schedule > 0 {
		jobID, err := eng.ScheduleRegularSummarization(ctx, *orgID, *schedule)
		if err != nil {
			log.Fatalf("Failed to schedule summarization: %v", err)
		}
		fmt.Printf("Scheduled summarization every %dh for org %s (job %s)\n", *schedule, *orgID, jobID)
		return
	}

	result, err := eng.SummarizeAllMemories(ctx, *orgID, *userID)
	if err != nil {
		log.Fatalf("Summarization run failed: %v", err)
	}

	fmt.Printf("Created %d summaries for org %s\n", result.TotalSummaries, *orgID)
	for _, id := range result.SummaryIDs {
		fmt.Printf("  %s\n", id)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadConfigFromFile(*configPath)
	}
	return config.LoadConfig()
}

// openStore selects the storage backend from config.
func openStore(cfg *config.Config) (store, error) {
	switch cfg.Storage.Engine {
	case "postgres":
		if cfg.Storage.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires RECALL_POSTGRES_DSN")
		}
		return postgres.NewStore(cfg.Storage.PostgresDSN)
	case "sqlite", "":
		return sqlite.NewStore(cfg.Storage.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported storage engine: %q", cfg.Storage.Engine)
	}
}

func printConfig(ctx context.Context, eng *engine.Engine) {
	sc := eng.GetConfigForOrganization(ctx, *orgID)
	fmt.Printf("Organization:            %s\n", *orgID)
	fmt.Printf("Subscription tier:       %s\n", sc.SubscriptionTier)
	fmt.Printf("Summarization enabled:   %t\n", sc.Features.EnableMemorySummarization)
	fmt.Printf("Similarity threshold:    %.2f\n", sc.SimilarityThreshold)
	fmt.Printf("Min memories per summary: %d\n", sc.MinMemoriesForSummary)
	fmt.Printf("Max memories per summary: %d\n", sc.MaxMemoriesPerSummary)
	fmt.Printf("Max summary chars:       %d\n", sc.MaxSummaryChars)
}
