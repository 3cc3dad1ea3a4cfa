package engine

import (
	"context"
	"testing"
	"time"

	"github.com/harborcrm/recall/pkg/types"
)

func TestGetConfigForOrganization_DefaultsOnMissingSubscription(t *testing.T) {
	resolver := NewConfigResolver(&fakeSubscriptionStore{})

	cfg := resolver.GetConfigForOrganization(context.Background(), "org:unknown")

	if cfg.MaxMemoriesPerSummary != 10 {
		t.Errorf("MaxMemoriesPerSummary = %d, want 10", cfg.MaxMemoriesPerSummary)
	}
	if cfg.SimilarityThreshold != 0.8 {
		t.Errorf("SimilarityThreshold = %f, want 0.8", cfg.SimilarityThreshold)
	}
	if cfg.MinMemoriesForSummary != 2 {
		t.Errorf("MinMemoriesForSummary = %d, want 2", cfg.MinMemoriesForSummary)
	}
	if cfg.SubscriptionTier != "free" {
		t.Errorf("SubscriptionTier = %q, want \"free\"", cfg.SubscriptionTier)
	}
	if !cfg.Features.EnableMemorySummarization {
		t.Error("summarization should be enabled by default")
	}
}

func TestGetConfigForOrganization_DefaultsOnStoreError(t *testing.T) {
	resolver := NewConfigResolver(&fakeSubscriptionStore{subErr: errFakeStore})

	cfg := resolver.GetConfigForOrganization(context.Background(), "org:1")

	defaults := types.DefaultSummarizationConfig()
	if cfg != defaults {
		t.Errorf("expected default config on store error, got %+v", cfg)
	}
}

func TestGetConfigForOrganization_DefaultsOnPlanError(t *testing.T) {
	resolver := NewConfigResolver(&fakeSubscriptionStore{
		subscription: &types.Subscription{
			ID:                 "sub:1",
			OrganizationID:     "org:1",
			SubscriptionPlanID: "plan:pro",
			Status:             "active",
			CreatedAt:          time.Now(),
		},
		planErr: errFakeStore,
	})

	cfg := resolver.GetConfigForOrganization(context.Background(), "org:1")
	if cfg != types.DefaultSummarizationConfig() {
		t.Errorf("expected default config on plan lookup error, got %+v", cfg)
	}
}

func TestGetConfigForOrganization_MapsPlanFeatures(t *testing.T) {
	resolver := NewConfigResolver(&fakeSubscriptionStore{
		subscription: &types.Subscription{
			ID:                 "sub:1",
			OrganizationID:     "org:1",
			SubscriptionPlanID: "plan:pro",
			Status:             "active",
			CreatedAt:          time.Now(),
		},
		plan: &types.SubscriptionPlan{
			ID:   "plan:pro",
			Name: "pro",
			Features: map[string]interface{}{
				"enable_memory_summarization": true,
				"max_memories_per_summary":    float64(25),
				"min_memories_for_summary":    float64(3),
				"similarity_threshold":        0.75,
				"max_summary_chars":           float64(1000),
			},
		},
	})

	cfg := resolver.GetConfigForOrganization(context.Background(), "org:1")

	if cfg.MaxMemoriesPerSummary != 25 {
		t.Errorf("MaxMemoriesPerSummary = %d, want 25", cfg.MaxMemoriesPerSummary)
	}
	if cfg.MinMemoriesForSummary != 3 {
		t.Errorf("MinMemoriesForSummary = %d, want 3", cfg.MinMemoriesForSummary)
	}
	if cfg.SimilarityThreshold != 0.75 {
		t.Errorf("SimilarityThreshold = %f, want 0.75", cfg.SimilarityThreshold)
	}
	if cfg.MaxSummaryChars != 1000 {
		t.Errorf("MaxSummaryChars = %d, want 1000", cfg.MaxSummaryChars)
	}
	if cfg.SubscriptionTier != "pro" {
		t.Errorf("SubscriptionTier = %q, want \"pro\"", cfg.SubscriptionTier)
	}
}

func TestGetConfigForOrganization_PartialPlanFallsBackPerField(t *testing.T) {
	resolver := NewConfigResolver(&fakeSubscriptionStore{
		subscription: &types.Subscription{
			ID:                 "sub:1",
			OrganizationID:     "org:1",
			SubscriptionPlanID: "plan:custom",
			Status:             "active",
			CreatedAt:          time.Now(),
		},
		plan: &types.SubscriptionPlan{
			ID:   "plan:custom",
			Name: "custom",
			Features: map[string]interface{}{
				"max_memories_per_summary": float64(40),
			},
		},
	})

	cfg := resolver.GetConfigForOrganization(context.Background(), "org:1")

	if cfg.MaxMemoriesPerSummary != 40 {
		t.Errorf("MaxMemoriesPerSummary = %d, want 40", cfg.MaxMemoriesPerSummary)
	}
	// Unset keys fall back to defaults field by field.
	if cfg.SimilarityThreshold != 0.8 {
		t.Errorf("SimilarityThreshold = %f, want default 0.8", cfg.SimilarityThreshold)
	}
	if cfg.MinMemoriesForSummary != 2 {
		t.Errorf("MinMemoriesForSummary = %d, want default 2", cfg.MinMemoriesForSummary)
	}
}
