package types

// FeatureFlags holds the plan-derived boolean switches relevant to the
// summarization engine.
type FeatureFlags struct {
	// EnableMemorySummarization gates the whole pipeline. When false,
	// SummarizeAllMemories returns zero summaries without fetching anything.
	EnableMemorySummarization bool `json:"enable_memory_summarization"`
}

// SummarizationConfig is the effective per-organization summarization
// configuration, recomputed from the subscription plan on every run and
// never cached (organizations change plans between runs).
type SummarizationConfig struct {
	// MaxMemoriesPerSummary caps the cluster size fed to the summarizer.
	// Always >= 1.
	MaxMemoriesPerSummary int `json:"max_memories_per_summary"`

	// SimilarityThreshold is the minimum cosine similarity for two memories
	// to co-cluster, in [0,1].
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// MinMemoriesForSummary skips clusters smaller than this. Always >= 1.
	MinMemoriesForSummary int `json:"min_memories_for_summary"`

	// SubscriptionTier is the plan label, for diagnostics only.
	SubscriptionTier string `json:"subscription_tier"`

	// MaxSummaryChars caps the length requested from the generative service.
	MaxSummaryChars int `json:"max_summary_chars"`

	// Features holds the plan's boolean gates.
	Features FeatureFlags `json:"features"`
}

// DefaultSummarizationConfig returns the hard-coded fallback used whenever
// the subscription or plan lookup fails. The free tier still enables
// summarization, at reduced limits; the only strict gate is the explicit
// feature flag, not the tier name.
func DefaultSummarizationConfig() SummarizationConfig {
	return SummarizationConfig{
		MaxMemoriesPerSummary: 10,
		SimilarityThreshold:   0.8,
		MinMemoriesForSummary: 2,
		SubscriptionTier:      "free",
		MaxSummaryChars:       500,
		Features: FeatureFlags{
			EnableMemorySummarization: true,
		},
	}
}

// SummarizationConfigFromPlan maps a raw subscription plan payload to a
// typed SummarizationConfig. Missing or malformed feature values fall back
// to the corresponding default, so a partially populated plan degrades
// field by field rather than failing the run.
func SummarizationConfigFromPlan(plan *SubscriptionPlan) SummarizationConfig {
	cfg := DefaultSummarizationConfig()
	if plan == nil {
		return cfg
	}

	if plan.Name != "" {
		cfg.SubscriptionTier = plan.Name
	}
	if v, ok := featureInt(plan.Features, "max_memories_per_summary"); ok && v >= 1 {
		cfg.MaxMemoriesPerSummary = v
	}
	if v, ok := featureFloat(plan.Features, "similarity_threshold"); ok && v >= 0 && v <= 1 {
		cfg.SimilarityThreshold = v
	}
	if v, ok := featureInt(plan.Features, "min_memories_for_summary"); ok && v >= 1 {
		cfg.MinMemoriesForSummary = v
	}
	if v, ok := featureInt(plan.Features, "max_summary_chars"); ok && v >= 1 {
		cfg.MaxSummaryChars = v
	}
	if v, ok := featureBool(plan.Features, "enable_memory_summarization"); ok {
		cfg.Features.EnableMemorySummarization = v
	}
	return cfg
}

// featureInt extracts an integer feature value. JSON-decoded payloads carry
// numbers as float64, so both representations are accepted.
func featureInt(features map[string]interface{}, key string) (int, bool) {
	switch v := features[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

func featureFloat(features map[string]interface{}, key string) (float64, bool) {
	switch v := features[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func featureBool(features map[string]interface{}, key string) (bool, bool) {
	v, ok := features[key].(bool)
	return v, ok
}
