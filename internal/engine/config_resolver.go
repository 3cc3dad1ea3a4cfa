package engine

import (
	"context"
	"errors"
	"log"

	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/pkg/types"
)

// ConfigResolver resolves an organization's effective summarization
// configuration from its subscription plan. Lookup failures of any kind
// degrade to the hard-coded default config; the resolver never fails a run.
//
// The config is recomputed on every call and never cached, since
// organizations can change plans between runs.
type ConfigResolver struct {
	subscriptions storage.SubscriptionStore
}

// NewConfigResolver creates a resolver backed by the given subscription store.
func NewConfigResolver(subscriptions storage.SubscriptionStore) *ConfigResolver {
	return &ConfigResolver{subscriptions: subscriptions}
}

// GetConfigForOrganization returns the effective SummarizationConfig for
// the organization. Missing subscription, missing plan, and store errors
// all fall back to types.DefaultSummarizationConfig.
func (r *ConfigResolver) GetConfigForOrganization(ctx context.Context, organizationID string) types.SummarizationConfig {
	sub, err := r.subscriptions.GetSubscriptionForOrganization(ctx, organizationID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("WARNING: subscription lookup failed for org %s, using default config: %v", organizationID, err)
		}
		return types.DefaultSummarizationConfig()
	}

	plan, err := r.subscriptions.GetPlan(ctx, sub.SubscriptionPlanID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("WARNING: plan lookup failed for org %s (plan %s), using default config: %v", organizationID, sub.SubscriptionPlanID, err)
		}
		return types.DefaultSummarizationConfig()
	}

	return types.SummarizationConfigFromPlan(plan)
}
