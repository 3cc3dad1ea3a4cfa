package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harborcrm/recall/internal/storage"
	"github.com/harborcrm/recall/pkg/types"
)

// GetSubscriptionForOrganization returns the organization's active
// subscription. Returns storage.ErrNotFound when the organization has no
// active subscription.
func (s *Store) GetSubscriptionForOrganization(ctx context.Context, organizationID string) (*types.Subscription, error) {
	if organizationID == "" {
		return nil, fmt.Errorf("%w: organization ID is required", storage.ErrInvalidInput)
	}

	sub := &types.Subscription{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, organization_id, subscription_plan_id, status, created_at
		FROM subscriptions
		WHERE organization_id = $1 AND status = 'active'
	`, organizationID).Scan(&sub.ID, &sub.OrganizationID, &sub.SubscriptionPlanID, &sub.Status, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query subscription: %w", err)
	}

	return sub, nil
}

// GetPlan returns a subscription plan by ID, including its raw feature
// payload. Returns storage.ErrNotFound when the plan does not exist.
func (s *Store) GetPlan(ctx context.Context, planID string) (*types.SubscriptionPlan, error) {
	if planID == "" {
		return nil, fmt.Errorf("%w: plan ID is required", storage.ErrInvalidInput)
	}

	plan := &types.SubscriptionPlan{}
	var featuresRaw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, features FROM subscription_plans WHERE id = $1
	`, planID).Scan(&plan.ID, &plan.Name, &featuresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query plan: %w", err)
	}

	if len(featuresRaw) > 0 {
		if err := json.Unmarshal(featuresRaw, &plan.Features); err != nil {
			return nil, fmt.Errorf("postgres: failed to unmarshal plan features for %s: %w", planID, err)
		}
	}

	return plan, nil
}

// Compile-time assertion.
var _ storage.SubscriptionStore = (*Store)(nil)
