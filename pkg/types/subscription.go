package types

import "time"

// Subscription links an organization to its active subscription plan.
type Subscription struct {
	ID                 string    `json:"id"`                   // Unique identifier
	OrganizationID     string    `json:"organization_id"`      // Tenant identifier
	SubscriptionPlanID string    `json:"subscription_plan_id"` // The plan this organization is on
	Status             string    `json:"status"`               // e.g. "active", "cancelled"
	CreatedAt          time.Time `json:"created_at"`
}

// SubscriptionPlan describes a billing tier and its feature payload.
// Features is the raw, open key/value bag as persisted by the billing
// system; SummarizationConfigFromPlan maps it to the typed config the
// engine consumes, so the rest of the pipeline never does stringly-typed
// lookups.
type SubscriptionPlan struct {
	ID       string                 `json:"id"`       // Unique identifier
	Name     string                 `json:"name"`     // Tier label, e.g. "free", "pro", "enterprise"
	Features map[string]interface{} `json:"features"` // Raw feature payload (limits, flags)
}
