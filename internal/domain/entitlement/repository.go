package entitlement

import (
	"context"

	"github.com/surveyloop/surveyloop/internal/types"
)

// Repository is the durable store for subscription records, addressed
// by (origin partition, subscription id).
type Repository interface {
	// Get returns the record stored under the given partition, or an
	// error marked ErrNotFound.
	Get(ctx context.Context, origin types.SubscriptionOrigin, subscriptionID string) (*SubscriptionRecord, error)

	// Upsert creates or fully replaces the record under its
	// (origin, subscription_id) address.
	Upsert(ctx context.Context, record *SubscriptionRecord) error

	// ListBySubscriptionID returns the records held under every origin
	// partition for the given subscription id.
	ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*SubscriptionRecord, error)

	// ListByTenant returns every record whose purchaser belongs to the
	// given tenant.
	ListByTenant(ctx context.Context, tenantID string) ([]*SubscriptionRecord, error)
}
