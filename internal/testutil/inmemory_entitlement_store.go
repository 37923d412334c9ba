package testutil

import (
	"context"
	"fmt"

	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/types"
)

// InMemoryEntitlementStore implements entitlement.Repository
type InMemoryEntitlementStore struct {
	*InMemoryStore[*entitlement.SubscriptionRecord]
}

func NewInMemoryEntitlementStore() *InMemoryEntitlementStore {
	return &InMemoryEntitlementStore{
		InMemoryStore: NewInMemoryStore[*entitlement.SubscriptionRecord](),
	}
}

func recordKey(origin types.SubscriptionOrigin, subscriptionID string) string {
	return fmt.Sprintf("%s:%s", origin, subscriptionID)
}

func copyRecord(r *entitlement.SubscriptionRecord) *entitlement.SubscriptionRecord {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}

func (s *InMemoryEntitlementStore) Get(ctx context.Context, origin types.SubscriptionOrigin, subscriptionID string) (*entitlement.SubscriptionRecord, error) {
	record, err := s.InMemoryStore.Get(ctx, recordKey(origin, subscriptionID))
	if err != nil {
		return nil, ierr.NewError("subscription record not found").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
				"origin":          origin,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyRecord(record), nil
}

func (s *InMemoryEntitlementStore) Upsert(ctx context.Context, record *entitlement.SubscriptionRecord) error {
	if record == nil {
		return ierr.NewError("subscription record cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Set(ctx, recordKey(record.Origin, record.SubscriptionID), copyRecord(record))
}

func (s *InMemoryEntitlementStore) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*entitlement.SubscriptionRecord, error) {
	records := s.InMemoryStore.List(ctx, func(r *entitlement.SubscriptionRecord) bool {
		return r.SubscriptionID == subscriptionID
	})
	if len(records) == 0 {
		return nil, ierr.NewError("no records for subscription").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrNotFound)
	}

	out := make([]*entitlement.SubscriptionRecord, 0, len(records))
	for _, r := range records {
		out = append(out, copyRecord(r))
	}
	return out, nil
}

func (s *InMemoryEntitlementStore) ListByTenant(ctx context.Context, tenantID string) ([]*entitlement.SubscriptionRecord, error) {
	records := s.InMemoryStore.List(ctx, func(r *entitlement.SubscriptionRecord) bool {
		return r.UserTenant == tenantID
	})

	out := make([]*entitlement.SubscriptionRecord, 0, len(records))
	for _, r := range records {
		out = append(out, copyRecord(r))
	}
	return out, nil
}
