package testutil

import (
	"context"

	"github.com/surveyloop/surveyloop/internal/domain/usage"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/types"
)

// InMemoryUsageStore implements usage.Repository
type InMemoryUsageStore struct {
	*InMemoryStore[*usage.Record]
}

func NewInMemoryUsageStore() *InMemoryUsageStore {
	return &InMemoryUsageStore{
		InMemoryStore: NewInMemoryStore[*usage.Record](),
	}
}

func (s *InMemoryUsageStore) Create(ctx context.Context, record *usage.Record) error {
	if record == nil {
		return ierr.NewError("usage record cannot be nil").
			Mark(ierr.ErrValidation)
	}
	copied := *record
	return s.InMemoryStore.Set(ctx, record.ID, &copied)
}

func (s *InMemoryUsageStore) Count(ctx context.Context, tenantID string, category types.QuotaCategory, weekKey string) (int64, error) {
	return s.InMemoryStore.Count(ctx, func(r *usage.Record) bool {
		return r.TenantID == tenantID && r.Category == category && r.WeekKey == weekKey
	}), nil
}
