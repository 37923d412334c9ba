package testutil

import (
	"context"
	"fmt"

	"github.com/surveyloop/surveyloop/internal/domain/tenant"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
)

// InMemoryTenantStore implements tenant.Repository
type InMemoryTenantStore struct {
	*InMemoryStore[*tenant.Member]
}

func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{
		InMemoryStore: NewInMemoryStore[*tenant.Member](),
	}
}

func memberKey(tenantID, userID string) string {
	return fmt.Sprintf("%s:%s", tenantID, userID)
}

func copyMember(m *tenant.Member) *tenant.Member {
	if m == nil {
		return nil
	}
	copied := *m
	return &copied
}

func (s *InMemoryTenantStore) Get(ctx context.Context, tenantID, userID string) (*tenant.Member, error) {
	member, err := s.InMemoryStore.Get(ctx, memberKey(tenantID, userID))
	if err != nil {
		return nil, ierr.NewError("tenant member not found").
			WithReportableDetails(map[string]interface{}{
				"tenant_id": tenantID,
				"user_id":   userID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyMember(member), nil
}

func (s *InMemoryTenantStore) Upsert(ctx context.Context, member *tenant.Member) error {
	if member == nil {
		return ierr.NewError("member cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Set(ctx, memberKey(member.TenantID, member.UserID), copyMember(member))
}
