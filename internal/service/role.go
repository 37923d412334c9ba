package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/surveyloop/surveyloop/internal/domain/tenant"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/types"
)

// RoleService resolves and checks a user's role within a tenant.
// Authorization decisions fail closed: any resolution error denies.
type RoleService interface {
	// ResolveRole returns the user's role, creating a membership on
	// first contact. The purchaser of an activated subscription is
	// auto-promoted to admin exactly once.
	ResolveRole(ctx context.Context, userID, tenantID, email, name string) (types.TenantRole, error)

	// HasAnyRole reports whether the user's role is one of the allowed
	// set. Errors resolve to false.
	HasAnyRole(ctx context.Context, userID, tenantID string, allowed ...types.TenantRole) bool

	// HasMinimumTier reports whether the tenant's plan is at or above
	// the required tier. Errors resolve to false.
	HasMinimumTier(ctx context.Context, tenantID string, required types.PlanTier) bool
}

type roleService struct {
	ServiceParams
	plan PlanService
}

func NewRoleService(params ServiceParams, plan PlanService) RoleService {
	return &roleService{ServiceParams: params, plan: plan}
}

func (s *roleService) ResolveRole(ctx context.Context, userID, tenantID, email, name string) (types.TenantRole, error) {
	if userID == "" || tenantID == "" {
		return "", ierr.NewError("user id and tenant id are required").
			WithHint("Both the user and the tenant must be identified").
			Mark(ierr.ErrValidation)
	}

	member, err := s.TenantRepo.Get(ctx, tenantID, userID)
	if err != nil && !ierr.IsNotFound(err) {
		return "", err
	}
	if member != nil {
		return member.Role, nil
	}

	role := types.TenantRoleUser
	addedBy := ""
	if s.isActivatedPurchaser(ctx, userID, tenantID) {
		role = types.TenantRoleAdmin
		addedBy = types.AddedByAutoPromotion
		s.Logger.WithContext(ctx).Infow("auto-promoting subscription purchaser to admin",
			"tenant_id", tenantID,
			"user_id", userID)
	}

	member = &tenant.Member{
		TenantID:  tenantID,
		UserID:    userID,
		Email:     email,
		Name:      name,
		Role:      role,
		DateAdded: time.Now().UTC(),
		AddedBy:   addedBy,
	}
	if err := s.TenantRepo.Upsert(ctx, member); err != nil {
		// Registration is best effort for plain members; the promoted
		// purchaser must be durably recorded before the role is granted.
		if role == types.TenantRoleAdmin {
			return "", err
		}
		s.Logger.WithContext(ctx).Warnw("failed to auto-register tenant member",
			"tenant_id", tenantID,
			"user_id", userID,
			"error", err)
	}

	return role, nil
}

func (s *roleService) HasAnyRole(ctx context.Context, userID, tenantID string, allowed ...types.TenantRole) bool {
	// Full resolution, not a bare membership read: a purchaser's first
	// contact may well be an authorization check, and the auto-promotion
	// must fire there too.
	role, err := s.ResolveRole(ctx, userID, tenantID, "", "")
	if err != nil {
		return false
	}
	return lo.Contains(allowed, role)
}

func (s *roleService) HasMinimumTier(ctx context.Context, tenantID string, required types.PlanTier) bool {
	tier, err := s.plan.ResolvePlan(ctx, tenantID)
	if err != nil {
		return false
	}
	return tierRank(tier) >= tierRank(required)
}

// isActivatedPurchaser reports whether the user is recorded as the
// purchaser on an Activated subscription for the tenant.
func (s *roleService) isActivatedPurchaser(ctx context.Context, userID, tenantID string) bool {
	records, err := s.EntitlementRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return false
	}
	for _, record := range records {
		if record.Status == types.SubscriptionStatusActivated && record.UserOID == userID {
			return true
		}
	}
	return false
}

func tierRank(tier types.PlanTier) int {
	switch tier {
	case types.PlanTierEnterprise:
		return 2
	case types.PlanTierPro:
		return 1
	default:
		return 0
	}
}
