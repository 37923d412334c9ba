package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/surveyloop/surveyloop/internal/api/dto"
	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/types"
)

// PlanService resolves the effective plan tier for a tenant from the
// subscription ledger.
type PlanService interface {
	// ResolvePlan returns the tier backed by the tenant's newest
	// Activated subscription record, or the default tier when no such
	// record exists.
	ResolvePlan(ctx context.Context, tenantID string) (types.PlanTier, error)

	// GetTenantEntitlement returns the tier, its limits and the newest
	// record backing it.
	GetTenantEntitlement(ctx context.Context, tenantID string) (*dto.TenantEntitlementResponse, error)
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{ServiceParams: params}
}

func (s *planService) ResolvePlan(ctx context.Context, tenantID string) (types.PlanTier, error) {
	if tenantID == "" {
		return "", ierr.NewError("tenant id is required").
			WithHint("A tenant id is required to resolve a plan").
			Mark(ierr.ErrValidation)
	}

	records, err := s.EntitlementRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return types.DefaultPlanTier, nil
		}
		return "", err
	}

	// A suspended or unsubscribed record never grants a paid tier, even
	// when it is newer than the last Activated one.
	activated := lo.Filter(records, func(r *entitlement.SubscriptionRecord, _ int) bool {
		return r.Status == types.SubscriptionStatusActivated && r.PlanID != ""
	})
	if len(activated) == 0 {
		return types.DefaultPlanTier, nil
	}

	newest := activated[0]
	for _, record := range activated[1:] {
		if record.IsNewerThan(newest) {
			newest = record
		}
	}

	if !types.IsKnownPlanID(newest.PlanID) {
		s.Logger.WithContext(ctx).Warnw("unrecognized plan id, falling back to default tier",
			"tenant_id", tenantID,
			"plan_id", newest.PlanID)
	}
	return types.ResolvePlanTier(newest.PlanID), nil
}

func (s *planService) GetTenantEntitlement(ctx context.Context, tenantID string) (*dto.TenantEntitlementResponse, error) {
	tier, err := s.ResolvePlan(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	records, err := s.EntitlementRepo.ListByTenant(ctx, tenantID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	var newest *entitlement.SubscriptionRecord
	for _, record := range records {
		if newest == nil || record.IsNewerThan(newest) {
			newest = record
		}
	}

	return &dto.TenantEntitlementResponse{
		TenantID:          tenantID,
		Tier:              tier,
		SurveyWeeklyLimit: tier.WeeklyLimit(types.QuotaCategorySurveyCreation),
		ResponseLimit:     tier.ResponseLimit(),
		Subscription:      dto.NewSubscriptionRecordResponse(newest),
	}, nil
}
