package service

import (
	"context"
	"time"

	"github.com/surveyloop/surveyloop/internal/domain/usage"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/types"
)

// QuotaService gates quota-consuming actions against the tenant's plan.
// Checks and recording are deliberately separate calls; a small
// check-then-record race at the weekly boundary is acceptable.
type QuotaService interface {
	// CanPerformAction reports whether the tenant may perform one more
	// action of the category in the current ISO week.
	CanPerformAction(ctx context.Context, tenantID string, category types.QuotaCategory) (bool, error)

	// RecordAction appends one usage record for the current week.
	RecordAction(ctx context.Context, tenantID string, category types.QuotaCategory) error

	// CanAcceptResponse reports whether the survey may accept one more
	// response under the tenant's plan.
	CanAcceptResponse(ctx context.Context, tenantID, surveyID string) (bool, error)
}

type quotaService struct {
	ServiceParams
	plan PlanService
}

func NewQuotaService(params ServiceParams, plan PlanService) QuotaService {
	return &quotaService{ServiceParams: params, plan: plan}
}

func (s *quotaService) CanPerformAction(ctx context.Context, tenantID string, category types.QuotaCategory) (bool, error) {
	tier, err := s.plan.ResolvePlan(ctx, tenantID)
	if err != nil {
		return false, err
	}

	limit := tier.WeeklyLimit(category)
	if limit < 0 {
		return true, nil
	}
	if limit == 0 {
		return false, nil
	}

	count, err := s.UsageRepo.Count(ctx, tenantID, category, types.CurrentWeekKey())
	if err != nil {
		return false, err
	}
	return count < int64(limit), nil
}

func (s *quotaService) RecordAction(ctx context.Context, tenantID string, category types.QuotaCategory) error {
	if tenantID == "" {
		return ierr.NewError("tenant id is required").
			WithHint("A tenant id is required to record usage").
			Mark(ierr.ErrValidation)
	}

	record := &usage.Record{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE),
		TenantID:  tenantID,
		Category:  category,
		WeekKey:   types.CurrentWeekKey(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.UsageRepo.Create(ctx, record); err != nil {
		return err
	}

	s.Logger.WithContext(ctx).Debugw("recorded quota action",
		"tenant_id", tenantID,
		"category", category,
		"week_key", record.WeekKey)
	return nil
}

func (s *quotaService) CanAcceptResponse(ctx context.Context, tenantID, surveyID string) (bool, error) {
	tier, err := s.plan.ResolvePlan(ctx, tenantID)
	if err != nil {
		return false, err
	}

	limit := tier.ResponseLimit()
	if limit < 0 {
		return true, nil
	}

	count, err := s.ResponseCounter.CountBySurvey(ctx, surveyID)
	if err != nil {
		return false, err
	}
	return count < int64(limit), nil
}
