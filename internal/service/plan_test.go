package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/types"
)

func tenantRecord(subscriptionID, tenantID, planID string, status types.SubscriptionStatus, lastModified time.Time) *entitlement.SubscriptionRecord {
	return &entitlement.SubscriptionRecord{
		SubscriptionID: subscriptionID,
		Origin:         types.OriginLanding,
		PlanID:         planID,
		Status:         status,
		UserTenant:     tenantID,
		CreatedAt:      lastModified,
		LastModified:   lastModified,
	}
}

func TestPlanService_ResolvePlan(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	t.Run("maps each known plan id to its tier", func(t *testing.T) {
		cases := map[string]types.PlanTier{
			"free":       types.PlanTierFree,
			"starter":    types.PlanTierFree,
			"tier1":      types.PlanTierFree,
			"pro":        types.PlanTierPro,
			"premium":    types.PlanTierPro,
			"tier2":      types.PlanTierPro,
			"Tier2":      types.PlanTierPro,
			"enterprise": types.PlanTierEnterprise,
			"tier3":      types.PlanTierEnterprise,
		}
		for planID, expected := range cases {
			f := newTestFixture()
			svc := NewPlanService(f.params)
			require.NoError(t, f.entitlement.Upsert(ctx, tenantRecord("S1", "T1", planID, types.SubscriptionStatusActivated, base)))

			tier, err := svc.ResolvePlan(ctx, "T1")
			require.NoError(t, err)
			assert.Equal(t, expected, tier, "plan id %q", planID)
		}
	})

	t.Run("unrecognized plan id returns default tier", func(t *testing.T) {
		f := newTestFixture()
		svc := NewPlanService(f.params)
		require.NoError(t, f.entitlement.Upsert(ctx, tenantRecord("S1", "T1", "legacy-gold", types.SubscriptionStatusActivated, base)))

		tier, err := svc.ResolvePlan(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, types.DefaultPlanTier, tier)
	})

	t.Run("no records returns default tier", func(t *testing.T) {
		f := newTestFixture()
		svc := NewPlanService(f.params)

		tier, err := svc.ResolvePlan(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, types.DefaultPlanTier, tier)
	})

	t.Run("suspended record grants no paid tier", func(t *testing.T) {
		f := newTestFixture()
		svc := NewPlanService(f.params)
		require.NoError(t, f.entitlement.Upsert(ctx, tenantRecord("S1", "T1", "pro", types.SubscriptionStatusSuspended, base)))

		tier, err := svc.ResolvePlan(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, types.DefaultPlanTier, tier)
	})

	t.Run("newest activated record wins", func(t *testing.T) {
		f := newTestFixture()
		svc := NewPlanService(f.params)
		require.NoError(t, f.entitlement.Upsert(ctx, tenantRecord("S1", "T1", "pro", types.SubscriptionStatusActivated, base)))
		require.NoError(t, f.entitlement.Upsert(ctx, tenantRecord("S2", "T1", "enterprise", types.SubscriptionStatusActivated, base.Add(time.Hour))))

		tier, err := svc.ResolvePlan(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, types.PlanTierEnterprise, tier)
	})

	t.Run("records of other tenants are ignored", func(t *testing.T) {
		f := newTestFixture()
		svc := NewPlanService(f.params)
		require.NoError(t, f.entitlement.Upsert(ctx, tenantRecord("S1", "T2", "enterprise", types.SubscriptionStatusActivated, base)))

		tier, err := svc.ResolvePlan(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, types.DefaultPlanTier, tier)
	})

	t.Run("empty tenant id is rejected", func(t *testing.T) {
		f := newTestFixture()
		svc := NewPlanService(f.params)

		_, err := svc.ResolvePlan(ctx, "")
		assert.True(t, ierr.IsValidation(err))
	})
}
