package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveyloop/surveyloop/internal/domain/usage"
	"github.com/surveyloop/surveyloop/internal/types"
)

func TestQuotaService_CanPerformAction(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	newQuota := func(f *testFixture) QuotaService {
		return NewQuotaService(f.params, NewPlanService(f.params))
	}

	t.Run("free tier allows actions below the weekly limit", func(t *testing.T) {
		f := newTestFixture()
		svc := newQuota(f)

		for i := 0; i < 3; i++ {
			ok, err := svc.CanPerformAction(ctx, "T1", types.QuotaCategorySurveyCreation)
			require.NoError(t, err)
			assert.True(t, ok, "action %d should be allowed", i+1)
			require.NoError(t, svc.RecordAction(ctx, "T1", types.QuotaCategorySurveyCreation))
		}

		// The fourth action in the same week crosses the free limit.
		ok, err := svc.CanPerformAction(ctx, "T1", types.QuotaCategorySurveyCreation)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("a new week resets the counter", func(t *testing.T) {
		f := newTestFixture()
		svc := newQuota(f)

		lastWeek := types.WeekKey(time.Now().UTC().AddDate(0, 0, -7))
		for i := 0; i < 3; i++ {
			require.NoError(t, f.usage.Create(ctx, &usage.Record{
				ID:       types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE),
				TenantID: "T1",
				Category: types.QuotaCategorySurveyCreation,
				WeekKey:  lastWeek,
			}))
		}

		ok, err := svc.CanPerformAction(ctx, "T1", types.QuotaCategorySurveyCreation)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("pro tier gets the higher weekly limit", func(t *testing.T) {
		f := newTestFixture()
		svc := newQuota(f)
		require.NoError(t, f.entitlement.Upsert(ctx, tenantRecord("S1", "T1", "pro", types.SubscriptionStatusActivated, base)))

		for i := 0; i < 5; i++ {
			require.NoError(t, svc.RecordAction(ctx, "T1", types.QuotaCategorySurveyCreation))
		}

		ok, err := svc.CanPerformAction(ctx, "T1", types.QuotaCategorySurveyCreation)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("enterprise tier is unlimited", func(t *testing.T) {
		f := newTestFixture()
		svc := newQuota(f)
		require.NoError(t, f.entitlement.Upsert(ctx, tenantRecord("S1", "T1", "enterprise", types.SubscriptionStatusActivated, base)))

		for i := 0; i < 100; i++ {
			require.NoError(t, svc.RecordAction(ctx, "T1", types.QuotaCategorySurveyCreation))
		}

		ok, err := svc.CanPerformAction(ctx, "T1", types.QuotaCategorySurveyCreation)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown category denies", func(t *testing.T) {
		f := newTestFixture()
		svc := newQuota(f)

		ok, err := svc.CanPerformAction(ctx, "T1", types.QuotaCategory("export"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestQuotaService_CanAcceptResponse(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	newQuota := func(f *testFixture) QuotaService {
		return NewQuotaService(f.params, NewPlanService(f.params))
	}

	t.Run("free tier caps responses per survey", func(t *testing.T) {
		f := newTestFixture()
		svc := newQuota(f)
		f.responses.Counts = map[string]int64{"svy_1": 99, "svy_2": 100}

		ok, err := svc.CanAcceptResponse(ctx, "T1", "svy_1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.CanAcceptResponse(ctx, "T1", "svy_2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("paid tiers are not response-gated", func(t *testing.T) {
		f := newTestFixture()
		svc := newQuota(f)
		require.NoError(t, f.entitlement.Upsert(ctx, tenantRecord("S1", "T1", "pro", types.SubscriptionStatusActivated, base)))
		f.responses.Counts = map[string]int64{"svy_1": 100000}

		ok, err := svc.CanAcceptResponse(ctx, "T1", "svy_1")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestWeekKey(t *testing.T) {
	t.Run("is ISO-8601 UTC anchored", func(t *testing.T) {
		// 2026-01-01 falls in ISO week 1 of 2026.
		assert.Equal(t, "2026-W01", types.WeekKey(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
		// 2027-01-01 is a Friday belonging to ISO week 53 of 2026.
		assert.Equal(t, "2026-W53", types.WeekKey(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("normalizes non-UTC times", func(t *testing.T) {
		loc := time.FixedZone("UTC+13", 13*3600)
		// Sunday 23:30 UTC is Monday 12:30 in UTC+13; the key follows UTC.
		local := time.Date(2026, 3, 2, 12, 30, 0, 0, loc)
		assert.Equal(t, types.WeekKey(local.UTC()), types.WeekKey(local))
	})
}
