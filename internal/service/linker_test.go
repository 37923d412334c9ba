package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/marketplace"
	"github.com/surveyloop/surveyloop/internal/types"
)

func TestLinkerService_Begin(t *testing.T) {
	ctx := context.Background()

	t.Run("stores token and returns provider URL with state", func(t *testing.T) {
		f := newTestFixture()
		svc := NewLinkerService(f.params)

		redirect, err := svc.Begin(ctx, "mp-token-1")
		require.NoError(t, err)

		parsed, err := url.Parse(redirect)
		require.NoError(t, err)
		state := parsed.Query().Get("state")
		require.True(t, strings.HasPrefix(state, "state_"))

		entry, err := f.correlation.TakeOnce(state)
		require.NoError(t, err)
		assert.Equal(t, "mp-token-1", entry.MarketplaceToken)
	})

	t.Run("two begins issue distinct states", func(t *testing.T) {
		f := newTestFixture()
		svc := NewLinkerService(f.params)

		first, err := svc.Begin(ctx, "mp-token-1")
		require.NoError(t, err)
		second, err := svc.Begin(ctx, "mp-token-2")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		f := newTestFixture()
		svc := NewLinkerService(f.params)

		_, err := svc.Begin(ctx, "")
		assert.True(t, ierr.IsValidation(err))
	})
}

func TestLinkerService_Complete(t *testing.T) {
	ctx := context.Background()

	setup := func(f *testFixture) string {
		f.exchanger.IDToken = "id-token"
		f.identity.Identity = &PurchaserIdentity{
			OID:      "U1",
			TenantID: "T1",
			Name:     "User One",
			Email:    "u1@example.com",
		}
		f.marketplace.AddResolvedToken("mp-token-1", &marketplace.ResolvedSubscription{
			SubscriptionID: "S1",
			OfferID:        "offer-1",
			PlanID:         "pro",
			Quantity:       3,
		})

		svc := NewLinkerService(f.params)
		redirect, err := svc.Begin(ctx, "mp-token-1")
		if err != nil {
			panic(err)
		}
		parsed, _ := url.Parse(redirect)
		return parsed.Query().Get("state")
	}

	t.Run("activates subscription and persists purchaser identity", func(t *testing.T) {
		f := newTestFixture()
		state := setup(f)
		svc := NewLinkerService(f.params)

		result, err := svc.Complete(ctx, "auth-code", state)
		require.NoError(t, err)
		assert.Equal(t, "S1", result.SubscriptionID)
		assert.Equal(t, "pro", result.PlanID)
		assert.Equal(t, types.SubscriptionStatusActivated, result.Status)
		assert.Equal(t, "T1", result.TenantID)

		assert.Equal(t, []string{"S1:pro"}, f.marketplace.ActivateCalls)

		stored, err := f.entitlement.Get(ctx, types.OriginLanding, "S1")
		require.NoError(t, err)
		assert.Equal(t, types.SubscriptionStatusActivated, stored.Status)
		assert.Equal(t, "U1", stored.UserOID)
		assert.Equal(t, "T1", stored.UserTenant)
		assert.Equal(t, 3, stored.Quantity)
	})

	t.Run("replayed state fails with session expired", func(t *testing.T) {
		f := newTestFixture()
		state := setup(f)
		svc := NewLinkerService(f.params)

		_, err := svc.Complete(ctx, "auth-code", state)
		require.NoError(t, err)

		_, err = svc.Complete(ctx, "auth-code", state)
		require.Error(t, err)
		assert.True(t, ierr.IsNotFound(err))
		assert.Contains(t, ierr.Hint(err), "Session expired")
	})

	t.Run("activation failure leaves auditable pending record", func(t *testing.T) {
		f := newTestFixture()
		state := setup(f)
		f.marketplace.ActivateErr = ierr.NewError("upstream unavailable").Mark(ierr.ErrHTTPClient)
		svc := NewLinkerService(f.params)

		_, err := svc.Complete(ctx, "auth-code", state)
		require.Error(t, err)

		stored, err := f.entitlement.Get(ctx, types.OriginLanding, "S1")
		require.NoError(t, err)
		assert.Equal(t, types.SubscriptionStatusPending, stored.Status)
		assert.Equal(t, "U1", stored.UserOID)
	})

	t.Run("code exchange failure is a permission error", func(t *testing.T) {
		f := newTestFixture()
		state := setup(f)
		f.exchanger.ExchangeErr = ierr.NewError("invalid code").Mark(ierr.ErrHTTPClient)
		svc := NewLinkerService(f.params)

		_, err := svc.Complete(ctx, "bad-code", state)
		assert.True(t, ierr.IsPermissionDenied(err))
	})

	t.Run("missing id_token in token response is rejected", func(t *testing.T) {
		f := newTestFixture()
		state := setup(f)
		f.exchanger.IDToken = ""
		svc := NewLinkerService(f.params)

		_, err := svc.Complete(ctx, "auth-code", state)
		assert.True(t, ierr.IsPermissionDenied(err))
	})

	t.Run("unresolvable marketplace token fails", func(t *testing.T) {
		f := newTestFixture()
		svc := NewLinkerService(f.params)
		f.exchanger.IDToken = "id-token"
		f.identity.Identity = &PurchaserIdentity{OID: "U1", TenantID: "T1"}

		redirect, err := svc.Begin(ctx, "unknown-token")
		require.NoError(t, err)
		parsed, _ := url.Parse(redirect)

		_, err = svc.Complete(ctx, "auth-code", parsed.Query().Get("state"))
		assert.True(t, ierr.IsPermissionDenied(err))
	})

	t.Run("missing code or state is rejected", func(t *testing.T) {
		f := newTestFixture()
		svc := NewLinkerService(f.params)

		_, err := svc.Complete(ctx, "", "state_x")
		assert.True(t, ierr.IsValidation(err))
		_, err = svc.Complete(ctx, "code", "")
		assert.True(t, ierr.IsValidation(err))
	})
}
