package v1

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveyloop/surveyloop/internal/config"
	"github.com/surveyloop/surveyloop/internal/correlation"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/marketplace"
	"github.com/surveyloop/surveyloop/internal/rest/middleware"
	"github.com/surveyloop/surveyloop/internal/service"
	"github.com/surveyloop/surveyloop/internal/testutil"
	"github.com/surveyloop/surveyloop/internal/types"
	"github.com/surveyloop/surveyloop/internal/webhook"
)

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) Verify(_ context.Context, rawToken string) (*webhook.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	if rawToken == "" {
		return nil, ierr.NewError("missing webhook bearer token").
			Mark(ierr.ErrPermissionDenied)
	}
	return &webhook.Claims{Subject: "marketplace"}, nil
}

func newWebhookTestServer(t *testing.T, fake *testutil.FakeMarketplaceClient, verifier webhook.Verifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	params := service.ServiceParams{
		Logger:           logger.GetLogger(),
		Config:           config.GetDefaultConfig(),
		EntitlementRepo:  testutil.NewInMemoryEntitlementStore(),
		TenantRepo:       testutil.NewInMemoryTenantStore(),
		UsageRepo:        testutil.NewInMemoryUsageStore(),
		Marketplace:      fake,
		CorrelationStore: correlation.NewStore(time.Minute),
	}

	handler := NewWebhookHandler(verifier, service.NewReconcilerService(params), logger.GetLogger())

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.POST("/v1/marketplace/webhook", handler.HandleNotification)
	return router
}

func TestWebhookHandler_HandleNotification(t *testing.T) {
	post := func(router *gin.Engine, body string, authorized bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/marketplace/webhook", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if authorized {
			req.Header.Set(types.HeaderAuthorization, "Bearer token")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("returns 200 on successful processing", func(t *testing.T) {
		fake := testutil.NewFakeMarketplaceClient()
		fake.AddOperation(&marketplace.Operation{
			ID:             "op1",
			SubscriptionID: "S1",
			Action:         types.OperationActionActivate,
			PlanID:         "tier2",
			Status:         types.OperationStatusSucceeded,
			TimeStamp:      time.Now().UTC(),
		})
		router := newWebhookTestServer(t, fake, &fakeVerifier{})

		w := post(router, `{"id":"op1","subscriptionId":"S1","action":"activate","planId":"tier2"}`, true)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("returns 200 on idempotent redelivery", func(t *testing.T) {
		fake := testutil.NewFakeMarketplaceClient()
		fake.AddOperation(&marketplace.Operation{
			ID:             "op1",
			SubscriptionID: "S1",
			Action:         types.OperationActionActivate,
			Status:         types.OperationStatusSucceeded,
			TimeStamp:      time.Now().UTC(),
		})
		router := newWebhookTestServer(t, fake, &fakeVerifier{})

		body := `{"id":"op1","subscriptionId":"S1"}`
		require.Equal(t, http.StatusOK, post(router, body, true).Code)
		assert.Equal(t, http.StatusOK, post(router, body, true).Code)
	})

	t.Run("returns 401 without valid bearer token", func(t *testing.T) {
		router := newWebhookTestServer(t, testutil.NewFakeMarketplaceClient(), &fakeVerifier{})

		w := post(router, `{"id":"op1","subscriptionId":"S1"}`, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns 400 on missing required fields", func(t *testing.T) {
		router := newWebhookTestServer(t, testutil.NewFakeMarketplaceClient(), &fakeVerifier{})

		w := post(router, `{"action":"activate"}`, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		router := newWebhookTestServer(t, testutil.NewFakeMarketplaceClient(), &fakeVerifier{})

		w := post(router, `not-json`, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 500 when operation fetch fails", func(t *testing.T) {
		// No operation registered, the authoritative fetch fails and the
		// marketplace must redeliver.
		router := newWebhookTestServer(t, testutil.NewFakeMarketplaceClient(), &fakeVerifier{})

		w := post(router, `{"id":"op1","subscriptionId":"S1"}`, true)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
