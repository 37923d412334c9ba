package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/types"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Client{
		baseURL:     server.URL,
		apiVersion:  "2018-08-31",
		tokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		logger:      logger.GetLogger(),
	}, server
}

func TestClient_ResolveToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/subscriptions/resolve", r.URL.Path)
		assert.Equal(t, "purchase-token", r.Header.Get("x-marketplace-token"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(&ResolvedSubscription{
			SubscriptionID: "S1",
			PlanID:         "tier2",
			OfferID:        "survey-saas",
			Quantity:       5,
		})
	}))

	resolved, err := client.ResolveToken(context.Background(), "purchase-token")
	require.NoError(t, err)
	assert.Equal(t, "S1", resolved.SubscriptionID)
	assert.Equal(t, "tier2", resolved.PlanID)
	assert.Equal(t, 5, resolved.Quantity)
}

func TestClient_ResolveToken_EmptyToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty token")
	}))

	_, err := client.ResolveToken(context.Background(), "")
	assert.True(t, ierr.IsValidation(err))
}

func TestClient_GetOperation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/subscriptions/S1/operations/op1", r.URL.Path)

		json.NewEncoder(w).Encode(&Operation{
			ID:             "op1",
			SubscriptionID: "S1",
			Action:         types.OperationActionActivate,
			PlanID:         "tier2",
			Status:         types.OperationStatusSucceeded,
		})
	}))

	operation, err := client.GetOperation(context.Background(), "S1", "op1")
	require.NoError(t, err)
	assert.Equal(t, types.OperationActionActivate, operation.Action)
	assert.Equal(t, types.OperationStatusSucceeded, operation.Status)
}

func TestClient_GetOperation_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetOperation(context.Background(), "S1", "missing")
	assert.True(t, ierr.IsNotFound(err))
}

func TestClient_AcknowledgeOperation(t *testing.T) {
	var gotBody UpdateOperationRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/subscriptions/S1/operations/op1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))

	err := client.AcknowledgeOperation(context.Background(), "S1", "op1")
	require.NoError(t, err)
	assert.Equal(t, "Success", gotBody.Status)
}

func TestClient_Activate_UpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(&ErrorResponse{Code: "Unavailable", Message: "try again later"})
	}))

	err := client.Activate(context.Background(), "S1", "tier2")
	assert.True(t, ierr.IsHTTPClient(err))
}
