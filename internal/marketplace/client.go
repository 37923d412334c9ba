package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/surveyloop/surveyloop/internal/config"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
)

const (
	headerMarketplaceToken = "x-marketplace-token"

	// ackStatusSuccess is the only status this service ever writes back
	// to an operation; terminal operations are left alone.
	ackStatusSuccess = "Success"
)

// FulfillmentClient defines the fulfillment API operations the
// entitlement core depends on.
type FulfillmentClient interface {
	ResolveToken(ctx context.Context, marketplaceToken string) (*ResolvedSubscription, error)
	GetOperation(ctx context.Context, subscriptionID, operationID string) (*Operation, error)
	Activate(ctx context.Context, subscriptionID, planID string) error
	AcknowledgeOperation(ctx context.Context, subscriptionID, operationID string) error
}

// Client calls the marketplace fulfillment API with a bearer token from
// the credential provider. All calls are single-shot with a bounded
// timeout; transient failures surface to the caller so the marketplace
// redelivers.
type Client struct {
	baseURL     string
	apiVersion  string
	tokenSource oauth2.TokenSource
	httpClient  *http.Client
	logger      *logger.Logger
}

// NewClient creates a new fulfillment API client
func NewClient(cfg *config.Configuration, tokenSource oauth2.TokenSource, log *logger.Logger) FulfillmentClient {
	return &Client{
		baseURL:     cfg.Marketplace.APIBaseURL,
		apiVersion:  cfg.Marketplace.APIVersion,
		tokenSource: tokenSource,
		logger:      log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ResolveToken exchanges an opaque purchase token for the subscription
// attributes it represents.
func (c *Client) ResolveToken(ctx context.Context, marketplaceToken string) (*ResolvedSubscription, error) {
	if marketplaceToken == "" {
		return nil, ierr.NewError("marketplace token is required").
			WithHint("Purchase token is missing").
			Mark(ierr.ErrValidation)
	}

	url := fmt.Sprintf("%s/subscriptions/resolve?api-version=%s", c.baseURL, c.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, ierr.NewError("failed to create HTTP request").Mark(ierr.ErrInternal)
	}
	httpReq.Header.Set(headerMarketplaceToken, marketplaceToken)

	respBody, err := c.do(httpReq, "resolve purchase token")
	if err != nil {
		return nil, err
	}

	var resolved ResolvedSubscription
	if err := json.Unmarshal(respBody, &resolved); err != nil {
		return nil, ierr.NewError("failed to parse fulfillment response").Mark(ierr.ErrHTTPClient)
	}

	c.logger.Infow("resolved marketplace purchase token",
		"subscription_id", resolved.SubscriptionID,
		"plan_id", resolved.PlanID,
		"offer_id", resolved.OfferID)

	return &resolved, nil
}

// GetOperation fetches the authoritative status of an operation.
func (c *Client) GetOperation(ctx context.Context, subscriptionID, operationID string) (*Operation, error) {
	url := fmt.Sprintf("%s/subscriptions/%s/operations/%s?api-version=%s",
		c.baseURL, subscriptionID, operationID, c.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ierr.NewError("failed to create HTTP request").Mark(ierr.ErrInternal)
	}

	respBody, err := c.do(httpReq, "fetch operation status")
	if err != nil {
		return nil, err
	}

	var operation Operation
	if err := json.Unmarshal(respBody, &operation); err != nil {
		return nil, ierr.NewError("failed to parse fulfillment response").Mark(ierr.ErrHTTPClient)
	}

	c.logger.Infow("fetched authoritative operation",
		"subscription_id", subscriptionID,
		"operation_id", operationID,
		"action", operation.Action,
		"status", operation.Status)

	return &operation, nil
}

// Activate asserts the subscription as active at the marketplace. The
// landing flow is the trigger of record for activation.
func (c *Client) Activate(ctx context.Context, subscriptionID, planID string) error {
	body, err := json.Marshal(&ActivateRequest{PlanID: planID})
	if err != nil {
		return ierr.NewError("failed to marshal activate request").Mark(ierr.ErrInternal)
	}

	url := fmt.Sprintf("%s/subscriptions/%s/activate?api-version=%s",
		c.baseURL, subscriptionID, c.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ierr.NewError("failed to create HTTP request").Mark(ierr.ErrInternal)
	}

	if _, err := c.do(httpReq, "activate subscription"); err != nil {
		return err
	}

	c.logger.Infow("activated subscription at marketplace",
		"subscription_id", subscriptionID,
		"plan_id", planID)

	return nil
}

// AcknowledgeOperation marks an in-progress operation as succeeded.
func (c *Client) AcknowledgeOperation(ctx context.Context, subscriptionID, operationID string) error {
	body, err := json.Marshal(&UpdateOperationRequest{Status: ackStatusSuccess})
	if err != nil {
		return ierr.NewError("failed to marshal operation update").Mark(ierr.ErrInternal)
	}

	url := fmt.Sprintf("%s/subscriptions/%s/operations/%s?api-version=%s",
		c.baseURL, subscriptionID, operationID, c.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return ierr.NewError("failed to create HTTP request").Mark(ierr.ErrInternal)
	}

	if _, err := c.do(httpReq, "acknowledge operation"); err != nil {
		return err
	}

	c.logger.Infow("acknowledged operation",
		"subscription_id", subscriptionID,
		"operation_id", operationID)

	return nil
}

// do executes a single request with a fresh bearer token and returns
// the response body. Non-2xx responses are marked so the error
// middleware maps them per the transient/permanent taxonomy.
func (c *Client) do(httpReq *http.Request, action string) ([]byte, error) {
	token, err := c.tokenSource.Token()
	if err != nil {
		c.logger.Errorw("failed to obtain marketplace credential", "action", action, "error", err)
		return nil, ierr.WithError(err).
			WithHint("Unable to authenticate against the fulfillment API").
			Mark(ierr.ErrHTTPClient)
	}
	token.SetAuthHeader(httpReq)
	if httpReq.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Errorw("fulfillment API request failed", "action", action, "error", err)
		return nil, ierr.WithError(err).
			WithHint("Unable to connect to the fulfillment API").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.NewError("failed to read fulfillment response").Mark(ierr.ErrHTTPClient)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return nil, ierr.NewErrorf("fulfillment API: %s not found", action).
				WithHint("The marketplace does not know this subscription or operation").
				Mark(ierr.ErrNotFound)
		}

		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			c.logger.Errorw("fulfillment API error",
				"action", action,
				"status", resp.StatusCode,
				"code", errResp.Code,
				"message", errResp.Message)
			return nil, ierr.NewError(errResp.Message).
				WithHintf("Fulfillment API rejected the request to %s", action).
				Mark(ierr.ErrHTTPClient)
		}

		return nil, ierr.NewError("fulfillment API error").
			WithHintf("HTTP status %d", resp.StatusCode).
			Mark(ierr.ErrHTTPClient)
	}

	return respBody, nil
}
