package testutil

import (
	"context"
	"sync"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/marketplace"
)

// FakeMarketplaceClient is a scripted marketplace.FulfillmentClient for
// service tests. Operations and resolved tokens are registered up
// front; every call is recorded for assertion.
type FakeMarketplaceClient struct {
	mu sync.Mutex

	operations map[string]*marketplace.Operation
	resolved   map[string]*marketplace.ResolvedSubscription

	ActivateErr error
	AckErr      error

	ActivateCalls []string
	AckCalls      []string
}

func NewFakeMarketplaceClient() *FakeMarketplaceClient {
	return &FakeMarketplaceClient{
		operations: make(map[string]*marketplace.Operation),
		resolved:   make(map[string]*marketplace.ResolvedSubscription),
	}
}

func (f *FakeMarketplaceClient) AddOperation(op *marketplace.Operation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations[op.SubscriptionID+":"+op.ID] = op
}

func (f *FakeMarketplaceClient) AddResolvedToken(token string, sub *marketplace.ResolvedSubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved[token] = sub
}

func (f *FakeMarketplaceClient) ResolveToken(_ context.Context, marketplaceToken string) (*marketplace.ResolvedSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, ok := f.resolved[marketplaceToken]
	if !ok {
		return nil, ierr.NewError("marketplace token could not be resolved").
			Mark(ierr.ErrPermissionDenied)
	}
	return sub, nil
}

func (f *FakeMarketplaceClient) GetOperation(_ context.Context, subscriptionID, operationID string) (*marketplace.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	op, ok := f.operations[subscriptionID+":"+operationID]
	if !ok {
		return nil, ierr.NewError("operation not found").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
				"operation_id":    operationID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return op, nil
}

func (f *FakeMarketplaceClient) Activate(_ context.Context, subscriptionID, planID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ActivateCalls = append(f.ActivateCalls, subscriptionID+":"+planID)
	return f.ActivateErr
}

func (f *FakeMarketplaceClient) AcknowledgeOperation(_ context.Context, subscriptionID, operationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.AckCalls = append(f.AckCalls, subscriptionID+":"+operationID)
	return f.AckErr
}
