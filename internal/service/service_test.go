package service

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/surveyloop/surveyloop/internal/config"
	"github.com/surveyloop/surveyloop/internal/correlation"
	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/testutil"
	"github.com/surveyloop/surveyloop/internal/types"
)

// testFixture bundles the in-memory stores and fakes behind a
// ServiceParams for service tests.
type testFixture struct {
	params      ServiceParams
	entitlement *testutil.InMemoryEntitlementStore
	tenants     *testutil.InMemoryTenantStore
	usage       *testutil.InMemoryUsageStore
	marketplace *testutil.FakeMarketplaceClient
	correlation *correlation.Store
	exchanger   *fakeExchanger
	identity    *fakeIdentityVerifier
	responses   *fakeResponseCounter
}

func newTestFixture() *testFixture {
	f := &testFixture{
		entitlement: testutil.NewInMemoryEntitlementStore(),
		tenants:     testutil.NewInMemoryTenantStore(),
		usage:       testutil.NewInMemoryUsageStore(),
		marketplace: testutil.NewFakeMarketplaceClient(),
		correlation: correlation.NewStore(5 * time.Minute),
		exchanger:   &fakeExchanger{},
		identity:    &fakeIdentityVerifier{},
		responses:   &fakeResponseCounter{},
	}
	f.params = ServiceParams{
		Logger:           logger.GetLogger(),
		Config:           config.GetDefaultConfig(),
		EntitlementRepo:  f.entitlement,
		TenantRepo:       f.tenants,
		UsageRepo:        f.usage,
		Marketplace:      f.marketplace,
		CorrelationStore: f.correlation,
		ResponseCounter:  f.responses,
		Exchanger:        f.exchanger,
		Identity:         f.identity,
	}
	return f
}

func newLandingRecord(subscriptionID, planID string, lastModified time.Time) *entitlement.SubscriptionRecord {
	return &entitlement.SubscriptionRecord{
		SubscriptionID: subscriptionID,
		Origin:         types.OriginLanding,
		PlanID:         planID,
		Status:         types.SubscriptionStatusActivated,
		CreatedAt:      lastModified,
		LastModified:   lastModified,
	}
}

type fakeExchanger struct {
	ExchangeErr error
	IDToken     string
	LastCode    string
}

func (f *fakeExchanger) AuthCodeURL(state string) string {
	return "https://login.example.com/authorize?state=" + state
}

func (f *fakeExchanger) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	f.LastCode = code
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	token := &oauth2.Token{AccessToken: "at-test"}
	return token.WithExtra(map[string]interface{}{"id_token": f.IDToken}), nil
}

type fakeIdentityVerifier struct {
	Identity *PurchaserIdentity
	Err      error
}

func (f *fakeIdentityVerifier) Verify(_ context.Context, _ string) (*PurchaserIdentity, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Identity == nil {
		return nil, ierr.NewError("no identity scripted").Mark(ierr.ErrPermissionDenied)
	}
	return f.Identity, nil
}

type fakeResponseCounter struct {
	Counts map[string]int64
	Err    error
}

func (f *fakeResponseCounter) CountBySurvey(_ context.Context, surveyID string) (int64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Counts[surveyID], nil
}
