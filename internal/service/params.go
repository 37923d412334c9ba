package service

import (
	"context"

	"github.com/surveyloop/surveyloop/internal/config"
	"github.com/surveyloop/surveyloop/internal/correlation"
	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	"github.com/surveyloop/surveyloop/internal/domain/tenant"
	"github.com/surveyloop/surveyloop/internal/domain/usage"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/marketplace"
)

// ResponseCounter counts response entities for a survey. The survey
// store itself lives outside this core; callers inject a counter over
// their own persistence.
type ResponseCounter interface {
	CountBySurvey(ctx context.Context, surveyID string) (int64, error)
}

// ServiceParams carries the dependencies shared across services.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	EntitlementRepo entitlement.Repository
	TenantRepo      tenant.Repository
	UsageRepo       usage.Repository

	Marketplace      marketplace.FulfillmentClient
	CorrelationStore *correlation.Store
	ResponseCounter  ResponseCounter

	Exchanger OAuthExchanger
	Identity  IdentityVerifier
}
