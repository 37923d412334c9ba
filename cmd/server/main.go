package main

import (
	"context"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/surveyloop/surveyloop/internal/api"
	v1 "github.com/surveyloop/surveyloop/internal/api/v1"
	"github.com/surveyloop/surveyloop/internal/config"
	"github.com/surveyloop/surveyloop/internal/correlation"
	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	"github.com/surveyloop/surveyloop/internal/domain/tenant"
	"github.com/surveyloop/surveyloop/internal/domain/usage"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/marketplace"
	gormrepo "github.com/surveyloop/surveyloop/internal/repository/gorm"
	"github.com/surveyloop/surveyloop/internal/service"
	"github.com/surveyloop/surveyloop/internal/webhook"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			gormrepo.NewDB,
			gormrepo.NewEntitlementRepository,
			gormrepo.NewTenantRepository,
			gormrepo.NewUsageRepository,
			gormrepo.NewResponseCounter,
			marketplace.NewTokenSource,
			marketplace.NewClient,
			newWebhookVerifier,
			newCorrelationStore,
			service.NewOAuthExchanger,
			service.NewIdentityVerifier,
			newServiceParams,
			service.NewReconcilerService,
			service.NewLinkerService,
			service.NewPlanService,
			service.NewQuotaService,
			service.NewRoleService,
			v1.NewHealthHandler,
			v1.NewWebhookHandler,
			v1.NewLandingHandler,
			v1.NewEntitlementHandler,
			newHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			initSentry,
			startServer,
		),
	).Run()
}

func newWebhookVerifier(cfg *config.Configuration, log *logger.Logger) webhook.Verifier {
	return webhook.NewTokenVerifier(context.Background(), cfg, log)
}

func newCorrelationStore(cfg *config.Configuration) *correlation.Store {
	return correlation.NewStore(cfg.Landing.StateTTL)
}

func newServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	entitlementRepo entitlement.Repository,
	tenantRepo tenant.Repository,
	usageRepo usage.Repository,
	client marketplace.FulfillmentClient,
	store *correlation.Store,
	responses service.ResponseCounter,
	exchanger service.OAuthExchanger,
	identity service.IdentityVerifier,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:           log,
		Config:           cfg,
		EntitlementRepo:  entitlementRepo,
		TenantRepo:       tenantRepo,
		UsageRepo:        usageRepo,
		Marketplace:      client,
		CorrelationStore: store,
		ResponseCounter:  responses,
		Exchanger:        exchanger,
		Identity:         identity,
	}
}

func newHandlers(
	health *v1.HealthHandler,
	webhookHandler *v1.WebhookHandler,
	landing *v1.LandingHandler,
	entitlement *v1.EntitlementHandler,
) api.Handlers {
	return api.Handlers{
		Health:      health,
		Webhook:     webhookHandler,
		Landing:     landing,
		Entitlement: entitlement,
	}
}

func initSentry(cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Warnw("failed to initialize sentry", "error", err)
	}
	return nil
}

func startServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Configuration, log *logger.Logger) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			return server.Shutdown(ctx)
		},
	})
}
