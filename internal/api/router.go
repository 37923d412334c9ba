package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/surveyloop/surveyloop/internal/api/v1"
	"github.com/surveyloop/surveyloop/internal/config"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/rest/middleware"
)

// Handlers groups every HTTP handler wired into the router.
type Handlers struct {
	Health      *v1.HealthHandler
	Webhook     *v1.WebhookHandler
	Landing     *v1.LandingHandler
	Entitlement *v1.EntitlementHandler
}

// NewRouter builds the gin engine with the standard middleware chain.
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = log.GetGinLogger()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestContextMiddleware(),
		middleware.SentryMiddleware(cfg),
		middleware.SentryTenantContextMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	apiV1 := router.Group("/v1")
	{
		marketplace := apiV1.Group("/marketplace")
		{
			marketplace.POST("/webhook", handlers.Webhook.HandleNotification)
			marketplace.GET("/landing", handlers.Landing.Begin)
			marketplace.GET("/landing/callback", handlers.Landing.Callback)
		}

		apiV1.GET("/tenants/:id/entitlement", handlers.Entitlement.GetTenantEntitlement)
	}

	return router
}
