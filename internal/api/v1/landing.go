package v1

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/surveyloop/surveyloop/internal/config"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/service"
)

type LandingHandler struct {
	linker service.LinkerService
	config *config.Configuration
	logger *logger.Logger
}

func NewLandingHandler(
	linker service.LinkerService,
	config *config.Configuration,
	logger *logger.Logger,
) *LandingHandler {
	return &LandingHandler{
		linker: linker,
		config: config,
		logger: logger,
	}
}

// Begin receives the browser arriving from the marketplace purchase
// page and forwards it to the identity provider.
func (h *LandingHandler) Begin(c *gin.Context) {
	redirect, err := h.linker.Begin(c.Request.Context(), c.Query("token"))
	if err != nil {
		h.redirectError(c, err)
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

// Callback receives the provider redirect and completes the handshake.
// The browser always ends up at the front end, success or not.
func (h *LandingHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	if providerErr := c.Query("error"); providerErr != "" {
		description := c.Query("error_description")
		if description == "" {
			description = "Sign-in was cancelled or failed"
		}
		h.logger.WithContext(ctx).Warnw("provider returned error on callback",
			"error", providerErr,
			"description", description)
		h.redirectError(c, ierr.NewError(providerErr).
			WithHint(description).
			Mark(ierr.ErrPermissionDenied))
		return
	}

	result, err := h.linker.Complete(ctx, c.Query("code"), c.Query("state"))
	if err != nil {
		h.logger.WithContext(ctx).Errorw("landing completion failed", "error", err)
		h.redirectError(c, err)
		return
	}

	target, parseErr := url.Parse(h.config.Landing.FrontendURL + "/purchase/complete")
	if parseErr != nil {
		h.redirectError(c, parseErr)
		return
	}
	query := target.Query()
	query.Set("subscription_id", result.SubscriptionID)
	query.Set("plan_id", result.PlanID)
	query.Set("status", string(result.Status))
	target.RawQuery = query.Encode()

	c.Redirect(http.StatusFound, target.String())
}

// redirectError sends the browser to the front-end error page with a
// human-readable reason. Internals never leak into the query string.
func (h *LandingHandler) redirectError(c *gin.Context, err error) {
	message := ierr.Hint(err)
	if message == "" {
		message = "Something went wrong completing your purchase"
	}

	c.Redirect(http.StatusFound, h.config.Landing.FrontendURL+"/purchase/error?message="+url.QueryEscape(message))
}
