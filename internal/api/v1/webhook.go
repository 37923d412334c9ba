package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surveyloop/surveyloop/internal/api/dto"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/service"
	"github.com/surveyloop/surveyloop/internal/types"
	"github.com/surveyloop/surveyloop/internal/webhook"
)

type WebhookHandler struct {
	verifier   webhook.Verifier
	reconciler service.ReconcilerService
	logger     *logger.Logger
}

func NewWebhookHandler(
	verifier webhook.Verifier,
	reconciler service.ReconcilerService,
	logger *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		reconciler: reconciler,
		logger:     logger,
	}
}

// HandleNotification processes a marketplace lifecycle notification.
// Any non-2xx response triggers the marketplace's own redelivery, so
// transient failures return 500 rather than being retried in-process.
func (h *WebhookHandler) HandleNotification(c *gin.Context) {
	ctx := c.Request.Context()

	claims, err := h.verifier.Verify(ctx, c.GetHeader(types.HeaderAuthorization))
	if err != nil {
		c.Error(err)
		return
	}
	ctx = types.SetUserID(ctx, claims.Subject)
	c.Request = c.Request.WithContext(ctx)

	var req dto.OperationNotification
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid notification body").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.reconciler.ProcessNotification(ctx, &req); err != nil {
		if ierr.IsValidation(err) {
			c.Error(err)
			return
		}
		h.logger.WithContext(ctx).Errorw("failed to process notification",
			"subscription_id", req.SubscriptionID,
			"operation_id", req.ID,
			"error", err)
		// A fresh error keeps upstream not-found marks from mapping to
		// 4xx; the marketplace needs a 5xx to redeliver.
		c.Error(ierr.NewError("failed to process notification").
			WithHint("Failed to process the notification, delivery will be retried").
			Mark(ierr.ErrInternal))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
