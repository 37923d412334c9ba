package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/service"
	"github.com/surveyloop/surveyloop/internal/types"
)

type EntitlementHandler struct {
	planService service.PlanService
	logger      *logger.Logger
}

func NewEntitlementHandler(
	planService service.PlanService,
	logger *logger.Logger,
) *EntitlementHandler {
	return &EntitlementHandler{
		planService: planService,
		logger:      logger,
	}
}

// GetTenantEntitlement returns the tenant's effective tier and the
// subscription record backing it.
func (h *EntitlementHandler) GetTenantEntitlement(c *gin.Context) {
	tenantID := c.Param("id")
	if tenantID == "" {
		c.Error(ierr.NewError("tenant id is required").
			WithHint("Tenant id must be provided in the path").
			Mark(ierr.ErrValidation))
		return
	}

	ctx := types.SetTenantID(c.Request.Context(), tenantID)
	c.Request = c.Request.WithContext(ctx)

	response, err := h.planService.GetTenantEntitlement(ctx, tenantID)
	if err != nil {
		h.logger.WithContext(ctx).Errorw("failed to get tenant entitlement", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
