package dto

import (
	"time"

	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	"github.com/surveyloop/surveyloop/internal/types"
)

// SubscriptionRecordResponse is the external view of a ledger record.
type SubscriptionRecordResponse struct {
	SubscriptionID string                   `json:"subscription_id"`
	PlanID         string                   `json:"plan_id"`
	OfferID        string                   `json:"offer_id,omitempty"`
	Quantity       int                      `json:"quantity,omitempty"`
	Status         types.SubscriptionStatus `json:"status"`
	LastModified   time.Time                `json:"last_modified"`
}

// TenantEntitlementResponse summarizes a tenant's effective entitlement
// for the admin surface.
type TenantEntitlementResponse struct {
	TenantID          string                      `json:"tenant_id"`
	Tier              types.PlanTier              `json:"tier"`
	SurveyWeeklyLimit int                         `json:"survey_weekly_limit"`
	ResponseLimit     int                         `json:"response_limit"`
	Subscription      *SubscriptionRecordResponse `json:"subscription,omitempty"`
}

// NewSubscriptionRecordResponse maps a ledger record to its external
// view.
func NewSubscriptionRecordResponse(record *entitlement.SubscriptionRecord) *SubscriptionRecordResponse {
	if record == nil {
		return nil
	}
	return &SubscriptionRecordResponse{
		SubscriptionID: record.SubscriptionID,
		PlanID:         record.PlanID,
		OfferID:        record.OfferID,
		Quantity:       record.Quantity,
		Status:         record.Status,
		LastModified:   record.LastModified,
	}
}
