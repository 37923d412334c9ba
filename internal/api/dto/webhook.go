package dto

import (
	"github.com/surveyloop/surveyloop/internal/validator"
)

// OperationNotification is the JSON body of an inbound marketplace
// webhook. Only the ids are trusted; everything else is re-derived from
// the authoritative operation fetch.
type OperationNotification struct {
	ID             string `json:"id" validate:"required"`
	SubscriptionID string `json:"subscriptionId" validate:"required"`
	Action         string `json:"action"`
	PlanID         string `json:"planId,omitempty"`
	Quantity       int    `json:"quantity,omitempty"`
	OfferID        string `json:"offerId,omitempty"`
}

func (r *OperationNotification) Validate() error {
	return validator.ValidateRequest(r)
}
