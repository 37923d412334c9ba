package marketplace

import (
	"time"

	"github.com/surveyloop/surveyloop/internal/types"
)

// ResolvedSubscription is the result of exchanging a purchase token at
// the fulfillment API.
type ResolvedSubscription struct {
	SubscriptionID   string `json:"id"`
	SubscriptionName string `json:"subscriptionName"`
	OfferID          string `json:"offerId"`
	PlanID           string `json:"planId"`
	Quantity         int    `json:"quantity"`
}

// Operation is the authoritative record of an asynchronous subscription
// operation. Its status, not the notification body, is the source of
// truth for the resulting lifecycle state.
type Operation struct {
	ID             string                `json:"id"`
	SubscriptionID string                `json:"subscriptionId"`
	Action         types.OperationAction `json:"action"`
	PlanID         string                `json:"planId"`
	OfferID        string                `json:"offerId"`
	Quantity       int                   `json:"quantity"`
	Status         types.OperationStatus `json:"status"`
	TimeStamp      time.Time             `json:"timeStamp"`
}

// ActivateRequest asserts a subscription as active at the marketplace.
type ActivateRequest struct {
	PlanID   string `json:"planId"`
	Quantity int    `json:"quantity,omitempty"`
}

// UpdateOperationRequest finalizes an in-progress operation.
type UpdateOperationRequest struct {
	Status string `json:"status"`
}

// ErrorResponse is the fulfillment API error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
