package types

import "strings"

// SubscriptionOrigin identifies which flow created a ledger record.
// The landing flow and pure webhook delivery address the same logical
// subscription under different partitions.
type SubscriptionOrigin string

const (
	OriginLanding SubscriptionOrigin = "landing"
	OriginWebhook SubscriptionOrigin = "webhook"
)

func (o SubscriptionOrigin) Validate() bool {
	switch o {
	case OriginLanding, OriginWebhook:
		return true
	}
	return false
}

// SubscriptionStatus is the derived lifecycle state of a marketplace
// subscription. It is never set directly from untrusted input.
type SubscriptionStatus string

const (
	SubscriptionStatusPending      SubscriptionStatus = "Pending"
	SubscriptionStatusActivated    SubscriptionStatus = "Activated"
	SubscriptionStatusSuspended    SubscriptionStatus = "Suspended"
	SubscriptionStatusUnsubscribed SubscriptionStatus = "Unsubscribed"
	SubscriptionStatusFailed       SubscriptionStatus = "Failed"
	SubscriptionStatusUnknown      SubscriptionStatus = "Unknown"
)

// OperationAction is the lifecycle action label carried by a
// marketplace operation notification.
type OperationAction string

const (
	OperationActionActivate       OperationAction = "activate"
	OperationActionChangePlan     OperationAction = "changeplan"
	OperationActionChangeQuantity OperationAction = "changequantity"
	OperationActionReinstate      OperationAction = "reinstate"
	OperationActionRenew          OperationAction = "renew"
	OperationActionSuspend        OperationAction = "suspend"
	OperationActionUnsubscribe    OperationAction = "unsubscribe"
	OperationActionDelete         OperationAction = "delete"
)

// OperationStatus is the authoritative status of an operation as
// reported by the marketplace fulfillment API.
type OperationStatus string

const (
	OperationStatusInProgress OperationStatus = "InProgress"
	OperationStatusSucceeded  OperationStatus = "Succeeded"
	OperationStatusFailed     OperationStatus = "Failed"
	OperationStatusConflict   OperationStatus = "Conflict"
)

// DeriveStatus maps a notification action and the authoritative
// operation status to the resulting subscription lifecycle status.
// The action label wins when it is recognized; otherwise the
// operation's own status decides, defaulting to Pending so that an
// Unknown state is never committed.
func DeriveStatus(action OperationAction, opStatus OperationStatus) SubscriptionStatus {
	switch OperationAction(strings.ToLower(string(action))) {
	case OperationActionActivate, OperationActionChangePlan, OperationActionChangeQuantity,
		OperationActionReinstate, OperationActionRenew:
		return SubscriptionStatusActivated
	case OperationActionSuspend:
		return SubscriptionStatusSuspended
	case OperationActionUnsubscribe, OperationActionDelete:
		return SubscriptionStatusUnsubscribed
	}

	switch opStatus {
	case OperationStatusSucceeded:
		return SubscriptionStatusActivated
	case OperationStatusFailed:
		return SubscriptionStatusFailed
	default:
		return SubscriptionStatusPending
	}
}
