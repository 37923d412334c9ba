package entitlement

import (
	"time"

	"github.com/surveyloop/surveyloop/internal/types"
)

// SubscriptionRecord is the durable ledger entry for one marketplace
// subscription. It is the system of record for internal authorization
// and is never hard-deleted.
type SubscriptionRecord struct {
	SubscriptionID  string                   `json:"subscription_id" gorm:"column:subscription_id;primaryKey"`
	Origin          types.SubscriptionOrigin `json:"origin" gorm:"column:origin;primaryKey"`
	PlanID          string                   `json:"plan_id" gorm:"column:plan_id"`
	OfferID         string                   `json:"offer_id" gorm:"column:offer_id"`
	Quantity        int                      `json:"quantity" gorm:"column:quantity"`
	Status          types.SubscriptionStatus `json:"status" gorm:"column:status"`
	LastOperationID string                   `json:"last_operation_id" gorm:"column:last_operation_id"`

	// Purchaser identity, populated only by the landing flow.
	UserOID    string `json:"user_oid" gorm:"column:user_oid"`
	UserEmail  string `json:"user_email" gorm:"column:user_email"`
	UserName   string `json:"user_name" gorm:"column:user_name"`
	UserTenant string `json:"user_tenant" gorm:"column:user_tenant;index"`

	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	LastModified time.Time `json:"last_modified" gorm:"column:last_modified"`
}

func (SubscriptionRecord) TableName() string {
	return "subscription_records"
}

// IsNewerThan reports whether r carries fresher data than other.
// last_modified is the tiebreaker for conflicting merges.
func (r *SubscriptionRecord) IsNewerThan(other *SubscriptionRecord) bool {
	if other == nil {
		return true
	}
	return r.LastModified.After(other.LastModified)
}
