package tenant

import (
	"time"

	"github.com/surveyloop/surveyloop/internal/types"
)

// Member is a user's membership within a tenant. Created lazily on the
// first authorization check; role elevated only through explicit admin
// action or the one-time purchaser auto-promotion.
type Member struct {
	TenantID  string           `json:"tenant_id" gorm:"column:tenant_id;primaryKey"`
	UserID    string           `json:"user_id" gorm:"column:user_id;primaryKey"`
	Email     string           `json:"email" gorm:"column:email"`
	Name      string           `json:"name" gorm:"column:name"`
	Role      types.TenantRole `json:"role" gorm:"column:role"`
	DateAdded time.Time        `json:"date_added" gorm:"column:date_added"`
	AddedBy   string           `json:"added_by" gorm:"column:added_by"`
}

func (Member) TableName() string {
	return "tenant_members"
}
