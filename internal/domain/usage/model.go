package usage

import (
	"time"

	"github.com/surveyloop/surveyloop/internal/types"
)

// Record is one quota-consuming action. Rows are append-only; weekly
// counters are counts over (tenant_id, category, week_key). Old weeks
// are retained for audit but never read for the current week.
type Record struct {
	ID        string              `json:"id" gorm:"column:id;primaryKey"`
	TenantID  string              `json:"tenant_id" gorm:"column:tenant_id;index:idx_usage_tenant_week"`
	Category  types.QuotaCategory `json:"category" gorm:"column:category;index:idx_usage_tenant_week"`
	WeekKey   string              `json:"week_key" gorm:"column:week_key;index:idx_usage_tenant_week"`
	CreatedAt time.Time           `json:"created_at" gorm:"column:created_at"`
}

func (Record) TableName() string {
	return "usage_records"
}
