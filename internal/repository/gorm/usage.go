package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/surveyloop/surveyloop/internal/domain/usage"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/types"
)

type usageRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewUsageRepository(db *gorm.DB, log *logger.Logger) usage.Repository {
	return &usageRepository{db: db, logger: log}
}

func (r *usageRepository) Create(ctx context.Context, record *usage.Record) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record usage").
			WithReportableDetails(map[string]interface{}{
				"tenant_id": record.TenantID,
				"category":  record.Category,
				"week_key":  record.WeekKey,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *usageRepository) Count(ctx context.Context, tenantID string, category types.QuotaCategory, weekKey string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&usage.Record{}).
		Where("tenant_id = ? AND category = ? AND week_key = ?", tenantID, category, weekKey).
		Count(&count).Error
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count usage").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
