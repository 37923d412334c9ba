package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/surveyloop/surveyloop/internal/domain/tenant"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
)

type tenantRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewTenantRepository(db *gorm.DB, log *logger.Logger) tenant.Repository {
	return &tenantRepository{db: db, logger: log}
}

func (r *tenantRepository) Get(ctx context.Context, tenantID, userID string) (*tenant.Member, error) {
	var member tenant.Member
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("tenant member not found").
				WithReportableDetails(map[string]interface{}{
					"tenant_id": tenantID,
					"user_id":   userID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load tenant member").
			Mark(ierr.ErrDatabase)
	}
	return &member, nil
}

func (r *tenantRepository) Upsert(ctx context.Context, member *tenant.Member) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(member).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to store tenant member").
			WithReportableDetails(map[string]interface{}{
				"tenant_id": member.TenantID,
				"user_id":   member.UserID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
