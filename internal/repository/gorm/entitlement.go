package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/types"
)

type entitlementRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewEntitlementRepository(db *gorm.DB, log *logger.Logger) entitlement.Repository {
	return &entitlementRepository{db: db, logger: log}
}

func (r *entitlementRepository) Get(ctx context.Context, origin types.SubscriptionOrigin, subscriptionID string) (*entitlement.SubscriptionRecord, error) {
	var record entitlement.SubscriptionRecord
	err := r.db.WithContext(ctx).
		Where("origin = ? AND subscription_id = ?", origin, subscriptionID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("subscription record not found").
				WithReportableDetails(map[string]interface{}{
					"subscription_id": subscriptionID,
					"origin":          origin,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load subscription record").
			Mark(ierr.ErrDatabase)
	}
	return &record, nil
}

// Upsert relies on the store's native conflict resolution over the
// (subscription_id, origin) key; concurrent writers converge through
// the caller's last-write-wins merge.
func (r *entitlementRepository) Upsert(ctx context.Context, record *entitlement.SubscriptionRecord) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to store subscription record").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": record.SubscriptionID,
				"origin":          record.Origin,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *entitlementRepository) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*entitlement.SubscriptionRecord, error) {
	var records []*entitlement.SubscriptionRecord
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Find(&records).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscription records").
			Mark(ierr.ErrDatabase)
	}
	if len(records) == 0 {
		return nil, ierr.NewError("no records for subscription").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return records, nil
}

func (r *entitlementRepository) ListByTenant(ctx context.Context, tenantID string) ([]*entitlement.SubscriptionRecord, error) {
	var records []*entitlement.SubscriptionRecord
	err := r.db.WithContext(ctx).
		Where("user_tenant = ?", tenantID).
		Find(&records).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tenant subscription records").
			Mark(ierr.ErrDatabase)
	}
	return records, nil
}
