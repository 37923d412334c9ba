package gorm

import (
	"context"

	"gorm.io/gorm"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/service"
)

// responseCounter counts rows in the application-owned survey_responses
// table. The table is written by the survey application; this core only
// reads it for quota checks, so it is not part of the migrated schema.
type responseCounter struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewResponseCounter(db *gorm.DB, log *logger.Logger) service.ResponseCounter {
	return &responseCounter{db: db, logger: log}
}

func (r *responseCounter) CountBySurvey(ctx context.Context, surveyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("survey_responses").
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count survey responses").
			WithReportableDetails(map[string]interface{}{
				"survey_id": surveyID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
