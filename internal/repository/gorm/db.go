package gorm

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/surveyloop/surveyloop/internal/config"
	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	"github.com/surveyloop/surveyloop/internal/domain/tenant"
	"github.com/surveyloop/surveyloop/internal/domain/usage"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
)

// NewDB connects to the database and migrates the schema. The connect
// is retried with exponential backoff so the server survives a database
// that comes up slightly later than the process.
func NewDB(cfg *config.Configuration, log *logger.Logger) (*gorm.DB, error) {
	var db *gorm.DB

	connect := func() error {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			log.Warnw("database not reachable yet, retrying", "error", err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 60 * time.Second
	if err := backoff.Retry(connect, policy); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not connect to the database").
			Mark(ierr.ErrDatabase)
	}

	if err := db.AutoMigrate(
		&entitlement.SubscriptionRecord{},
		&tenant.Member{},
		&usage.Record{},
	); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to migrate database schema").
			Mark(ierr.ErrDatabase)
	}

	return db, nil
}
