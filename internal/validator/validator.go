package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
)

var (
	instance *validator.Validate
	once     sync.Once
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
	})
	return instance
}

// ValidateRequest validates a request struct against its validate tags.
func ValidateRequest(s interface{}) error {
	if err := get().Struct(s); err != nil {
		fields := make([]string, 0)
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range errs {
				fields = append(fields, fieldErr.Field())
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(map[string]interface{}{
				"fields": fields,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
