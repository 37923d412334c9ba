package usage

import (
	"context"

	"github.com/surveyloop/surveyloop/internal/types"
)

// Repository stores usage records.
type Repository interface {
	// Create appends a usage record. Never retried implicitly; callers
	// must not record twice for one logical action.
	Create(ctx context.Context, record *Record) error

	// Count returns the number of records for the tenant, category and
	// week key.
	Count(ctx context.Context, tenantID string, category types.QuotaCategory, weekKey string) (int64, error)
}
