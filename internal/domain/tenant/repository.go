package tenant

import "context"

// Repository stores tenant memberships.
type Repository interface {
	// Get returns the member for (tenantID, userID), or an error marked
	// ErrNotFound.
	Get(ctx context.Context, tenantID, userID string) (*Member, error)

	// Upsert creates or replaces a membership.
	Upsert(ctx context.Context, member *Member) error
}
