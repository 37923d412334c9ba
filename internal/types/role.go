package types

// TenantRole is a user's role within a tenant.
type TenantRole string

const (
	TenantRoleAdmin   TenantRole = "admin"
	TenantRoleManager TenantRole = "manager"
	TenantRoleUser    TenantRole = "user"
)

func (r TenantRole) Validate() bool {
	switch r {
	case TenantRoleAdmin, TenantRoleManager, TenantRoleUser:
		return true
	}
	return false
}

// AddedByAutoPromotion is the audit marker recorded when the verified
// marketplace purchaser is promoted to administrator.
const AddedByAutoPromotion = "auto-promotion"
