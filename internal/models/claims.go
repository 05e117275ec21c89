package models

import "github.com/golang-jwt/jwt/v5"

// Marketplace roles
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Application permissions
const (
	PermissionOrderWrite  = "order:write"
	PermissionOrderRead   = "order:read"
	PermissionPayoutRead  = "payout:read"
	PermissionRevenueRead = "revenue:read"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID      uint     `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionOrderRead,
			PermissionOrderWrite,
			PermissionPayoutRead,
			PermissionRevenueRead,
		}
	case RoleSeller:
		return []string{
			PermissionOrderRead,
			PermissionPayoutRead,
		}
	case RoleBuyer:
		return []string{
			PermissionOrderRead,
			PermissionOrderWrite,
		}
	default:
		return []string{}
	}
}
