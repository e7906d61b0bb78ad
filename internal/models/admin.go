package models

import (
	"time"
)

// Administrator roles
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleSupport    = "support"
)

// Admin is a back-office administrator account.
type Admin struct {
	ID               string
	Email            string
	Name             string
	PasswordHash     string
	Role             string // super_admin, admin, support
	IsActive         bool
	FailedAttempts   int
	LockedUntil      *time.Time // temporary lockout expiry
	LastLoginAt      *time.Time
	TwoFactorSecret  *string // present while 2FA is pending or enabled
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsLocked reports whether the account is currently under a temporary lockout.
func (a *Admin) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}
