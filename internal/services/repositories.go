package services

import (
	"context"
	"time"

	"github.com/meridianx/backoffice/internal/models"
)

// AdminRepository defines the account data access the services need
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	RecordLoginFailure(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error
	RecordLoginSuccess(ctx context.Context, id string) error
	SetTwoFactorSecret(ctx context.Context, id string, secret string) error
	EnableTwoFactor(ctx context.Context, id string) error
	DisableTwoFactor(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) (*models.RefreshToken, error)
	GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	DeactivateAllForAdmin(ctx context.Context, adminID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuditLogRepository defines audit trail data access
type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	GetByAdminID(ctx context.Context, adminID string, limit, offset int) ([]*models.AuditLog, error)
	GetByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	Count(ctx context.Context) (int64, error)
}
