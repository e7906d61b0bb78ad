package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/meridianx/backoffice/internal/geoip"
	"github.com/meridianx/backoffice/internal/models"
)

// MockAdminRepository implements AdminRepository for testing
type MockAdminRepository struct {
	GetByIDFunc            func(ctx context.Context, id string) (*models.Admin, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.Admin, error)
	CreateFunc             func(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	RecordLoginFailureFunc func(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error
	RecordLoginSuccessFunc func(ctx context.Context, id string) error
	SetTwoFactorSecretFunc func(ctx context.Context, id string, secret string) error
	EnableTwoFactorFunc    func(ctx context.Context, id string) error
	DisableTwoFactorFunc   func(ctx context.Context, id string) error
	UpdatePasswordFunc     func(ctx context.Context, id string, passwordHash string) (int64, error)
	CountFunc              func(ctx context.Context) (int64, error)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, admin)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAdminRepository) RecordLoginFailure(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error {
	if m.RecordLoginFailureFunc != nil {
		return m.RecordLoginFailureFunc(ctx, id, failedAttempts, lockedUntil)
	}
	return nil
}

func (m *MockAdminRepository) RecordLoginSuccess(ctx context.Context, id string) error {
	if m.RecordLoginSuccessFunc != nil {
		return m.RecordLoginSuccessFunc(ctx, id)
	}
	return nil
}

func (m *MockAdminRepository) SetTwoFactorSecret(ctx context.Context, id string, secret string) error {
	if m.SetTwoFactorSecretFunc != nil {
		return m.SetTwoFactorSecretFunc(ctx, id, secret)
	}
	return nil
}

func (m *MockAdminRepository) EnableTwoFactor(ctx context.Context, id string) error {
	if m.EnableTwoFactorFunc != nil {
		return m.EnableTwoFactorFunc(ctx, id)
	}
	return nil
}

func (m *MockAdminRepository) DisableTwoFactor(ctx context.Context, id string) error {
	if m.DisableTwoFactorFunc != nil {
		return m.DisableTwoFactorFunc(ctx, id)
	}
	return nil
}

func (m *MockAdminRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) (int64, error) {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return 0, nil
}

func (m *MockAdminRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// MockRefreshTokenRepository implements RefreshTokenRepository for testing
type MockRefreshTokenRepository struct {
	CreateFunc                func(ctx context.Context, token *models.RefreshToken) (*models.RefreshToken, error)
	GetByHashFunc             func(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	DeactivateAllForAdminFunc func(ctx context.Context, adminID string) (int64, error)
	DeleteExpiredFunc         func(ctx context.Context) (int64, error)
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) (*models.RefreshToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	return token, nil
}

func (m *MockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if m.GetByHashFunc != nil {
		return m.GetByHashFunc(ctx, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockRefreshTokenRepository) DeactivateAllForAdmin(ctx context.Context, adminID string) (int64, error) {
	if m.DeactivateAllForAdminFunc != nil {
		return m.DeactivateAllForAdminFunc(ctx, adminID)
	}
	return 0, nil
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockAuditLogRepository implements AuditLogRepository for testing
type MockAuditLogRepository struct {
	CreateFunc     func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListRecentFunc func(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	GetByAdminFunc func(ctx context.Context, adminID string, limit, offset int) ([]*models.AuditLog, error)
	GetByActFunc   func(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	CountFunc      func(ctx context.Context) (int64, error)

	// Entries collects every created audit log when CreateFunc is nil
	Entries []*models.AuditLog
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.Entries = append(m.Entries, log)
	return log, nil
}

func (m *MockAuditLogRepository) ListRecent(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit, offset)
	}
	return []*models.AuditLog{}, nil
}

func (m *MockAuditLogRepository) GetByAdminID(ctx context.Context, adminID string, limit, offset int) ([]*models.AuditLog, error) {
	if m.GetByAdminFunc != nil {
		return m.GetByAdminFunc(ctx, adminID, limit, offset)
	}
	return []*models.AuditLog{}, nil
}

func (m *MockAuditLogRepository) GetByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error) {
	if m.GetByActFunc != nil {
		return m.GetByActFunc(ctx, action, limit, offset)
	}
	return []*models.AuditLog{}, nil
}

func (m *MockAuditLogRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return int64(len(m.Entries)), nil
}

// MockCaptchaVerifier implements captcha.Verifier for testing
type MockCaptchaVerifier struct {
	VerifyFunc func(ctx context.Context, token, remoteIP string) (bool, error)
}

func (m *MockCaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token, remoteIP)
	}
	return false, nil
}

// MockSecurityNotifier implements SecurityNotifier for testing
type MockSecurityNotifier struct {
	LockedCalls []string // emails passed to NotifyAccountLocked
}

func (m *MockSecurityNotifier) NotifyAccountLocked(_ context.Context, email, _ string, _ time.Time) {
	m.LockedCalls = append(m.LockedCalls, email)
}

// MockGeoResolver implements geoip.Resolver for testing
type MockGeoResolver struct {
	LookupFunc func(ip string) *geoip.Location
}

func (m *MockGeoResolver) Lookup(ip string) *geoip.Location {
	if m.LookupFunc != nil {
		return m.LookupFunc(ip)
	}
	return nil
}

// discardLogger returns a logger that swallows everything
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
