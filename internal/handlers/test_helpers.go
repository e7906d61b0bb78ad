package handlers

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	internalauth "github.com/meridianx/backoffice/internal/auth"
	"github.com/meridianx/backoffice/internal/models"
	"github.com/meridianx/backoffice/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc             func(ctx context.Context, input services.LoginInput) (*services.LoginOutcome, error)
	CompleteTwoFactorFunc func(ctx context.Context, adminID, code, ipAddress, userAgent string) (*services.Session, error)
	RefreshFunc           func(ctx context.Context, refreshToken, ipAddress, userAgent string) (string, int, error)
	LogoutFunc            func(ctx context.Context, adminID, ipAddress, userAgent string) error
	GetProfileFunc        func(ctx context.Context, adminID string) (*services.AdminResponse, error)
	ChangePasswordFunc    func(ctx context.Context, adminID, currentPassword, newPassword, ipAddress, userAgent string) error
	RequiresCaptchaFunc   func(ctx context.Context, ipAddress string) bool
}

func (m *MockAuthService) Login(ctx context.Context, input services.LoginInput) (*services.LoginOutcome, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, input)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) CompleteTwoFactor(ctx context.Context, adminID, code, ipAddress, userAgent string) (*services.Session, error) {
	if m.CompleteTwoFactorFunc != nil {
		return m.CompleteTwoFactorFunc(ctx, adminID, code, ipAddress, userAgent)
	}
	return nil, models.ErrInvalidTwoFactorCode
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken, ipAddress, userAgent string) (string, int, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken, ipAddress, userAgent)
	}
	return "", 0, models.ErrInvalidRefreshToken
}

func (m *MockAuthService) Logout(ctx context.Context, adminID, ipAddress, userAgent string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, adminID, ipAddress, userAgent)
	}
	return nil
}

func (m *MockAuthService) GetProfile(ctx context.Context, adminID string) (*services.AdminResponse, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, adminID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAuthService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword, ipAddress, userAgent string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, adminID, currentPassword, newPassword, ipAddress, userAgent)
	}
	return nil
}

func (m *MockAuthService) RequiresCaptcha(ctx context.Context, ipAddress string) bool {
	if m.RequiresCaptchaFunc != nil {
		return m.RequiresCaptchaFunc(ctx, ipAddress)
	}
	return false
}

// MockTwoFactorService implements TwoFactorServiceInterface for testing
type MockTwoFactorService struct {
	GenerateSecretFunc func(ctx context.Context, adminID string) (*internalauth.TOTPSetup, error)
	EnableFunc         func(ctx context.Context, adminID, code string) error
	DisableFunc        func(ctx context.Context, adminID string) error
	VerifyCodeFunc     func(ctx context.Context, adminID, code string) error
}

func (m *MockTwoFactorService) GenerateSecret(ctx context.Context, adminID string) (*internalauth.TOTPSetup, error) {
	if m.GenerateSecretFunc != nil {
		return m.GenerateSecretFunc(ctx, adminID)
	}
	return nil, models.ErrInternalServer
}

func (m *MockTwoFactorService) Enable(ctx context.Context, adminID, code string) error {
	if m.EnableFunc != nil {
		return m.EnableFunc(ctx, adminID, code)
	}
	return nil
}

func (m *MockTwoFactorService) Disable(ctx context.Context, adminID string) error {
	if m.DisableFunc != nil {
		return m.DisableFunc(ctx, adminID)
	}
	return nil
}

func (m *MockTwoFactorService) VerifyCode(ctx context.Context, adminID, code string) error {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, adminID, code)
	}
	return nil
}

// MockAuditService implements AuditServiceInterface for testing
type MockAuditService struct {
	ListFunc  func(ctx context.Context, adminID, action string, limit, offset int) ([]*models.AuditLog, error)
	CountFunc func(ctx context.Context) (int64, error)
}

func (m *MockAuditService) List(ctx context.Context, adminID, action string, limit, offset int) ([]*models.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, adminID, action, limit, offset)
	}
	return []*models.AuditLog{}, nil
}

func (m *MockAuditService) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// withClaims attaches admin claims to a request the way AuthMiddleware does
func withClaims(r *http.Request, adminID, email, role string) *http.Request {
	claims := &models.AccessClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: adminID,
		},
	}
	ctx := context.WithValue(r.Context(), internalauth.AdminContextKey, claims)
	return r.WithContext(ctx)
}
