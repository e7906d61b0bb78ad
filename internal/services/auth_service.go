package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/meridianx/backoffice/internal/auth"
	"github.com/meridianx/backoffice/internal/captcha"
	"github.com/meridianx/backoffice/internal/config"
	"github.com/meridianx/backoffice/internal/geoip"
	"github.com/meridianx/backoffice/internal/models"
	pkgauth "github.com/meridianx/backoffice/pkg/auth"
)

// AuthService drives the admin login flow: credential verification, account
// lockout, the per-IP CAPTCHA gate, the two-step TOTP handshake, and session
// issuance.
type AuthService struct {
	adminRepo   AdminRepository
	refreshRepo RefreshTokenRepository
	tm          *auth.TokenManager
	totp        *auth.TOTPManager
	tracker     AttemptTracker
	verifier    captcha.Verifier
	geo         geoip.Resolver
	audit       *AuditService
	notifier    SecurityNotifier
	cfg         config.AuthConfig
	logger      *slog.Logger
	now         func() time.Time
}

func NewAuthService(
	adminRepo AdminRepository,
	refreshRepo RefreshTokenRepository,
	tm *auth.TokenManager,
	totp *auth.TOTPManager,
	tracker AttemptTracker,
	verifier captcha.Verifier,
	geo geoip.Resolver,
	audit *AuditService,
	notifier SecurityNotifier,
	cfg config.AuthConfig,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		refreshRepo: refreshRepo,
		tm:          tm,
		totp:        totp,
		tracker:     tracker,
		verifier:    verifier,
		geo:         geo,
		audit:       audit,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// LoginInput carries everything a login attempt arrives with.
type LoginInput struct {
	Email        string
	Password     string
	CaptchaToken string
	IPAddress    string
	UserAgent    string
}

// AdminResponse represents an admin account in HTTP responses
type AdminResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Session is a fully authenticated login result.
type Session struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"`
	Admin        *AdminResponse `json:"admin"`
}

// TwoFactorChallenge tells the client the password checked out but a TOTP
// code is still required.
type TwoFactorChallenge struct {
	AdminID string `json:"admin_id"`
}

// LoginOutcome is a tagged union: exactly one field is set.
type LoginOutcome struct {
	Authenticated    *Session
	TwoFactorPending *TwoFactorChallenge
}

// Login verifies credentials and either issues a session or hands back a
// two-factor challenge.
//
// The CAPTCHA gate runs before anything touches the account: a short-circuit
// there produces no audit entry and does not count as a login failure.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginOutcome, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, models.ErrInvalidCredentials
	}

	if err := s.enforceCaptchaGate(ctx, input); err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.recordUnknownEmailFailure(ctx, email, input)
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to load admin by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !admin.IsActive {
		s.auditFailure(ctx, &admin.ID, "account_deactivated", input)
		return nil, models.ErrAccountDeactivated
	}

	if admin.IsLocked(s.now()) {
		s.auditFailure(ctx, &admin.ID, "account_locked", input)
		return nil, models.ErrAccountLocked
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, input.Password); err != nil {
		s.recordPasswordFailure(ctx, admin, input)
		return nil, models.ErrInvalidCredentials
	}

	if err := s.recordPasswordSuccess(ctx, admin, input.IPAddress, input.UserAgent); err != nil {
		return nil, err
	}

	if admin.TwoFactorEnabled {
		s.logger.Info("login pending two-factor verification", slog.String("admin_id", admin.ID))
		return &LoginOutcome{TwoFactorPending: &TwoFactorChallenge{AdminID: admin.ID}}, nil
	}

	session, err := s.issueSession(ctx, admin, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}

	return &LoginOutcome{Authenticated: session}, nil
}

// CompleteTwoFactor finishes a pending login by checking the TOTP code.
func (s *AuthService) CompleteTwoFactor(ctx context.Context, adminID, code, ipAddress, userAgent string) (*Session, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.Log(ctx, nil, models.AuditAction2FAFailed, models.AuditDetails{"reason": "unknown_admin_id"}, ipAddress, userAgent)
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to load admin for 2fa completion", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !admin.IsActive {
		s.audit.Log(ctx, &admin.ID, models.AuditAction2FAFailed, s.attemptDetails(admin.Email, "account_deactivated", ipAddress), ipAddress, userAgent)
		return nil, models.ErrAccountDeactivated
	}

	if admin.IsLocked(s.now()) {
		s.audit.Log(ctx, &admin.ID, models.AuditAction2FAFailed, s.attemptDetails(admin.Email, "account_locked", ipAddress), ipAddress, userAgent)
		return nil, models.ErrAccountLocked
	}

	if !admin.TwoFactorEnabled || admin.TwoFactorSecret == nil || *admin.TwoFactorSecret == "" {
		s.audit.Log(ctx, &admin.ID, models.AuditAction2FAFailed, s.attemptDetails(admin.Email, "two_factor_not_configured", ipAddress), ipAddress, userAgent)
		return nil, models.ErrTwoFactorNotConfigured
	}

	valid, err := s.totp.ValidateCode(*admin.TwoFactorSecret, code)
	if err != nil || !valid {
		s.audit.Log(ctx, &admin.ID, models.AuditAction2FAFailed, s.attemptDetails(admin.Email, "invalid_totp_code", ipAddress), ipAddress, userAgent)
		return nil, models.ErrInvalidTwoFactorCode
	}

	session, err := s.issueSession(ctx, admin, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, &admin.ID, models.AuditAction2FASuccess, s.attemptDetails(admin.Email, "", ipAddress), ipAddress, userAgent)
	return session, nil
}

// Refresh exchanges a live refresh token for a fresh access token. Refresh
// tokens do not rotate: the same opaque value stays valid until it expires
// or the session is logged out.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ipAddress, userAgent string) (string, int, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", 0, models.ErrInvalidRefreshToken
	}

	row, err := s.refreshRepo.GetByHash(ctx, auth.HashRefreshSecret(refreshToken))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", 0, models.ErrInvalidRefreshToken
		}
		s.logger.Error("failed to look up refresh token", slog.Any("error", err))
		return "", 0, models.ErrInternalServer
	}

	if !row.IsActive {
		return "", 0, models.ErrRefreshTokenRevoked
	}

	if row.IsExpired(s.now()) {
		return "", 0, models.ErrRefreshTokenExpired
	}

	admin, err := s.adminRepo.GetByID(ctx, row.AdminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", 0, models.ErrInvalidRefreshToken
		}
		s.logger.Error("failed to load admin for token refresh", slog.Any("error", err))
		return "", 0, models.ErrInternalServer
	}

	if !admin.IsActive {
		return "", 0, models.ErrAccountDeactivated
	}

	accessToken, err := s.tm.GenerateAccessToken(admin)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return "", 0, models.ErrInternalServer
	}

	s.audit.Log(ctx, &admin.ID, models.AuditActionTokenRefresh, s.attemptDetails(admin.Email, "", ipAddress), ipAddress, userAgent)

	return accessToken, int(s.cfg.AccessTokenExpiry.Seconds()), nil
}

// Logout revokes every refresh token the account holds. Calling it twice is
// fine: the second call revokes nothing and still succeeds.
func (s *AuthService) Logout(ctx context.Context, adminID, ipAddress, userAgent string) error {
	revoked, err := s.refreshRepo.DeactivateAllForAdmin(ctx, adminID)
	if err != nil {
		s.logger.Error("failed to revoke refresh tokens", slog.String("admin_id", adminID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.Log(ctx, &adminID, models.AuditActionLogout, models.AuditDetails{"tokens_revoked": revoked}, ipAddress, userAgent)
	s.logger.Info("admin logged out", slog.String("admin_id", adminID), slog.Int64("tokens_revoked", revoked))
	return nil
}

// GetProfile returns the current account for an authenticated session.
func (s *AuthService) GetProfile(ctx context.Context, adminID string) (*AdminResponse, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load admin profile", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return adminModelToResponse(admin), nil
}

// ChangePassword verifies the current password, enforces the strength policy
// on the replacement, and revokes every open session so other devices must
// log in again with the new credential.
func (s *AuthService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword, ipAddress, userAgent string) error {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrInvalidCredentials
		}
		s.logger.Error("failed to load admin for password change", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, currentPassword); err != nil {
		s.audit.Log(ctx, &admin.ID, models.AuditActionPasswordChange, s.attemptDetails(admin.Email, "current_password_mismatch", ipAddress), ipAddress, userAgent)
		return models.ErrInvalidCredentials
	}

	if result := pkgauth.ValidateStrength(newPassword); !result.IsValid {
		return models.ErrWeakPassword
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	revoked, err := s.adminRepo.UpdatePassword(ctx, admin.ID, hash)
	if err != nil {
		s.logger.Error("failed to update password", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	details := s.attemptDetails(admin.Email, "", ipAddress)
	details["tokens_revoked"] = revoked
	s.audit.Log(ctx, &admin.ID, models.AuditActionPasswordChange, details, ipAddress, userAgent)
	s.logger.Info("admin password changed", slog.String("admin_id", admin.ID), slog.Int64("tokens_revoked", revoked))

	return nil
}

// RequiresCaptcha reports whether login attempts from the address currently
// need a CAPTCHA token. Tracker errors fail open.
func (s *AuthService) RequiresCaptcha(ctx context.Context, ipAddress string) bool {
	required, err := s.tracker.RequiresCaptcha(ctx, ipAddress)
	if err != nil {
		return false
	}
	return required
}

// enforceCaptchaGate rejects the attempt when the address has too many
// recent failures and the CAPTCHA token is missing or invalid. Rejections
// here are not audited and not counted as failures.
func (s *AuthService) enforceCaptchaGate(ctx context.Context, input LoginInput) error {
	required, err := s.tracker.RequiresCaptcha(ctx, input.IPAddress)
	if err != nil {
		// tracker outage fails open
		return nil
	}
	if !required {
		return nil
	}

	if input.CaptchaToken == "" {
		return models.ErrVerificationRequired
	}

	ok, err := s.verifier.Verify(ctx, input.CaptchaToken, input.IPAddress)
	if err != nil || !ok {
		// verification fails closed
		return models.ErrInvalidVerification
	}

	return nil
}

func (s *AuthService) recordUnknownEmailFailure(ctx context.Context, email string, input LoginInput) {
	if err := s.tracker.Record(ctx, input.IPAddress); err != nil {
		s.logger.Warn("failed to record login failure for address", slog.Any("error", err))
	}

	s.audit.Log(ctx, nil, models.AuditActionLoginFailed, s.attemptDetails(email, "unknown_email", input.IPAddress), input.IPAddress, input.UserAgent)
}

// recordPasswordFailure bumps the account failure counter and, at the
// threshold, engages the lock. A below-threshold failure writes NULL into
// locked_until, clearing any stale expired lock in the same statement.
func (s *AuthService) recordPasswordFailure(ctx context.Context, admin *models.Admin, input LoginInput) {
	failedAttempts := admin.FailedAttempts + 1

	var lockedUntil *time.Time
	if failedAttempts >= s.cfg.LockoutThreshold {
		t := s.now().Add(s.cfg.LockoutDuration)
		lockedUntil = &t
	}

	if err := s.adminRepo.RecordLoginFailure(ctx, admin.ID, failedAttempts, lockedUntil); err != nil {
		s.logger.Error("failed to record login failure", slog.String("admin_id", admin.ID), slog.Any("error", err))
	}

	if err := s.tracker.Record(ctx, input.IPAddress); err != nil {
		s.logger.Warn("failed to record login failure for address", slog.Any("error", err))
	}

	details := s.attemptDetails(admin.Email, "invalid_password", input.IPAddress)
	details["failed_attempts"] = failedAttempts
	if lockedUntil != nil {
		details["locked_until"] = lockedUntil.UTC().Format(time.RFC3339)
	}
	s.audit.Log(ctx, &admin.ID, models.AuditActionLoginFailed, details, input.IPAddress, input.UserAgent)

	if lockedUntil != nil {
		s.logger.Warn("admin account locked",
			slog.String("admin_id", admin.ID),
			slog.Int("failed_attempts", failedAttempts))
		s.notifier.NotifyAccountLocked(ctx, admin.Email, input.IPAddress, *lockedUntil)
	}
}

// recordPasswordSuccess applies the side effects of a correct password:
// reset the durable failure fields, stamp last-login, drop the address
// counter, and write the LOGIN audit entry. This runs before the two-factor
// branch, so an abandoned handshake still leaves a trace.
func (s *AuthService) recordPasswordSuccess(ctx context.Context, admin *models.Admin, ipAddress, userAgent string) error {
	if err := s.adminRepo.RecordLoginSuccess(ctx, admin.ID); err != nil {
		s.logger.Error("failed to record login success", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.tracker.Clear(ctx, ipAddress); err != nil {
		s.logger.Warn("failed to clear login failures for address", slog.Any("error", err))
	}

	now := s.now()
	admin.FailedAttempts = 0
	admin.LockedUntil = nil
	admin.LastLoginAt = &now

	s.audit.Log(ctx, &admin.ID, models.AuditActionLogin, s.attemptDetails(admin.Email, "", ipAddress), ipAddress, userAgent)
	return nil
}

// issueSession mints the token pair for an account whose password already
// checked out. Failure state was reset when the password was verified.
func (s *AuthService) issueSession(ctx context.Context, admin *models.Admin, ipAddress, userAgent string) (*Session, error) {
	accessToken, err := s.tm.GenerateAccessToken(admin)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	plaintext, hash, err := auth.GenerateRefreshSecret()
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	_, err = s.refreshRepo.Create(ctx, &models.RefreshToken{
		AdminID:   admin.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(s.cfg.RefreshTokenExpiry),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
	if err != nil {
		s.logger.Error("failed to store refresh token", slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("admin logged in", slog.String("admin_id", admin.ID), slog.String("role", admin.Role))

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: plaintext,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.cfg.AccessTokenExpiry.Seconds()),
		Admin:        adminModelToResponse(admin),
	}, nil
}

func (s *AuthService) auditFailure(ctx context.Context, adminID *string, reason string, input LoginInput) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	s.audit.Log(ctx, adminID, models.AuditActionLoginFailed, s.attemptDetails(email, reason, input.IPAddress), input.IPAddress, input.UserAgent)
}

// attemptDetails builds the audit payload for a login-related event,
// attaching the geolocation of the source address when it resolves.
func (s *AuthService) attemptDetails(email, reason, ipAddress string) models.AuditDetails {
	details := models.AuditDetails{"email": email}
	if reason != "" {
		details["reason"] = reason
	}

	if loc := s.geo.Lookup(ipAddress); loc != nil {
		details["location"] = loc
	}

	return details
}

func adminModelToResponse(admin *models.Admin) *AdminResponse {
	return &AdminResponse{
		ID:               admin.ID,
		Email:            admin.Email,
		Name:             admin.Name,
		Role:             admin.Role,
		TwoFactorEnabled: admin.TwoFactorEnabled,
		LastLoginAt:      admin.LastLoginAt,
		CreatedAt:        admin.CreatedAt,
	}
}
