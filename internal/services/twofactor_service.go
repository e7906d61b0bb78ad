package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/meridianx/backoffice/internal/auth"
	"github.com/meridianx/backoffice/internal/models"
)

// TwoFactorService manages TOTP enrollment for admin accounts.
//
// Enrollment is two-phase: GenerateSecret stores a fresh shared secret
// without enabling verification, then Enable flips the flag once the admin
// proves they scanned the QR code by submitting a valid code.
type TwoFactorService struct {
	repo   AdminRepository
	totp   *auth.TOTPManager
	logger *slog.Logger
}

func NewTwoFactorService(repo AdminRepository, totp *auth.TOTPManager, logger *slog.Logger) *TwoFactorService {
	return &TwoFactorService{repo: repo, totp: totp, logger: logger}
}

// GenerateSecret creates and stores a new shared secret for the account and
// returns the enrollment material. Calling it again replaces any previous
// secret, whether or not enrollment completed.
func (s *TwoFactorService) GenerateSecret(ctx context.Context, adminID string) (*auth.TOTPSetup, error) {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load admin for 2fa setup", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	setup, err := s.totp.GenerateSetup(admin.Email)
	if err != nil {
		s.logger.Error("failed to generate totp secret", slog.String("admin_id", adminID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.repo.SetTwoFactorSecret(ctx, adminID, setup.Secret); err != nil {
		s.logger.Error("failed to store totp secret", slog.String("admin_id", adminID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("totp secret generated", slog.String("admin_id", adminID))
	return setup, nil
}

// Enable completes enrollment. The submitted code must validate against the
// stored secret before verification is switched on.
func (s *TwoFactorService) Enable(ctx context.Context, adminID, code string) error {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to load admin for 2fa enable", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if admin.TwoFactorSecret == nil || *admin.TwoFactorSecret == "" {
		return models.ErrTwoFactorNotConfigured
	}

	valid, err := s.totp.ValidateCode(*admin.TwoFactorSecret, code)
	if err != nil || !valid {
		return models.ErrInvalidTwoFactorCode
	}

	if err := s.repo.EnableTwoFactor(ctx, adminID); err != nil {
		s.logger.Error("failed to enable 2fa", slog.String("admin_id", adminID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("two-factor enabled", slog.String("admin_id", adminID))
	return nil
}

// Disable switches verification off and discards the stored secret. It does
// not require a code: the caller already holds a valid session.
func (s *TwoFactorService) Disable(ctx context.Context, adminID string) error {
	if err := s.repo.DisableTwoFactor(ctx, adminID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to disable 2fa", slog.String("admin_id", adminID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("two-factor disabled", slog.String("admin_id", adminID))
	return nil
}

// VerifyCode checks a code against the account's stored secret without
// mutating anything. Used for session-bound re-verification of sensitive
// operations.
func (s *TwoFactorService) VerifyCode(ctx context.Context, adminID, code string) error {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to load admin for 2fa verify", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if admin.TwoFactorSecret == nil || *admin.TwoFactorSecret == "" {
		return models.ErrTwoFactorNotConfigured
	}

	valid, err := s.totp.ValidateCode(*admin.TwoFactorSecret, code)
	if err != nil || !valid {
		return models.ErrInvalidTwoFactorCode
	}

	return nil
}
