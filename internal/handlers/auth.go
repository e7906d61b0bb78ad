package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridianx/backoffice/internal/auth"
	"github.com/meridianx/backoffice/internal/models"
	"github.com/meridianx/backoffice/internal/services"
	pkgauth "github.com/meridianx/backoffice/pkg/auth"
	pkghttp "github.com/meridianx/backoffice/pkg/http"
)

// AuthServiceInterface defines the interface for authentication business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, input services.LoginInput) (*services.LoginOutcome, error)
	CompleteTwoFactor(ctx context.Context, adminID, code, ipAddress, userAgent string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken, ipAddress, userAgent string) (string, int, error)
	Logout(ctx context.Context, adminID, ipAddress, userAgent string) error
	GetProfile(ctx context.Context, adminID string) (*services.AdminResponse, error)
	ChangePassword(ctx context.Context, adminID, currentPassword, newPassword, ipAddress, userAgent string) error
	RequiresCaptcha(ctx context.Context, ipAddress string) bool
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{service: service, ipConfig: ipConfig}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	CaptchaToken string `json:"captcha_token,omitempty"`
}

// TwoFactorLoginRequest represents the second step of a 2FA login
type TwoFactorLoginRequest struct {
	AdminID string `json:"admin_id" validate:"required,uuid"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// PasswordStrengthRequest represents the request body for the strength probe
type PasswordStrengthRequest struct {
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest represents a credential rotation for the current account
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// TwoFactorRequiredResponse tells the client to complete the TOTP handshake
type TwoFactorRequiredResponse struct {
	TwoFactorRequired bool   `json:"two_factor_required"`
	AdminID           string `json:"admin_id"`
}

// RefreshResponse carries a fresh access token
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// CaptchaRequiredResponse reports the CAPTCHA gate state for the caller's IP
type CaptchaRequiredResponse struct {
	CaptchaRequired bool `json:"captcha_required"`
}

// VerifyResponse confirms a live session and carries its account
type VerifyResponse struct {
	Valid bool                    `json:"valid"`
	Admin *services.AdminResponse `json:"admin"`
}

// Login handles the first step of admin login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	outcome, err := h.service.Login(r.Context(), services.LoginInput{
		Email:        req.Email,
		Password:     req.Password,
		CaptchaToken: req.CaptchaToken,
		IPAddress:    pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent:    r.Header.Get("User-Agent"),
	})
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	if outcome.TwoFactorPending != nil {
		pkghttp.WriteJSON(w, http.StatusOK, TwoFactorRequiredResponse{
			TwoFactorRequired: true,
			AdminID:           outcome.TwoFactorPending.AdminID,
		})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, outcome.Authenticated)
}

// CompleteTwoFactor handles the second step of admin login
func (h *AuthHandler) CompleteTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req TwoFactorLoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	session, err := h.service.CompleteTwoFactor(r.Context(), req.AdminID, req.Code,
		pkghttp.ExtractClientIP(r, h.ipConfig), r.Header.Get("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTwoFactorCode):
			pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_2fa_code", "Invalid verification code")
		case errors.Is(err, models.ErrTwoFactorNotConfigured):
			pkghttp.WriteBadRequest(w, "Two-factor authentication is not configured for this account")
		case errors.Is(err, models.ErrInvalidCredentials),
			errors.Is(err, models.ErrAccountDeactivated),
			errors.Is(err, models.ErrAccountLocked):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, session)
}

// Refresh exchanges a refresh token for a new access token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	accessToken, expiresIn, err := h.service.Refresh(r.Context(), req.RefreshToken,
		pkghttp.ExtractClientIP(r, h.ipConfig), r.Header.Get("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidRefreshToken):
			pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_refresh_token", "Invalid refresh token")
		case errors.Is(err, models.ErrRefreshTokenRevoked):
			pkghttp.WriteError(w, http.StatusUnauthorized, "refresh_token_revoked", "Refresh token has been revoked")
		case errors.Is(err, models.ErrRefreshTokenExpired):
			pkghttp.WriteError(w, http.StatusUnauthorized, "refresh_token_expired", "Refresh token has expired")
		case errors.Is(err, models.ErrAccountDeactivated):
			pkghttp.WriteUnauthorized(w, "Account is deactivated")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}

// Logout revokes every refresh token of the current session's account
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	err := h.service.Logout(r.Context(), claims.AdminID(),
		pkghttp.ExtractClientIP(r, h.ipConfig), r.Header.Get("User-Agent"))
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Profile returns the current account
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), claims.AdminID())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "Account not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profile)
}

// Verify confirms that the presented access token is valid and returns the
// account it belongs to
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), claims.AdminID())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "Account not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, VerifyResponse{Valid: true, Admin: profile})
}

// ChangePassword rotates the current account's password. Every refresh token
// the account holds is revoked along with it.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	err := h.service.ChangePassword(r.Context(), claims.AdminID(), req.CurrentPassword, req.NewPassword,
		pkghttp.ExtractClientIP(r, h.ipConfig), r.Header.Get("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Current password is incorrect")
		case errors.Is(err, models.ErrWeakPassword):
			pkghttp.WriteError(w, http.StatusBadRequest, "weak_password", "New password does not meet the password policy")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

// CaptchaRequired reports whether the caller's address must solve a CAPTCHA
func (h *AuthHandler) CaptchaRequired(w http.ResponseWriter, r *http.Request) {
	required := h.service.RequiresCaptcha(r.Context(), pkghttp.ExtractClientIP(r, h.ipConfig))
	pkghttp.WriteJSON(w, http.StatusOK, CaptchaRequiredResponse{CaptchaRequired: required})
}

// PasswordStrength evaluates a candidate password against the policy.
// Pure computation; no account state is read or written.
func (h *AuthHandler) PasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req PasswordStrengthRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, pkgauth.ValidateStrength(req.Password))
}

// writeLoginError maps login failures to responses. Credential, lock, and
// deactivation failures all collapse into the same 401 so the API does not
// leak which accounts exist or what state they are in.
func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrAccountDeactivated),
		errors.Is(err, models.ErrAccountLocked):
		pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, models.ErrVerificationRequired):
		pkghttp.WriteError(w, http.StatusBadRequest, "captcha_required", "CAPTCHA verification is required")
	case errors.Is(err, models.ErrInvalidVerification):
		pkghttp.WriteError(w, http.StatusBadRequest, "captcha_invalid", "CAPTCHA verification failed")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
