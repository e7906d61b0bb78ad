package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	internalauth "github.com/meridianx/backoffice/internal/auth"
	"github.com/meridianx/backoffice/internal/models"
	pkghttp "github.com/meridianx/backoffice/pkg/http"
)

// TwoFactorServiceInterface defines the interface for TOTP enrollment logic
type TwoFactorServiceInterface interface {
	GenerateSecret(ctx context.Context, adminID string) (*internalauth.TOTPSetup, error)
	Enable(ctx context.Context, adminID, code string) error
	Disable(ctx context.Context, adminID string) error
	VerifyCode(ctx context.Context, adminID, code string) error
}

// TwoFactorHandler handles TOTP enrollment HTTP requests
type TwoFactorHandler struct {
	service TwoFactorServiceInterface
}

func NewTwoFactorHandler(service TwoFactorServiceInterface) *TwoFactorHandler {
	return &TwoFactorHandler{service: service}
}

// TwoFactorCodeRequest carries a 6-digit TOTP code
type TwoFactorCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// TwoFactorSetupResponse carries enrollment material for the authenticator app
type TwoFactorSetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode string `json:"qr_code"`
}

// Setup generates a fresh shared secret for the current account
func (h *TwoFactorHandler) Setup(w http.ResponseWriter, r *http.Request) {
	claims := internalauth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	setup, err := h.service.GenerateSecret(r.Context(), claims.AdminID())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "Account not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, TwoFactorSetupResponse{
		Secret: setup.Secret,
		URL:    setup.URL,
		QRCode: setup.QRDataURL,
	})
}

// Enable completes enrollment with a code from the authenticator app
func (h *TwoFactorHandler) Enable(w http.ResponseWriter, r *http.Request) {
	claims := internalauth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req TwoFactorCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Enable(r.Context(), claims.AdminID(), req.Code); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTwoFactorCode):
			pkghttp.WriteError(w, http.StatusBadRequest, "invalid_2fa_code", "Invalid verification code")
		case errors.Is(err, models.ErrTwoFactorNotConfigured):
			pkghttp.WriteBadRequest(w, "Generate a secret before enabling two-factor authentication")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Two-factor authentication enabled"})
}

// Disable switches two-factor verification off for the current account
func (h *TwoFactorHandler) Disable(w http.ResponseWriter, r *http.Request) {
	claims := internalauth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.Disable(r.Context(), claims.AdminID()); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Two-factor authentication disabled"})
}

// Verify checks a code against the stored secret without changing anything
func (h *TwoFactorHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := internalauth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req TwoFactorCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.VerifyCode(r.Context(), claims.AdminID(), req.Code); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTwoFactorCode):
			pkghttp.WriteError(w, http.StatusBadRequest, "invalid_2fa_code", "Invalid verification code")
		case errors.Is(err, models.ErrTwoFactorNotConfigured):
			pkghttp.WriteBadRequest(w, "Two-factor authentication is not configured")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
