package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianx/backoffice/internal/models"
	"github.com/meridianx/backoffice/internal/services"
)

func postJSON(path, body string) *http.Request {
	r := httptest.NewRequest("POST", path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.RemoteAddr = "203.0.113.7:51234"
	return r
}

func TestLoginHandler_Success(t *testing.T) {
	svc := &MockAuthService{
		LoginFunc: func(_ context.Context, input services.LoginInput) (*services.LoginOutcome, error) {
			assert.Equal(t, "ops@meridianx.io", input.Email)
			assert.Equal(t, "203.0.113.7", input.IPAddress)
			return &services.LoginOutcome{
				Authenticated: &services.Session{
					AccessToken:  "access-token",
					RefreshToken: "refresh-token",
					TokenType:    "Bearer",
					ExpiresIn:    900,
					Admin:        &services.AdminResponse{ID: "admin-1", Email: input.Email},
				},
			}, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Login(w, postJSON("/auth/login", `{"email":"ops@meridianx.io","password":"CorrectHorse9!"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp services.Session
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, 900, resp.ExpiresIn)
}

func TestLoginHandler_TwoFactorPending(t *testing.T) {
	svc := &MockAuthService{
		LoginFunc: func(_ context.Context, _ services.LoginInput) (*services.LoginOutcome, error) {
			return &services.LoginOutcome{
				TwoFactorPending: &services.TwoFactorChallenge{AdminID: "admin-1"},
			}, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Login(w, postJSON("/auth/login", `{"email":"ops@meridianx.io","password":"CorrectHorse9!"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp TwoFactorRequiredResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.TwoFactorRequired)
	assert.Equal(t, "admin-1", resp.AdminID)
}

func TestLoginHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid credentials", models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"locked account stays generic", models.ErrAccountLocked, http.StatusUnauthorized, "invalid_credentials"},
		{"deactivated account stays generic", models.ErrAccountDeactivated, http.StatusUnauthorized, "invalid_credentials"},
		{"captcha required", models.ErrVerificationRequired, http.StatusBadRequest, "captcha_required"},
		{"captcha invalid", models.ErrInvalidVerification, http.StatusBadRequest, "captcha_invalid"},
		{"internal failure", models.ErrInternalServer, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAuthService{
				LoginFunc: func(_ context.Context, _ services.LoginInput) (*services.LoginOutcome, error) {
					return nil, tt.err
				},
			}
			h := NewAuthHandler(svc, nil)

			w := httptest.NewRecorder()
			h.Login(w, postJSON("/auth/login", `{"email":"ops@meridianx.io","password":"x"}`))

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantCode, resp["error"])
		})
	}
}

func TestLoginHandler_RejectsBadPayload(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, nil)

	w := httptest.NewRecorder()
	h.Login(w, postJSON("/auth/login", `{"email":"not-an-email","password":"x"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Login(w, postJSON("/auth/login", `{not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteTwoFactorHandler(t *testing.T) {
	svc := &MockAuthService{
		CompleteTwoFactorFunc: func(_ context.Context, adminID, code, _, _ string) (*services.Session, error) {
			if code != "123456" {
				return nil, models.ErrInvalidTwoFactorCode
			}
			return &services.Session{AccessToken: "access-token"}, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	body := `{"admin_id":"b7a3b0f2-4f4e-4a4a-9a6e-3f0d6c1d2e3f","code":"123456"}`
	w := httptest.NewRecorder()
	h.CompleteTwoFactor(w, postJSON("/auth/login/2fa", body))
	assert.Equal(t, http.StatusOK, w.Code)

	body = `{"admin_id":"b7a3b0f2-4f4e-4a4a-9a6e-3f0d6c1d2e3f","code":"999999"}`
	w = httptest.NewRecorder()
	h.CompleteTwoFactor(w, postJSON("/auth/login/2fa", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// non-numeric code is rejected before the service sees it
	body = `{"admin_id":"b7a3b0f2-4f4e-4a4a-9a6e-3f0d6c1d2e3f","code":"abc123"}`
	w = httptest.NewRecorder()
	h.CompleteTwoFactor(w, postJSON("/auth/login/2fa", body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshHandler_ErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"unknown token", models.ErrInvalidRefreshToken, "invalid_refresh_token"},
		{"revoked token", models.ErrRefreshTokenRevoked, "refresh_token_revoked"},
		{"expired token", models.ErrRefreshTokenExpired, "refresh_token_expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAuthService{
				RefreshFunc: func(_ context.Context, _, _, _ string) (string, int, error) {
					return "", 0, tt.err
				},
			}
			h := NewAuthHandler(svc, nil)

			w := httptest.NewRecorder()
			h.Refresh(w, postJSON("/auth/refresh", `{"refresh_token":"some-token"}`))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantCode, resp["error"])
		})
	}
}

func TestRefreshHandler_Success(t *testing.T) {
	svc := &MockAuthService{
		RefreshFunc: func(_ context.Context, token, _, _ string) (string, int, error) {
			assert.Equal(t, "live-token", token)
			return "new-access-token", 900, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Refresh(w, postJSON("/auth/refresh", `{"refresh_token":"live-token"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp RefreshResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "new-access-token", resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
}

func TestLogoutHandler(t *testing.T) {
	var loggedOut string
	svc := &MockAuthService{
		LogoutFunc: func(_ context.Context, adminID, _, _ string) error {
			loggedOut = adminID
			return nil
		},
	}
	h := NewAuthHandler(svc, nil)

	r := withClaims(postJSON("/auth/logout", ``), "admin-1", "ops@meridianx.io", models.RoleAdmin)
	w := httptest.NewRecorder()
	h.Logout(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "admin-1", loggedOut)
}

func TestLogoutHandler_NoSession(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, nil)

	w := httptest.NewRecorder()
	h.Logout(w, postJSON("/auth/logout", ``))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileHandler(t *testing.T) {
	svc := &MockAuthService{
		GetProfileFunc: func(_ context.Context, adminID string) (*services.AdminResponse, error) {
			return &services.AdminResponse{ID: adminID, Email: "ops@meridianx.io"}, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	r := withClaims(httptest.NewRequest("GET", "/auth/profile", nil), "admin-1", "ops@meridianx.io", models.RoleAdmin)
	w := httptest.NewRecorder()
	h.Profile(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp services.AdminResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "admin-1", resp.ID)
}

func TestVerifyHandler(t *testing.T) {
	svc := &MockAuthService{
		GetProfileFunc: func(_ context.Context, adminID string) (*services.AdminResponse, error) {
			return &services.AdminResponse{ID: adminID, Email: "ops@meridianx.io", Role: models.RoleAdmin}, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	r := withClaims(httptest.NewRequest("GET", "/auth/verify", nil), "admin-1", "ops@meridianx.io", models.RoleAdmin)
	w := httptest.NewRecorder()
	h.Verify(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp VerifyResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.Admin)
	assert.Equal(t, "admin-1", resp.Admin.ID)
	assert.Equal(t, "ops@meridianx.io", resp.Admin.Email)
}

func TestChangePasswordHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"wrong current password", models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"weak replacement", models.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
		{"internal failure", models.ErrInternalServer, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAuthService{
				ChangePasswordFunc: func(_ context.Context, _, _, _, _, _ string) error {
					return tt.err
				},
			}
			h := NewAuthHandler(svc, nil)

			r := withClaims(postJSON("/auth/change-password", `{"current_password":"old","new_password":"Freshpass7$x"}`), "admin-1", "ops@meridianx.io", models.RoleAdmin)
			w := httptest.NewRecorder()
			h.ChangePassword(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantCode, resp["error"])
		})
	}
}

func TestChangePasswordHandler_Success(t *testing.T) {
	var gotCurrent, gotNew string
	svc := &MockAuthService{
		ChangePasswordFunc: func(_ context.Context, adminID, currentPassword, newPassword, _, _ string) error {
			assert.Equal(t, "admin-1", adminID)
			gotCurrent, gotNew = currentPassword, newPassword
			return nil
		},
	}
	h := NewAuthHandler(svc, nil)

	r := withClaims(postJSON("/auth/change-password", `{"current_password":"CorrectHorse9!","new_password":"Freshpass7$x"}`), "admin-1", "ops@meridianx.io", models.RoleAdmin)
	w := httptest.NewRecorder()
	h.ChangePassword(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CorrectHorse9!", gotCurrent)
	assert.Equal(t, "Freshpass7$x", gotNew)
}

func TestChangePasswordHandler_NoSession(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, nil)

	w := httptest.NewRecorder()
	h.ChangePassword(w, postJSON("/auth/change-password", `{"current_password":"a","new_password":"b"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCaptchaRequiredHandler(t *testing.T) {
	svc := &MockAuthService{
		RequiresCaptchaFunc: func(_ context.Context, ip string) bool {
			return ip == "203.0.113.7"
		},
	}
	h := NewAuthHandler(svc, nil)

	r := httptest.NewRequest("GET", "/auth/captcha-required", nil)
	r.RemoteAddr = "203.0.113.7:51234"
	w := httptest.NewRecorder()
	h.CaptchaRequired(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp CaptchaRequiredResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.CaptchaRequired)
}

func TestPasswordStrengthHandler(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, nil)

	w := httptest.NewRecorder()
	h.PasswordStrength(w, postJSON("/auth/password-strength", `{"password":"Abcdef1!"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		IsValid  bool   `json:"is_valid"`
		Strength string `json:"strength"`
		Score    int    `json:"score"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.IsValid)
	assert.Equal(t, "strong", resp.Strength)
	assert.Equal(t, 96, resp.Score)
}
