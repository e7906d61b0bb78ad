package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Login protocol failures. ErrInvalidCredentials carries the same
	// message whether the email is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("admin account is deactivated")
	ErrAccountLocked      = errors.New("account is temporarily locked")

	// Password policy failure on a credential change
	ErrWeakPassword = errors.New("password does not meet the strength policy")

	// CAPTCHA gate failures
	ErrVerificationRequired = errors.New("captcha verification required")
	ErrInvalidVerification  = errors.New("invalid captcha verification")

	// Two-factor failures
	ErrInvalidTwoFactorCode   = errors.New("invalid 2FA code")
	ErrTwoFactorNotConfigured = errors.New("2FA is not configured")

	// Refresh token failures
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrRefreshTokenExpired = errors.New("refresh token has expired")
)
