package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianx/backoffice/internal/models"
)

func testAdmin() *models.Admin {
	return &models.Admin{
		ID:    "b7a3b0f2-4f4e-4a4a-9a6e-3f0d6c1d2e3f",
		Email: "ops@meridianx.io",
		Name:  "Ops Admin",
		Role:  models.RoleAdmin,
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", 15*time.Minute)

	tokenString, err := tm.GenerateAccessToken(testAdmin())
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := tm.ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "b7a3b0f2-4f4e-4a4a-9a6e-3f0d6c1d2e3f", claims.AdminID())
	assert.Equal(t, "ops@meridianx.io", claims.Email)
	assert.Equal(t, "Ops Admin", claims.Name)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID, "token should carry a jti")
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", 15*time.Minute)
	other := NewTokenManager("a-different-secret-1234", 15*time.Minute)

	tokenString, err := tm.GenerateAccessToken(testAdmin())
	require.NoError(t, err)

	_, err = other.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", -1*time.Minute)

	tokenString, err := tm.GenerateAccessToken(testAdmin())
	require.NoError(t, err)

	_, err = tm.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", 15*time.Minute)

	_, err := tm.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestGenerateRefreshSecret(t *testing.T) {
	plaintext, hash, err := GenerateRefreshSecret()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(plaintext)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	assert.Len(t, hash, 64, "hash should be hex sha-256")
	assert.Equal(t, HashRefreshSecret(plaintext), hash)
}

func TestGenerateRefreshSecret_Unique(t *testing.T) {
	first, _, err := GenerateRefreshSecret()
	require.NoError(t, err)
	second, _, err := GenerateRefreshSecret()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
