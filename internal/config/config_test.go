package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RequiresDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-dev-secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-dev-secret")
	t.Setenv("DB_PASSWORD", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenExpiry)
	assert.Equal(t, "MeridianX Admin", cfg.Auth.TOTPIssuer)
	assert.Equal(t, 5, cfg.Auth.LockoutThreshold)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, 3, cfg.Auth.CaptchaThreshold)
	assert.Equal(t, 15*time.Minute, cfg.Auth.CaptchaWindow)
	assert.Equal(t, 5*time.Second, cfg.Captcha.Timeout)
	assert.False(t, cfg.Captcha.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Email.Enabled())
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-dev-secret")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("LOCKOUT_THRESHOLD", "3")
	t.Setenv("LOCKOUT_DURATION", "1h")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Auth.LockoutThreshold)
	assert.Equal(t, time.Hour, cfg.Auth.LockoutDuration)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12"}, cfg.Server.TrustedProxies)
}

func TestValidateJWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		env     string
		wantErr bool
	}{
		{"dev short", "short", "development", true},
		{"dev ok", "sixteen-chars-ok", "development", false},
		{"prod needs 32", "sixteen-chars-ok", "production", true},
		{"prod ok", "this-secret-is-at-least-32-chars-long", "production", false},
		{"weak value", "changeme", "development", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateJWTSecret(tt.secret, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "pw", Name: "backoffice", SSLMode: "require",
	}
	assert.Equal(t, "host=db port=5433 user=app password=pw dbname=backoffice sslmode=require", cfg.DSN())
}
