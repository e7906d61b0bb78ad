package services

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianx/backoffice/internal/auth"
	"github.com/meridianx/backoffice/internal/models"
)

func newTwoFactorFixture() (*TwoFactorService, *MockAdminRepository, *models.Admin) {
	admin := &models.Admin{
		ID:       "admin-1",
		Email:    "ops@meridianx.io",
		Name:     "Ops Admin",
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	repo := &MockAdminRepository{
		GetByIDFunc: func(_ context.Context, id string) (*models.Admin, error) {
			if id != admin.ID {
				return nil, models.ErrNotFound
			}
			copied := *admin
			return &copied, nil
		},
		SetTwoFactorSecretFunc: func(_ context.Context, _ string, secret string) error {
			admin.TwoFactorSecret = &secret
			return nil
		},
		EnableTwoFactorFunc: func(_ context.Context, _ string) error {
			admin.TwoFactorEnabled = true
			return nil
		},
		DisableTwoFactorFunc: func(_ context.Context, _ string) error {
			admin.TwoFactorEnabled = false
			admin.TwoFactorSecret = nil
			return nil
		},
	}

	svc := NewTwoFactorService(repo, auth.NewTOTPManager("MeridianX Admin"), discardLogger())
	return svc, repo, admin
}

func TestTwoFactorEnrollment(t *testing.T) {
	svc, _, admin := newTwoFactorFixture()
	ctx := context.Background()

	setup, err := svc.GenerateSecret(ctx, "admin-1")
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.NotEmpty(t, setup.QRDataURL)

	// secret is stored but verification stays off until proven
	require.NotNil(t, admin.TwoFactorSecret)
	assert.False(t, admin.TwoFactorEnabled)

	// wrong code does not complete enrollment
	err = svc.Enable(ctx, "admin-1", "000000")
	assert.ErrorIs(t, err, models.ErrInvalidTwoFactorCode)
	assert.False(t, admin.TwoFactorEnabled)

	// valid code flips the switch
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.Enable(ctx, "admin-1", code))
	assert.True(t, admin.TwoFactorEnabled)
}

func TestTwoFactorGenerateSecret_ReplacesPrevious(t *testing.T) {
	svc, _, admin := newTwoFactorFixture()
	ctx := context.Background()

	first, err := svc.GenerateSecret(ctx, "admin-1")
	require.NoError(t, err)
	second, err := svc.GenerateSecret(ctx, "admin-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.Secret, second.Secret)
	assert.Equal(t, second.Secret, *admin.TwoFactorSecret)
}

func TestTwoFactorEnable_WithoutSecret(t *testing.T) {
	svc, _, _ := newTwoFactorFixture()

	err := svc.Enable(context.Background(), "admin-1", "123456")
	assert.ErrorIs(t, err, models.ErrTwoFactorNotConfigured)
}

func TestTwoFactorDisable(t *testing.T) {
	svc, _, admin := newTwoFactorFixture()
	ctx := context.Background()

	setup, err := svc.GenerateSecret(ctx, "admin-1")
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.Enable(ctx, "admin-1", code))

	require.NoError(t, svc.Disable(ctx, "admin-1"))
	assert.False(t, admin.TwoFactorEnabled)
	assert.Nil(t, admin.TwoFactorSecret)
}

func TestTwoFactorVerifyCode(t *testing.T) {
	svc, _, _ := newTwoFactorFixture()
	ctx := context.Background()

	setup, err := svc.GenerateSecret(ctx, "admin-1")
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyCode(ctx, "admin-1", code))
	assert.ErrorIs(t, svc.VerifyCode(ctx, "admin-1", "000000"), models.ErrInvalidTwoFactorCode)
}

func TestTwoFactorVerifyCode_UnknownAdmin(t *testing.T) {
	svc, _, _ := newTwoFactorFixture()

	err := svc.VerifyCode(context.Background(), "missing", "123456")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
