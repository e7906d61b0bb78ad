package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSetup(t *testing.T) {
	tm := NewTOTPManager("MeridianX Admin")

	setup, err := tm.GenerateSetup("ops@meridianx.io")
	require.NoError(t, err)

	assert.NotEmpty(t, setup.Secret)
	assert.True(t, strings.HasPrefix(setup.URL, "otpauth://totp/"))
	assert.Contains(t, setup.URL, "ops%40meridianx.io")
	assert.Contains(t, setup.URL, "MeridianX")
	assert.True(t, strings.HasPrefix(setup.QRDataURL, "data:image/png;base64,"))
}

func TestGenerateSetup_UniqueSecrets(t *testing.T) {
	tm := NewTOTPManager("MeridianX Admin")

	first, err := tm.GenerateSetup("ops@meridianx.io")
	require.NoError(t, err)
	second, err := tm.GenerateSetup("ops@meridianx.io")
	require.NoError(t, err)

	assert.NotEqual(t, first.Secret, second.Secret)
}

func TestValidateCode(t *testing.T) {
	tm := NewTOTPManager("MeridianX Admin")

	setup, err := tm.GenerateSetup("ops@meridianx.io")
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	valid, err := tm.ValidateCode(setup.Secret, code)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestValidateCode_WrongCode(t *testing.T) {
	tm := NewTOTPManager("MeridianX Admin")

	setup, err := tm.GenerateSetup("ops@meridianx.io")
	require.NoError(t, err)

	valid, err := tm.ValidateCode(setup.Secret, "000000")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestValidateCode_ClockDrift(t *testing.T) {
	tm := NewTOTPManager("MeridianX Admin")

	setup, err := tm.GenerateSetup("ops@meridianx.io")
	require.NoError(t, err)

	// code from the previous time step is still accepted with skew 1
	code, err := totp.GenerateCode(setup.Secret, time.Now().Add(-30*time.Second))
	require.NoError(t, err)

	valid, err := tm.ValidateCode(setup.Secret, code)
	require.NoError(t, err)
	assert.True(t, valid)
}
