package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("SecurePassword123!")
	require.NoError(t, err)
	assert.NotEqual(t, "SecurePassword123!", hash)

	assert.NoError(t, ComparePassword(hash, "SecurePassword123!"))
	assert.Error(t, ComparePassword(hash, "WrongPassword123!"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestValidateStrength_AllClassesValid(t *testing.T) {
	passwords := []string{
		"Xk9!mQpz",
		"Tr0ub4dor&3",
		"C0mpl3x!Passphrase",
	}

	for _, p := range passwords {
		result := ValidateStrength(p)
		assert.True(t, result.IsValid, "password %q should be valid, errors: %v", p, result.Errors)
		assert.Empty(t, result.Errors)
	}
}

func TestValidateStrength_RepeatedCharacters(t *testing.T) {
	result := ValidateStrength("aaaaaaaa")

	assert.False(t, result.IsValid)
	assert.Equal(t, "weak", result.Strength)
	// 16 for length, 20 for lowercase, -20 for the repeated-character run
	assert.Equal(t, 16, result.Score)
	// missing upper, digit, special, plus the weak-pattern error
	assert.Len(t, result.Errors, 4)
}

func TestValidateStrength_StrongBoundary(t *testing.T) {
	result := ValidateStrength("Abcdef1!")

	// 8 chars * 2 = 16 length points, plus 4 classes * 20
	assert.Equal(t, 96, result.Score)
	assert.Equal(t, "strong", result.Strength)
	assert.True(t, result.IsValid)
}

func TestValidateStrength_TooShort(t *testing.T) {
	result := ValidateStrength("Ab1!")

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors[0], "at least 8 characters")
	// no length points below the minimum
	assert.Equal(t, 80, result.Score)
}

func TestValidateStrength_TooLong(t *testing.T) {
	long := strings.Repeat("Ab1!", 33) // 132 chars
	result := ValidateStrength(long)

	assert.False(t, result.IsValid)
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "not exceed 128") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateStrength_WeakPrefixes(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"sequential digits", "123456Ab!"},
		{"password prefix", "Password1!x"},
		{"qwerty prefix", "Qwerty12!x"},
		{"admin prefix", "Admin123!x"},
		{"letmein prefix", "Letmein1!x"},
		{"welcome prefix", "Welcome1!x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateStrength(tt.password)
			assert.False(t, result.IsValid)
			found := false
			for _, e := range result.Errors {
				if strings.Contains(e, "common patterns") {
					found = true
				}
			}
			assert.True(t, found, "expected weak-pattern error for %q", tt.password)
		})
	}
}

func TestValidateStrength_MediumScore(t *testing.T) {
	// lower + digit + length only: 16 + 20 + 20 = 56
	result := ValidateStrength("abcdef12")

	assert.False(t, result.IsValid)
	assert.Equal(t, 56, result.Score)
	assert.Equal(t, "medium", result.Strength)
}

func TestValidateStrength_ScoreClamped(t *testing.T) {
	result := ValidateStrength("A1!" + strings.Repeat("xY", 10))
	assert.LessOrEqual(t, result.Score, 100)
	assert.GreaterOrEqual(t, result.Score, 0)
}
