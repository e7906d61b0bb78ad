package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12 // verification lands in the tens of milliseconds
	MinPasswordLen = 8
	MaxPasswordLen = 128
)

// specialChars is the fixed punctuation set that counts toward the
// special-character requirement.
const specialChars = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"

// weakPrefixes are rejected case-insensitively when the password starts
// with one of them.
var weakPrefixes = []string{
	"123456",
	"password",
	"qwerty",
	"abc123",
	"admin",
	"letmein",
	"welcome",
}

// StrengthResult is the outcome of evaluating a candidate password against
// the back-office password policy.
type StrengthResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Strength string   `json:"strength"` // weak, medium, strong
	Score    int      `json:"score"`    // 0-100
}

// HashPassword produces a salted bcrypt digest of the password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword checks a plaintext password against a bcrypt hash.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidateStrength scores a candidate password without any I/O.
//
// Scoring: up to 20 points for length (2 per character, only counted once the
// 8-character minimum is met), 20 points per present character class, minus
// 20 when a weak pattern is found. The final score is clamped to [0,100].
func ValidateStrength(password string) StrengthResult {
	errs := make([]string, 0)
	score := 0

	if len(password) < MinPasswordLen {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", MinPasswordLen))
	} else {
		lengthScore := len(password) * 2
		if lengthScore > 20 {
			lengthScore = 20
		}
		score += lengthScore
	}

	if len(password) > MaxPasswordLen {
		errs = append(errs, fmt.Sprintf("password must not exceed %d characters", MaxPasswordLen))
	}

	hasUpper := strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' })
	hasLower := strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' })
	hasDigit := strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' })
	hasSpecial := strings.ContainsAny(password, specialChars)

	if !hasUpper {
		errs = append(errs, "password must contain at least one uppercase letter")
	} else {
		score += 20
	}

	if !hasLower {
		errs = append(errs, "password must contain at least one lowercase letter")
	} else {
		score += 20
	}

	if !hasDigit {
		errs = append(errs, "password must contain at least one number")
	} else {
		score += 20
	}

	if !hasSpecial {
		errs = append(errs, "password must contain at least one special character")
	} else {
		score += 20
	}

	if hasWeakPattern(password) {
		errs = append(errs, "password contains common patterns and is too weak")
		score -= 20
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	strength := "weak"
	switch {
	case score >= 80:
		strength = "strong"
	case score >= 50:
		strength = "medium"
	}

	return StrengthResult{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Strength: strength,
		Score:    score,
	}
}

// hasWeakPattern reports whether the password starts with a well-known weak
// value or contains a run of three or more identical characters.
func hasWeakPattern(password string) bool {
	lower := strings.ToLower(password)
	for _, prefix := range weakPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	run := 0
	var prev rune
	for i, r := range password {
		if i > 0 && r == prev {
			run++
			if run >= 2 {
				return true
			}
		} else {
			run = 0
		}
		prev = r
	}

	return false
}
