package models

import (
	"time"
)

// RefreshToken is one issued refresh token. Only the SHA-256 hash of the
// token secret is ever stored; the plaintext is returned to the caller once
// at issuance and is not recoverable afterwards.
type RefreshToken struct {
	ID        string
	AdminID   string
	TokenHash string // hex-encoded SHA-256 of the plaintext secret
	ExpiresAt time.Time
	IsActive  bool
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// IsExpired reports whether the token is past its expiry.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
