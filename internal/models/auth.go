package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the claims carried by a signed access token.
type AccessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AdminID returns the subject of the token.
func (c *AccessClaims) AdminID() string {
	return c.Subject
}
