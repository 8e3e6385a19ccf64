package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens. The subject carries the account email.
type JWTClaims struct {
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Email returns the subject claim.
func (c *JWTClaims) Email() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
