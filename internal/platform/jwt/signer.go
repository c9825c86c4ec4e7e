package jwt

import (
	"slices"
	"time"
)

// Claims represents the JWT claims that are processed for authentication.
type Claims struct {
	UserID   string
	Role     string
	Audience []string
}

// HasAudience reports whether the token was issued for aud.
func (c *Claims) HasAudience(aud string) bool {
	return slices.Contains(c.Audience, aud)
}

// Signer defines methods for signing and verifying JWT tokens.
type Signer interface {
	Sign(claims Claims, audience []string, duration time.Duration) (token string, err error)
	Verify(tokenString string) (*Claims, error)
}
