package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims are the parts of the bearer token the storefront reads. The
// signature is not checked here; the bookshop API verifies it on every call.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func decodeClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return claims, nil
}

// expired reports whether the token is past its exp claim. A token without
// exp never expires on the client side.
func (c *Claims) expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
