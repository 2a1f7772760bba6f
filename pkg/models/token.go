package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload of an AuthToken.
// The subject is the user id.
type TokenClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Claims decodes the token payload without verifying the signature.
// Only the authority verifies tokens; the client reads them to learn who it is.
func (t AuthToken) Claims() (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(string(t), claims); err != nil {
		return nil, fmt.Errorf("decode auth token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("decode auth token: %w", jwt.ErrTokenRequiredClaimMissing)
	}
	return claims, nil
}

// UserInfo projects the claims onto the session's user info.
func (c *TokenClaims) UserInfo() UserInfo {
	return UserInfo{
		ID:    c.Subject,
		Name:  c.Name,
		Email: c.Email,
	}
}
