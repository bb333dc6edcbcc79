package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SchoolClaim is the school summary the backend embeds in every access token.
type SchoolClaim struct {
	ID           string `json:"id"`
	NomeFantasia string `json:"nome_fantasia"`
}

// Claims is the payload of an access token issued by the backend.
type Claims struct {
	UserID      any          `json:"user_id,omitempty"`
	TokenType   string       `json:"token_type,omitempty"`
	Nome        string       `json:"nome,omitempty"`
	Email       string       `json:"email,omitempty"`
	TipoUsuario string       `json:"tipo_usuario,omitempty"`
	Escola      *SchoolClaim `json:"escola,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims decodes an access token without verifying its signature.
// The client never holds the signing key; the server remains the authority on validity,
// so the result is only good for display and expiry hints.
func ParseClaims(access string) (*Claims, error) {
	if access == "" {
		return nil, fmt.Errorf("access token is empty")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}
	return claims, nil
}

// User returns the user_id claim as a string.
func (c *Claims) User() string {
	switch v := c.UserID.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}

// ExpiresIn returns how long the token has left at now. Tokens without an exp claim report 0
// and ok=false.
func (c *Claims) ExpiresIn(now time.Time) (time.Duration, bool) {
	if c.ExpiresAt == nil {
		return 0, false
	}
	return c.ExpiresAt.Sub(now), true
}

// Expired reports whether the exp claim is in the past at now.
func (c *Claims) Expired(now time.Time) bool {
	left, ok := c.ExpiresIn(now)
	return ok && left <= 0
}
