package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned before any request when the configured
// access token has expired
var ErrTokenExpired = errors.New("access token expired")

// tokenClaims are the claims carried by the companion service tokens
type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TokenInfo describes an access token. The signature is not verified:
// the service does that, the client only surfaces the identity.
type TokenInfo struct {
	Subject   string    `json:"subject,omitempty"`
	Email     string    `json:"email,omitempty"`
	Issuer    string    `json:"issuer,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token carries an expiry in the past
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// ParseToken decodes the claims of a JWT access token
func ParseToken(token string) (*TokenInfo, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	info := &TokenInfo{
		Subject: claims.Subject,
		Email:   claims.Email,
		Issuer:  claims.Issuer,
	}
	if info.Email == "" {
		info.Email = claims.Subject
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
