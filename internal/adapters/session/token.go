package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL matches the backend's access token lifetime and is used
// when a token carries no exp claim.
const DefaultTokenTTL = 24 * time.Hour

var ErrTokenExpired = errors.New("access token already expired")

// Claims are the fields the backend puts in its access tokens.
type Claims struct {
	Subject   string    `json:"sub"`
	UserID    int       `json:"id"`
	Role      string    `json:"rol"`
	ExpiresAt time.Time `json:"exp,omitempty"`
}

// ParseClaims reads the token payload without verifying the signature; the
// client never holds the signing key and only uses the claims locally.
func ParseClaims(token string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("parse access token: unexpected claims type %T", parsed.Claims)
	}

	out := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if id, ok := claims["id"].(float64); ok {
		out.UserID = int(id)
	}
	if role, ok := claims["rol"].(string); ok {
		out.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// TokenTTL returns how long the token should be kept. Tokens that are not
// JWTs are opaque to the client and kept for DefaultTokenTTL.
func TokenTTL(token string, now time.Time) (time.Duration, error) {
	claims, err := ParseClaims(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return DefaultTokenTTL, nil
	}
	ttl := claims.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return 0, ErrTokenExpired
	}
	return ttl, nil
}
