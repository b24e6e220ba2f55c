package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTLs. Access tokens are short-lived on purpose: they are
// stateless and cannot be revoked before expiry, so the refresh slot is the
// only revocation lever we have.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Token kinds carried in the "kind" claim. Verifiers must reject a refresh
// token presented where an access token is expected and vice versa.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims are the token claims shared by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Username is the display handle of the authenticated user.
	Username string `json:"username,omitempty"`

	// Kind distinguishes access from refresh tokens signed with the same
	// secret.
	Kind string `json:"kind,omitempty"`
}

func newClaims(subject, username, kind, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Username: username,
		Kind:     kind,
	}
}
