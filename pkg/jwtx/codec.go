// Package jwtx issues and verifies the HMAC-signed access and refresh
// tokens used by the service. A single HS256 secret is loaded at process
// start and treated as immutable for the process lifetime.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrInvalid     = errors.New("jwtx: invalid token")
	ErrKind        = errors.New("jwtx: wrong token kind")
)

// Codec signs and verifies both token classes from one signing secret.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec builds a Codec. Zero TTLs fall back to the package defaults.
func NewCodec(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: signing secret is empty")
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Codec{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL reports the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// IssueAccess signs a short-lived access token for the user.
func (c *Codec) IssueAccess(userID, username string) (string, error) {
	return c.sign(newClaims(userID, username, KindAccess, c.issuer, c.accessTTL, time.Now().UTC()))
}

// IssueRefresh signs a long-lived refresh token for the user.
func (c *Codec) IssueRefresh(userID, username string) (string, error) {
	return c.sign(newClaims(userID, username, KindRefresh, c.issuer, c.refreshTTL, time.Now().UTC()))
}

func (c *Codec) sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Verify parses a token, checks the signature and the exp/nbf window at
// current wall-clock time, and enforces the expected kind.
func (c *Codec) Verify(raw, kind string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		default:
			return Claims{}, ErrInvalid
		}
	}

	if claims.Kind != kind {
		return Claims{}, ErrKind
	}

	return claims, nil
}
