package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()

	codec, err := NewCodec([]byte("test-secret"), "test-issuer", time.Minute, time.Hour)
	require.NoError(t, err)
	return codec
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	access, err := codec.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	claims, err := codec.Verify(access, KindAccess)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, KindAccess, claims.Kind)
	require.NotEmpty(t, claims.ID, "jti must be set")
}

func TestVerifyEnforcesKind(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	access, err := codec.IssueAccess("user-1", "alice")
	require.NoError(t, err)
	refresh, err := codec.IssueRefresh("user-1", "alice")
	require.NoError(t, err)

	// An access token must never pass as a refresh token, and vice versa.
	_, err = codec.Verify(access, KindRefresh)
	require.ErrorIs(t, err, ErrKind)
	_, err = codec.Verify(refresh, KindAccess)
	require.ErrorIs(t, err, ErrKind)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	// Hand-craft a token whose window already closed.
	past := time.Now().Add(-time.Hour)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "test-issuer",
			IssuedAt:  jwt.NewNumericDate(past),
			NotBefore: jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
			ID:        "expired-jti",
		},
		Username: "alice",
		Kind:     KindAccess,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = codec.Verify(raw, KindAccess)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	other, err := NewCodec([]byte("other-secret"), "test-issuer", time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := other.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	_, err = codec.Verify(token, KindAccess)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	other, err := NewCodec([]byte("test-secret"), "other-issuer", time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := other.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	_, err = codec.Verify(token, KindAccess)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	_, err := codec.Verify("not-a-jwt", KindAccess)
	require.ErrorIs(t, err, ErrInvalid)
}
