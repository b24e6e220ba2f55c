package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correcthorse", 4)
	require.NoError(t, err)
	require.NotEqual(t, "correcthorse", hash)

	require.NoError(t, VerifyPassword("correcthorse", hash))
	require.ErrorIs(t, VerifyPassword("wrong", hash), ErrMismatch)
	require.ErrorIs(t, VerifyPassword("correcthorse", ""), ErrMismatch)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("", 4)
	require.Error(t, err)
}

func TestGenerateTokenIsUniqueAndURLSafe(t *testing.T) {
	t.Parallel()

	a, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	b, err := GenerateToken(TokenSize256)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NotContains(t, a, "=")
	require.NotContains(t, a, "+")
	require.NotContains(t, a, "/")
	require.Len(t, a, 43) // 32 bytes base64url, no padding

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintTokenIsDeterministic(t *testing.T) {
	t.Parallel()

	fp1 := FingerprintToken("some-token")
	fp2 := FingerprintToken("some-token")
	require.Equal(t, fp1, fp2)
	require.NotEqual(t, fp1, FingerprintToken("other-token"))
	require.NotEqual(t, "some-token", fp1)
}

func TestConstantTimeEquals(t *testing.T) {
	t.Parallel()

	require.True(t, ConstantTimeEquals("abc", "abc"))
	require.False(t, ConstantTimeEquals("abc", "abd"))
	require.False(t, ConstantTimeEquals("abc", "abcd"))
}
