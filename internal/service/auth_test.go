package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/store"
	"github.com/tasklight/tasklight/internal/store/drivers/sqlite"
	"github.com/tasklight/tasklight/pkg/cryptox"
	"github.com/tasklight/tasklight/pkg/jwtx"
)

// recordingMailer captures outbound mail so tests can fish the raw tokens
// back out of the message body.
type recordingMailer struct {
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// token extracts the token query parameter from the last mail's link.
func (m *recordingMailer) token(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.sent)

	body := m.sent[len(m.sent)-1].Body
	_, after, found := strings.Cut(body, "token=")
	require.True(t, found, "mail body carries no token link")

	if i := strings.IndexAny(after, "\n \t"); i >= 0 {
		after = after[:i]
	}
	return after
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestAuth(t *testing.T, st store.Store) (*AuthService, *recordingMailer) {
	t.Helper()

	codec, err := jwtx.NewCodec([]byte("test-secret"), "tasklight-test", time.Minute, time.Hour)
	require.NoError(t, err)

	mailer := &recordingMailer{}
	svc := NewAuthService(st, codec, mailer, nil, AuthConfig{
		BcryptCost: 4, // MinCost keeps the suite fast
		BaseURL:    "http://test.local",
	})
	return svc, mailer
}

func TestSignupRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newTestAuth(t, st)

	u, err := svc.Signup(ctx, "alice@example.com", "alice", "hunter2secret")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.False(t, u.EmailVerified)
	require.Nil(t, u.PasswordHash, "secrets must not leave the service layer")

	t.Run("same email", func(t *testing.T) {
		_, err := svc.Signup(ctx, "alice@example.com", "alice2", "hunter2secret")
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("same username", func(t *testing.T) {
		_, err := svc.Signup(ctx, "alice2@example.com", "alice", "hunter2secret")
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("email reusable after soft delete", func(t *testing.T) {
		require.NoError(t, st.Users().SoftDeleteUser(ctx, u.ID))
		_, err := svc.Signup(ctx, "alice@example.com", "alice", "hunter2secret")
		require.NoError(t, err)
	})
}

func TestVerifyEmailIsSingleUse(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, mailer := newTestAuth(t, st)

	u, err := svc.Signup(ctx, "bob@example.com", "bob", "correcthorse")
	require.NoError(t, err)

	token := mailer.token(t)
	require.NoError(t, svc.VerifyEmail(ctx, token))

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.EmailVerified)
	require.Nil(t, got.VerificationTokenHash)

	// Second consumption must fail.
	require.ErrorIs(t, svc.VerifyEmail(ctx, token), ErrInvalidToken)
	require.ErrorIs(t, svc.VerifyEmail(ctx, "no-such-token"), ErrInvalidToken)
}

func TestLoginDoesNotRequireVerification(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newTestAuth(t, st)

	_, err := svc.Signup(ctx, "carol@example.com", "carol", "correcthorse")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "carol@example.com", "correcthorse")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, int64(60), pair.ExpiresIn)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newTestAuth(t, st)

	_, err := svc.Signup(ctx, "dave@example.com", "dave", "correcthorse")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "dave@example.com", "wrong")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "correcthorse")
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestRefreshRotationInvalidatesOldToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newTestAuth(t, st)

	_, err := svc.Signup(ctx, "erin@example.com", "erin", "correcthorse")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "erin@example.com", "correcthorse")
	require.NoError(t, err)

	rotated, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	t.Run("old token no longer refreshes", func(t *testing.T) {
		_, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("new token refreshes", func(t *testing.T) {
		_, err := svc.RefreshTokens(ctx, rotated.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("access token is never a refresh token", func(t *testing.T) {
		_, err := svc.RefreshTokens(ctx, rotated.AccessToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newTestAuth(t, st)

	u, err := svc.Signup(ctx, "frank@example.com", "frank", "correcthorse")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "frank@example.com", "correcthorse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID))

	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestForgotPasswordMessageIsUniform(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, mailer := newTestAuth(t, st)

	_, err := svc.Signup(ctx, "grace@example.com", "grace", "correcthorse")
	require.NoError(t, err)
	sentBefore := len(mailer.sent)

	known, err := svc.ForgotPassword(ctx, "grace@example.com")
	require.NoError(t, err)

	unknown, err := svc.ForgotPassword(ctx, "stranger@example.com")
	require.NoError(t, err)

	require.Equal(t, known, unknown, "responses must not reveal whether the email exists")
	// Only the known address actually got a mail.
	require.Len(t, mailer.sent, sentBefore+1)
}

func TestResetPasswordFlow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, mailer := newTestAuth(t, st)

	_, err := svc.Signup(ctx, "heidi@example.com", "heidi", "old-password")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "heidi@example.com", "old-password")
	require.NoError(t, err)

	_, err = svc.ForgotPassword(ctx, "heidi@example.com")
	require.NoError(t, err)
	token := mailer.token(t)

	require.NoError(t, svc.ResetPassword(ctx, token, "new-password"))

	t.Run("old password rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "heidi@example.com", "old-password")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("new password accepted", func(t *testing.T) {
		_, err := svc.Login(ctx, "heidi@example.com", "new-password")
		require.NoError(t, err)
	})

	t.Run("existing session revoked", func(t *testing.T) {
		_, err := svc.RefreshTokens(ctx, session.RefreshToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("token is single use", func(t *testing.T) {
		require.ErrorIs(t, svc.ResetPassword(ctx, token, "another-password"), ErrInvalidToken)
	})
}

func TestResetPasswordExpiredToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newTestAuth(t, st)

	u, err := svc.Signup(ctx, "ivan@example.com", "ivan", "correcthorse")
	require.NoError(t, err)

	// Plant a token whose expiry already passed.
	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NoError(t, st.Users().SetResetToken(ctx, u.ID, cryptox.FingerprintToken(raw), time.Now().UTC().Add(-time.Minute)))

	require.ErrorIs(t, svc.ResetPassword(ctx, raw, "new-password"), ErrInvalidToken)
}

func TestResolveOAuthUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newTestAuth(t, st)

	t.Run("creates verified account on first sight", func(t *testing.T) {
		u, err := svc.ResolveOAuthUser(ctx, domain.ProviderGoogle, "goog-123", "judy@example.com", "Judy", "Tester")
		require.NoError(t, err)
		require.True(t, u.EmailVerified)
		require.Equal(t, domain.ProviderGoogle, u.AuthProvider)
		require.Equal(t, "judy-tester", u.Username)

		t.Run("provider login cannot use password auth", func(t *testing.T) {
			_, err := svc.Login(ctx, "judy@example.com", "anything")
			require.ErrorIs(t, err, ErrUnauthorized)
		})
	})

	t.Run("matches existing account by email", func(t *testing.T) {
		first, err := svc.Signup(ctx, "kim@example.com", "kim", "correcthorse")
		require.NoError(t, err)

		resolved, err := svc.ResolveOAuthUser(ctx, domain.ProviderMicrosoft, "ms-456", "kim@example.com", "Kim", "Example")
		require.NoError(t, err)
		require.Equal(t, first.ID, resolved.ID)
		require.Equal(t, domain.ProviderEmail, resolved.AuthProvider)
	})

	t.Run("issues tokens for resolved principal", func(t *testing.T) {
		u, err := svc.ResolveOAuthUser(ctx, domain.ProviderGoogle, "goog-789", "leo@example.com", "Leo", "")
		require.NoError(t, err)

		pair, err := svc.TokensFor(ctx, u.ID)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)

		_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
		require.NoError(t, err)
	})
}
