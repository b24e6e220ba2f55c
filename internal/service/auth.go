package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/mail"
	"github.com/tasklight/tasklight/internal/obs"
	"github.com/tasklight/tasklight/internal/store"
	"github.com/tasklight/tasklight/pkg/cryptox"
	"github.com/tasklight/tasklight/pkg/idx"
	"github.com/tasklight/tasklight/pkg/jwtx"
	"github.com/tasklight/tasklight/pkg/slogx"
)

// ResetMessage is returned by ForgotPassword regardless of whether the
// email resolves to an account, so the endpoint cannot be used to probe
// which addresses are registered.
const ResetMessage = "If an account with that email exists, a password reset link has been sent."

// DefaultResetTTL bounds how long a password reset token stays valid.
const DefaultResetTTL = time.Hour

// AuthService owns the credential lifecycle: signup, email verification,
// login, refresh rotation, logout, password reset, and external identity
// resolution.
type AuthService struct {
	store  store.Store
	codec  *jwtx.Codec
	mailer mail.Mailer
	audit  *AuditService

	bcryptCost int
	resetTTL   time.Duration
	baseURL    string // prefix for verification/reset links in outbound mail
}

// AuthConfig carries the tunables for NewAuthService. Zero values fall
// back to sensible defaults.
type AuthConfig struct {
	BcryptCost int
	ResetTTL   time.Duration
	BaseURL    string
}

func NewAuthService(st store.Store, codec *jwtx.Codec, mailer mail.Mailer, audit *AuditService, cfg AuthConfig) *AuthService {
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = cryptox.DefaultCost
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = DefaultResetTTL
	}
	if mailer == nil {
		mailer = mail.LogMailer{}
	}
	return &AuthService{
		store:      st,
		codec:      codec,
		mailer:     mailer,
		audit:      audit,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.ResetTTL,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Signup registers a new email/password account. The account starts
// unverified; a single-use verification token is mailed out, but a failed
// send does not undo the registration.
func (s *AuthService) Signup(ctx context.Context, email, username, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	hash, err := cryptox.HashPassword(password, s.bcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	verifyToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.User{}, fmt.Errorf("generate verification token: %w", err)
	}
	verifyHash := cryptox.FingerprintToken(verifyToken)

	now := time.Now().UTC()
	u := domain.User{
		ID:                    idx.New().String(),
		Email:                 email,
		Username:              username,
		PasswordHash:          &hash,
		AuthProvider:          domain.ProviderEmail,
		Role:                  domain.RoleUser,
		Status:                domain.StatusActive,
		EmailVerified:         false,
		VerificationTokenHash: &verifyHash,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.sendVerificationMail(ctx, email, verifyToken)

	obs.SignupsTotal.Inc()
	s.audit.Record(ctx, u.ID, AuditSignup, EntityUser, u.ID, map[string]any{"email": email})
	slogx.FromContext(ctx).Info("user signed up", slog.String("user_id", u.ID))

	return u.Public(), nil
}

// VerifyEmail consumes a verification token. Marking the account verified
// and clearing the token happen in one statement, so a token can never
// validate twice.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	hash := cryptox.FingerprintToken(token)

	u, err := s.store.Users().GetUserByVerificationTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup verification token: %w", err)
	}

	if err := s.store.Users().MarkEmailVerified(ctx, u.ID); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	slogx.FromContext(ctx).Info("email verified", slog.String("user_id", u.ID))
	return nil
}

// Login checks the password and issues a fresh token pair. It succeeds for
// unverified accounts; verification gates nothing beyond the verified flag
// itself. Every failure path collapses to ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			obs.LoginsTotal.WithLabelValues(obs.ResultDenied).Inc()
			return domain.TokenPair{}, ErrUnauthorized
		}
		obs.LoginsTotal.WithLabelValues(obs.ResultError).Inc()
		return domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	// External-identity accounts have no password to check.
	if u.PasswordHash == nil {
		obs.LoginsTotal.WithLabelValues(obs.ResultDenied).Inc()
		return domain.TokenPair{}, ErrUnauthorized
	}
	if err := cryptox.VerifyPassword(password, *u.PasswordHash); err != nil {
		obs.LoginsTotal.WithLabelValues(obs.ResultDenied).Inc()
		return domain.TokenPair{}, ErrUnauthorized
	}

	pair, refreshHash, err := s.issuePair(u)
	if err != nil {
		obs.LoginsTotal.WithLabelValues(obs.ResultError).Inc()
		return domain.TokenPair{}, err
	}

	// Logging in overwrites the refresh slot; any prior session's refresh
	// token stops working.
	if err := s.store.Users().SetRefreshTokenHash(ctx, u.ID, refreshHash); err != nil {
		obs.LoginsTotal.WithLabelValues(obs.ResultError).Inc()
		return domain.TokenPair{}, fmt.Errorf("store refresh hash: %w", err)
	}

	obs.LoginsTotal.WithLabelValues(obs.ResultOK).Inc()
	s.audit.Record(ctx, u.ID, AuditLogin, EntityUser, u.ID, nil)
	slogx.FromContext(ctx).Info("user logged in", slog.String("user_id", u.ID))

	return pair, nil
}

// RefreshTokens rotates a refresh token: the presented token must both
// verify as a refresh JWT and match the stored slot fingerprint, and the
// slot swap is conditional on the old fingerprint so exactly one of any
// concurrent rotations with the same token wins.
func (s *AuthService) RefreshTokens(ctx context.Context, rawRefresh string) (domain.TokenPair, error) {
	claims, err := s.codec.Verify(rawRefresh, jwtx.KindRefresh)
	if err != nil {
		obs.TokenRefreshTotal.WithLabelValues(obs.ResultDenied).Inc()
		return domain.TokenPair{}, ErrUnauthorized
	}

	u, err := s.store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			obs.TokenRefreshTotal.WithLabelValues(obs.ResultDenied).Inc()
			return domain.TokenPair{}, ErrUnauthorized
		}
		obs.TokenRefreshTotal.WithLabelValues(obs.ResultError).Inc()
		return domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	oldHash := cryptox.FingerprintToken(rawRefresh)
	if u.RefreshTokenHash == nil || !cryptox.ConstantTimeEquals(oldHash, *u.RefreshTokenHash) {
		obs.TokenRefreshTotal.WithLabelValues(obs.ResultDenied).Inc()
		return domain.TokenPair{}, ErrUnauthorized
	}

	pair, newHash, err := s.issuePair(u)
	if err != nil {
		obs.TokenRefreshTotal.WithLabelValues(obs.ResultError).Inc()
		return domain.TokenPair{}, err
	}

	swapped, err := s.store.Users().SwapRefreshTokenHash(ctx, u.ID, oldHash, newHash)
	if err != nil {
		obs.TokenRefreshTotal.WithLabelValues(obs.ResultError).Inc()
		return domain.TokenPair{}, fmt.Errorf("rotate refresh hash: %w", err)
	}
	if !swapped {
		// A concurrent rotation already consumed the token.
		obs.TokenRefreshTotal.WithLabelValues(obs.ResultDenied).Inc()
		return domain.TokenPair{}, ErrUnauthorized
	}

	obs.TokenRefreshTotal.WithLabelValues(obs.ResultOK).Inc()
	return pair, nil
}

// Logout clears the refresh slot so the outstanding refresh token stops
// validating. Already-issued access tokens keep working until they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.store.Users().ClearRefreshTokenHash(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("clear refresh hash: %w", err)
	}
	s.audit.Record(ctx, userID, AuditLogout, EntityUser, userID, nil)
	return nil
}

// ForgotPassword starts a password reset. The returned message is
// identical whether or not the email resolves to an account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ResetMessage, nil
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.resetTTL)
	if err := s.store.Users().SetResetToken(ctx, u.ID, cryptox.FingerprintToken(token), expiresAt); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	s.sendResetMail(ctx, email, token)
	slogx.FromContext(ctx).Info("password reset requested", slog.String("user_id", u.ID))

	return ResetMessage, nil
}

// ResetPassword consumes a reset token: sets the new password, clears the
// reset pair, and revokes the refresh slot so stolen sessions die with the
// old password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash := cryptox.FingerprintToken(token)

	u, err := s.store.Users().GetUserByActiveResetTokenHash(ctx, hash, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	newHash, err := cryptox.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordAndClearReset(ctx, u.ID, newHash); err != nil {
			return err
		}
		return tx.Users().ClearRefreshTokenHash(ctx, u.ID)
	})
	if err != nil {
		return fmt.Errorf("apply password reset: %w", err)
	}

	obs.PasswordResetsTotal.Inc()
	s.audit.Record(ctx, u.ID, AuditPasswordReset, EntityUser, u.ID, nil)
	slogx.FromContext(ctx).Info("password reset completed", slog.String("user_id", u.ID))

	return nil
}

// ResolveOAuthUser maps an already-validated external identity claim onto
// a local principal, creating the account on first sight. Matching is by
// email: an existing account with the same address is returned as-is, so
// an email/password account implicitly serves its provider logins too.
func (s *AuthService) ResolveOAuthUser(ctx context.Context, provider domain.AuthProvider, providerID, email, givenName, familyName string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return u.Public(), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	now := time.Now().UTC()
	u = domain.User{
		ID:             idx.New().String(),
		Email:          email,
		Username:       deriveUsername(email, givenName, familyName),
		AuthProvider:   provider,
		AuthProviderID: &providerID,
		Role:           domain.RoleUser,
		Status:         domain.StatusActive,
		// The provider vouched for the address; no verification mail.
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Username collision with an unrelated account. Retry once with
			// a random suffix; a second collision is vanishingly unlikely.
			u.Username = u.Username + "-" + strings.ToLower(idx.New().String()[20:])
			if err := s.store.Users().CreateUser(ctx, u); err != nil {
				return domain.User{}, fmt.Errorf("create provider user: %w", err)
			}
		} else {
			return domain.User{}, fmt.Errorf("create provider user: %w", err)
		}
	}

	obs.SignupsTotal.Inc()
	s.audit.Record(ctx, u.ID, AuditSignup, EntityUser, u.ID, map[string]any{
		"email":    email,
		"provider": string(provider),
	})
	slogx.FromContext(ctx).Info("provider user created",
		slog.String("user_id", u.ID),
		slog.String("provider", string(provider)),
	)

	return u.Public(), nil
}

// TokensFor issues a token pair for an already-resolved principal (the
// tail end of a provider login) and stores the refresh fingerprint.
func (s *AuthService) TokensFor(ctx context.Context, userID string) (domain.TokenPair, error) {
	u, err := s.store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUnauthorized
		}
		return domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	pair, refreshHash, err := s.issuePair(u)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.store.Users().SetRefreshTokenHash(ctx, u.ID, refreshHash); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh hash: %w", err)
	}
	return pair, nil
}

func (s *AuthService) issuePair(u domain.User) (domain.TokenPair, string, error) {
	access, err := s.codec.IssueAccess(u.ID, u.Username)
	if err != nil {
		return domain.TokenPair{}, "", fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefresh(u.ID, u.Username)
	if err != nil {
		return domain.TokenPair{}, "", fmt.Errorf("issue refresh token: %w", err)
	}

	pair := domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
	}
	return pair, cryptox.FingerprintToken(refresh), nil
}

func (s *AuthService) sendVerificationMail(ctx context.Context, to, token string) {
	body := fmt.Sprintf("Welcome to Tasklight!\n\nVerify your email address:\n%s/auth/verify-email?token=%s\n", s.baseURL, token)
	if err := s.mailer.Send(ctx, to, "Verify your email", body); err != nil {
		slogx.FromContext(ctx).Warn("verification mail failed", slog.Any("error", err))
	}
}

func (s *AuthService) sendResetMail(ctx context.Context, to, token string) {
	body := fmt.Sprintf("A password reset was requested for your account.\n\nReset your password:\n%s/auth/reset-password?token=%s\n\nIf you did not request this, you can ignore this message.\n", s.baseURL, token)
	if err := s.mailer.Send(ctx, to, "Reset your password", body); err != nil {
		slogx.FromContext(ctx).Warn("reset mail failed", slog.Any("error", err))
	}
}

func deriveUsername(email, givenName, familyName string) string {
	base := strings.TrimSpace(strings.TrimSpace(givenName) + " " + strings.TrimSpace(familyName))
	if base == "" {
		base, _, _ = strings.Cut(email, "@")
	}
	base = strings.ToLower(base)

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '.', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "user-" + strings.ToLower(idx.New().String()[20:])
	}
	return out
}
