package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/pkg/jwtx"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitByIPExhaustsBurst(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := Chain(okHandler(), RateLimitByIP(cfg))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)
	require.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)

	rec := do("10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))

	// A different client has its own bucket.
	require.Equal(t, http.StatusOK, do("10.0.0.2:1234").Code)
}

func TestRateLimitByUserKeysOnIdentity(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := Chain(okHandler(), RateLimitByUser(cfg))

	do := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		if userID != "" {
			req = req.WithContext(context.WithValue(req.Context(), CtxKeyUserID, userID))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, do("user-a").Code)
	require.Equal(t, http.StatusTooManyRequests, do("user-a").Code)

	// Same IP, different user: separate bucket.
	require.Equal(t, http.StatusOK, do("user-b").Code)
}

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	codec, err := jwtx.NewCodec([]byte("httpx-test-secret"), "httpx-test", time.Minute, time.Hour)
	require.NoError(t, err)

	var gotUserID, gotUsername string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotUsername = UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}), AuthnMiddleware(codec))

	do := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing header is unauthorized", func(t *testing.T) {
		rec := do("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, err := codec.IssueRefresh("user-1", "alice")
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, do("Bearer "+refresh).Code)
	})

	t.Run("valid access token passes identity through", func(t *testing.T) {
		access, err := codec.IssueAccess("user-1", "alice")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, do("Bearer "+access).Code)
		require.Equal(t, "user-1", gotUserID)
		require.Equal(t, "alice", gotUsername)
	})
}
