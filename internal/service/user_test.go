package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/domain"
)

func TestUserListingIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st, nil)

	admin := seedUser(t, st, "root")
	role := domain.RoleAdmin
	require.NoError(t, st.Users().UpdateUser(ctx, admin.ID, domain.UserUpdate{Role: &role}))

	regular := seedUser(t, st, "pleb")

	t.Run("regular user forbidden", func(t *testing.T) {
		_, err := users.List(ctx, regular.ID, 1, 20)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin gets a page with totals", func(t *testing.T) {
		page, err := users.List(ctx, admin.ID, 1, 20)
		require.NoError(t, err)
		require.Equal(t, int64(2), page.Total)
		require.Len(t, page.Users, 2)
		for _, u := range page.Users {
			require.Nil(t, u.PasswordHash)
			require.Nil(t, u.RefreshTokenHash)
		}
	})

	t.Run("pagination clamps bad input", func(t *testing.T) {
		page, err := users.List(ctx, admin.ID, -3, 9999)
		require.NoError(t, err)
		require.Equal(t, 1, page.Page)
		require.Equal(t, 20, page.Limit)
	})
}

func TestUserUpdateIsSelfOnly(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st, nil)

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	t.Run("own username change works", func(t *testing.T) {
		name := "alice-renamed"
		u, err := users.Update(ctx, alice.ID, alice.ID, domain.UserUpdate{Username: &name})
		require.NoError(t, err)
		require.Equal(t, "alice-renamed", u.Username)
	})

	t.Run("cannot touch another profile", func(t *testing.T) {
		name := "hijacked"
		_, err := users.Update(ctx, alice.ID, bob.ID, domain.UserUpdate{Username: &name})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("non-admin cannot escalate role", func(t *testing.T) {
		role := domain.RoleAdmin
		_, err := users.Update(ctx, alice.ID, alice.ID, domain.UserUpdate{Role: &role})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("username collision is a conflict", func(t *testing.T) {
		name := "bob"
		_, err := users.Update(ctx, alice.ID, alice.ID, domain.UserUpdate{Username: &name})
		require.ErrorIs(t, err, ErrConflict)
	})
}

func TestUserRemoveIsSelfOnly(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st, nil)

	alice := seedUser(t, st, "ralice")
	bob := seedUser(t, st, "rbob")

	require.ErrorIs(t, users.Remove(ctx, alice.ID, bob.ID), ErrForbidden)

	require.NoError(t, users.Remove(ctx, alice.ID, alice.ID))
	_, err := users.Get(ctx, alice.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
