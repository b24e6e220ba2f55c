package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/store"
	"github.com/tasklight/tasklight/pkg/idx"
)

func seedUser(t *testing.T, st store.Store, username string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        username + "@example.com",
		Username:     username,
		AuthProvider: domain.ProviderEmail,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func seedList(t *testing.T, st store.Store, ownerID string) domain.List {
	t.Helper()

	now := time.Now().UTC()
	l := domain.List{
		ID:         idx.New().String(),
		Name:       "inbox",
		Visibility: domain.VisibilityPrivate,
		OwnerID:    ownerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, st.Lists().CreateList(context.Background(), l))
	return l
}

func seedTask(t *testing.T, st store.Store, listID, creatorID string) domain.Task {
	t.Helper()

	now := time.Now().UTC()
	task := domain.Task{
		ID:         idx.New().String(),
		Title:      "write tests",
		Status:     domain.TaskPending,
		Importance: domain.ImportanceNormal,
		ListID:     listID,
		CreatedBy:  creatorID,
		UpdatedBy:  creatorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, st.Tasks().CreateTask(context.Background(), task))
	return task
}

func TestRequireOwnership(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	authz := NewAuthorizeService(st)

	owner := seedUser(t, st, "owner")
	other := seedUser(t, st, "other")

	now := time.Now().UTC()
	org := domain.Organization{ID: idx.New().String(), Name: "acme", OwnerID: owner.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.Organizations().CreateOrganization(ctx, org))

	list := seedList(t, st, owner.ID)
	task := seedTask(t, st, list.ID, owner.ID)

	t.Run("owner passes for every kind", func(t *testing.T) {
		require.NoError(t, authz.Require(ctx, owner.ID, KindOrganization, org.ID))
		require.NoError(t, authz.Require(ctx, owner.ID, KindList, list.ID))
		require.NoError(t, authz.Require(ctx, owner.ID, KindTask, task.ID))
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		require.ErrorIs(t, authz.Require(ctx, other.ID, KindOrganization, org.ID), ErrForbidden)
		require.ErrorIs(t, authz.Require(ctx, other.ID, KindList, list.ID), ErrForbidden)
		require.ErrorIs(t, authz.Require(ctx, other.ID, KindTask, task.ID), ErrForbidden)
	})

	t.Run("missing entities are not found", func(t *testing.T) {
		require.ErrorIs(t, authz.Require(ctx, owner.ID, KindOrganization, "missing"), ErrNotFound)
		require.ErrorIs(t, authz.Require(ctx, owner.ID, KindList, "missing"), ErrNotFound)
		require.ErrorIs(t, authz.Require(ctx, owner.ID, KindTask, "missing"), ErrNotFound)
	})

	t.Run("task inherits ownership through its list", func(t *testing.T) {
		ownerID, err := authz.ResolveOwner(ctx, KindTask, task.ID)
		require.NoError(t, err)
		require.Equal(t, owner.ID, ownerID)
	})

	t.Run("soft-deleted list hides its tasks", func(t *testing.T) {
		require.NoError(t, st.Lists().SoftDeleteList(ctx, list.ID))
		require.ErrorIs(t, authz.Require(ctx, owner.ID, KindTask, task.ID), ErrNotFound)
	})

	t.Run("soft-deleted entity is indistinguishable from absent", func(t *testing.T) {
		require.NoError(t, st.Organizations().SoftDeleteOrganization(ctx, org.ID))
		require.ErrorIs(t, authz.Require(ctx, owner.ID, KindOrganization, org.ID), ErrNotFound)
		require.ErrorIs(t, authz.Require(ctx, other.ID, KindOrganization, org.ID), ErrNotFound)
	})
}
