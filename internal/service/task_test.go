package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tasklight/tasklight/internal/domain"
)

func TestTaskCreationGating(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	authz := NewAuthorizeService(st)
	tasks := NewTaskService(st, authz, nil)

	owner := seedUser(t, st, "towner")
	other := seedUser(t, st, "tother")
	list := seedList(t, st, owner.ID)

	t.Run("owner creates with defaults", func(t *testing.T) {
		created, err := tasks.Create(ctx, owner.ID, CreateTask{Title: "buy milk", ListID: list.ID})
		require.NoError(t, err)
		require.Equal(t, domain.TaskPending, created.Status)
		require.Equal(t, domain.ImportanceNormal, created.Importance)
		require.Equal(t, owner.ID, created.CreatedBy)
	})

	t.Run("foreign list is forbidden", func(t *testing.T) {
		_, err := tasks.Create(ctx, other.ID, CreateTask{Title: "sneak in", ListID: list.ID})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing list is not found", func(t *testing.T) {
		_, err := tasks.Create(ctx, owner.ID, CreateTask{Title: "nowhere", ListID: "missing"})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing parent is not found", func(t *testing.T) {
		missing := "missing-parent"
		_, err := tasks.Create(ctx, owner.ID, CreateTask{Title: "child", ListID: list.ID, ParentTaskID: &missing})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("parent in another list is rejected", func(t *testing.T) {
		otherList := seedList(t, st, owner.ID)
		parent := seedTask(t, st, otherList.ID, owner.ID)

		_, err := tasks.Create(ctx, owner.ID, CreateTask{Title: "child", ListID: list.ID, ParentTaskID: &parent.ID})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestTaskUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	authz := NewAuthorizeService(st)
	tasks := NewTaskService(st, authz, nil)

	owner := seedUser(t, st, "uowner")
	other := seedUser(t, st, "uother")
	list := seedList(t, st, owner.ID)
	task := seedTask(t, st, list.ID, owner.ID)

	t.Run("completion stamps completed_at", func(t *testing.T) {
		done := domain.TaskCompleted
		updated, err := tasks.Update(ctx, owner.ID, task.ID, domain.TaskUpdate{Status: &done})
		require.NoError(t, err)
		require.Equal(t, domain.TaskCompleted, updated.Status)
		require.NotNil(t, updated.CompletedAt)
		require.Equal(t, owner.ID, updated.UpdatedBy)
	})

	t.Run("non-owner cannot update", func(t *testing.T) {
		title := "hijack"
		_, err := tasks.Update(ctx, other.ID, task.ID, domain.TaskUpdate{Title: &title})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("delete hides the task", func(t *testing.T) {
		require.NoError(t, tasks.Delete(ctx, owner.ID, task.ID))

		_, err := tasks.Get(ctx, owner.ID, task.ID)
		require.ErrorIs(t, err, ErrNotFound)

		// A repeated delete is also a not-found.
		require.ErrorIs(t, tasks.Delete(ctx, owner.ID, task.ID), ErrNotFound)
	})
}

func TestListCreationUnderOrganization(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	authz := NewAuthorizeService(st)
	orgs := NewOrganizationService(st, authz, nil)
	lists := NewListService(st, authz, nil)

	owner := seedUser(t, st, "lowner")
	other := seedUser(t, st, "lother")

	org, err := orgs.Create(ctx, owner.ID, "acme")
	require.NoError(t, err)

	t.Run("owner attaches list to own organization", func(t *testing.T) {
		l, err := lists.Create(ctx, owner.ID, CreateList{Name: "work", OrganizationID: &org.ID})
		require.NoError(t, err)
		require.Equal(t, owner.ID, l.OwnerID)
		require.Equal(t, domain.VisibilityPrivate, l.Visibility)
	})

	t.Run("foreign organization is forbidden", func(t *testing.T) {
		_, err := lists.Create(ctx, other.ID, CreateList{Name: "intrude", OrganizationID: &org.ID})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing organization is not found", func(t *testing.T) {
		missing := "missing-org"
		_, err := lists.Create(ctx, owner.ID, CreateList{Name: "lost", OrganizationID: &missing})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("organization never confers access to the list", func(t *testing.T) {
		l, err := lists.Create(ctx, owner.ID, CreateList{Name: "shared-org", OrganizationID: &org.ID, Visibility: domain.VisibilityShared})
		require.NoError(t, err)

		_, err = lists.Get(ctx, other.ID, l.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("empty name is invalid", func(t *testing.T) {
		_, err := lists.Create(ctx, owner.ID, CreateList{Name: "   "})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}
