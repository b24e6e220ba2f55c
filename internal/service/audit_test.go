package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuditRecorderPersistsEntries(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	actor := seedUser(t, st, "auditor")

	svc := NewAuditService(st, nil, 16)
	svc.Record(ctx, actor.ID, AuditCreate, EntityList, "list-1", map[string]any{"name": "inbox"})
	svc.Record(ctx, actor.ID, AuditDelete, EntityList, "list-1", nil)

	// Close drains the buffer before returning.
	svc.Close()

	entries, err := st.AuditLogs().ListRecentAuditLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, AuditDelete, entries[0].Action)
	require.Equal(t, AuditCreate, entries[1].Action)
	require.Equal(t, "inbox", entries[1].Details["name"])
	require.Equal(t, actor.ID, entries[1].UserID)
}

func TestAuditRecorderNeverBlocks(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	actor := seedUser(t, st, "noisy")

	svc := NewAuditService(st, nil, 1)
	defer svc.Close()

	// Flooding well past the buffer must return promptly; overflow entries
	// are dropped, not queued.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			svc.Record(ctx, actor.ID, AuditUpdate, EntityTask, "task-1", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("audit Record blocked the caller")
	}
}

func TestAuditRecordAfterCloseIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	actor := seedUser(t, st, "late")

	svc := NewAuditService(st, nil, 4)
	svc.Close()

	// Must not panic or deadlock.
	svc.Record(ctx, actor.ID, AuditLogin, EntityUser, actor.ID, nil)
}
