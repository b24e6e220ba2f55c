package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/obs"
	"github.com/tasklight/tasklight/internal/store"
	"github.com/tasklight/tasklight/pkg/idx"
)

// Audit action tags.
const (
	AuditSignup        = "signup"
	AuditLogin         = "login"
	AuditLogout        = "logout"
	AuditPasswordReset = "password_reset"
	AuditCreate        = "create"
	AuditUpdate        = "update"
	AuditDelete        = "delete"
)

// Audit entity type tags.
const (
	EntityUser         = "user"
	EntityOrganization = "organization"
	EntityList         = "list"
	EntityTask         = "task"
)

// AuditService appends privileged-action records to the audit log. It is
// advisory telemetry: recording never blocks the request path, and a
// failed append is reported to the operational log only, never to the
// caller of the operation being audited.
type AuditService struct {
	store  store.Store
	logger *slog.Logger

	ch        chan domain.AuditLog
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

const defaultAuditBuffer = 256

func NewAuditService(st store.Store, logger *slog.Logger, buffer int) *AuditService {
	if buffer <= 0 {
		buffer = defaultAuditBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &AuditService{
		store:  st,
		logger: logger,
		ch:     make(chan domain.AuditLog, buffer),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	return s
}

func (s *AuditService) run() {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.ch:
			s.append(entry)
		case <-s.done:
			// Drain whatever is already buffered, then exit.
			for {
				select {
				case entry := <-s.ch:
					s.append(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *AuditService) append(entry domain.AuditLog) {
	// Detached context: the originating request may be long gone.
	if err := s.store.AuditLogs().AppendAuditLog(context.Background(), entry); err != nil {
		obs.AuditWriteErrorsTotal.Inc()
		s.logger.Error("audit append failed",
			slog.String("action", entry.Action),
			slog.String("entity_type", entry.EntityType),
			slog.String("entity_id", entry.EntityID),
			slog.Any("error", err),
		)
	}
}

// Record enqueues one audit entry. It never blocks: if the buffer is full
// the entry is dropped and counted.
func (s *AuditService) Record(ctx context.Context, actorID, action, entityType, entityID string, details map[string]any) {
	if s == nil {
		return
	}

	entry := domain.AuditLog{
		ID:         idx.New().String(),
		UserID:     actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}

	select {
	case s.ch <- entry:
	case <-s.done:
	default:
		obs.AuditDroppedTotal.Inc()
		s.logger.Warn("audit entry dropped, buffer full",
			slog.String("action", action),
			slog.String("entity_type", entityType),
		)
	}
}

// Recent returns the newest entries, for operational inspection.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.AuditLogs().ListRecentAuditLogs(ctx, limit)
}

// Close stops the recorder after draining buffered entries.
func (s *AuditService) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}
