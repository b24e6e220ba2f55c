package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/store"
	"github.com/tasklight/tasklight/pkg/idx"
)

// TaskService manages tasks. A task's authorization owner is its list's
// owner; the task row itself never stores an owner.
type TaskService struct {
	store     store.Store
	authorize *AuthorizeService
	audit     *AuditService
}

func NewTaskService(st store.Store, authorize *AuthorizeService, audit *AuditService) *TaskService {
	return &TaskService{store: st, authorize: authorize, audit: audit}
}

// CreateTask carries the caller-settable fields for Create.
type CreateTask struct {
	Title        string
	Description  *string
	ListID       string
	ParentTaskID *string
	Status       domain.TaskStatus
	Importance   domain.TaskImportance
	DueAt        *time.Time
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTask) (domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Task{}, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = domain.TaskPending
	}
	if in.Importance == "" {
		in.Importance = domain.ImportanceNormal
	}

	// Creating under a list requires owning that list.
	if err := s.authorize.Require(ctx, userID, KindList, in.ListID); err != nil {
		return domain.Task{}, err
	}

	// The parent must resolve and live in the same list; anything else
	// would let a subtree span ownership boundaries.
	if in.ParentTaskID != nil {
		parent, err := s.store.Tasks().GetTaskByID(ctx, *in.ParentTaskID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Task{}, ErrNotFound
			}
			return domain.Task{}, fmt.Errorf("get parent task: %w", err)
		}
		if parent.ListID != in.ListID {
			return domain.Task{}, fmt.Errorf("%w: parent task belongs to a different list", ErrInvalidInput)
		}
	}

	now := time.Now().UTC()
	t := domain.Task{
		ID:           idx.New().String(),
		Title:        in.Title,
		Description:  in.Description,
		Status:       in.Status,
		Importance:   in.Importance,
		DueAt:        in.DueAt,
		ListID:       in.ListID,
		CreatedBy:    userID,
		UpdatedBy:    userID,
		ParentTaskID: in.ParentTaskID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Tasks().CreateTask(ctx, t); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.audit.Record(ctx, userID, AuditCreate, EntityTask, t.ID, map[string]any{"list_id": t.ListID})
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (domain.Task, error) {
	if err := s.authorize.Require(ctx, userID, KindTask, id); err != nil {
		return domain.Task{}, err
	}
	return s.store.Tasks().GetTaskByID(ctx, id)
}

// ListByList returns the tasks of one list, gated on owning that list.
func (s *TaskService) ListByList(ctx context.Context, userID, listID string) ([]domain.Task, error) {
	if err := s.authorize.Require(ctx, userID, KindList, listID); err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks().ListTasksByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, upd domain.TaskUpdate) (domain.Task, error) {
	if upd.Title != nil {
		trimmed := strings.TrimSpace(*upd.Title)
		if trimmed == "" {
			return domain.Task{}, fmt.Errorf("%w: task title cannot be empty", ErrInvalidInput)
		}
		upd.Title = &trimmed
	}

	if err := s.authorize.Require(ctx, userID, KindTask, id); err != nil {
		return domain.Task{}, err
	}

	// Completing a task stamps completed_at unless the caller set it.
	if upd.Status != nil && *upd.Status == domain.TaskCompleted && upd.CompletedAt == nil {
		now := time.Now().UTC()
		upd.CompletedAt = &now
	}

	if err := s.store.Tasks().UpdateTask(ctx, id, upd, userID); err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}

	s.audit.Record(ctx, userID, AuditUpdate, EntityTask, id, nil)
	return s.store.Tasks().GetTaskByID(ctx, id)
}

// Delete soft-deletes the task. Child tasks keep their parent_task_id;
// they stay reachable through their list.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.authorize.Require(ctx, userID, KindTask, id); err != nil {
		return err
	}
	if err := s.store.Tasks().SoftDeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.audit.Record(ctx, userID, AuditDelete, EntityTask, id, nil)
	return nil
}
