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

// ListService manages task lists. The list's owner is always its creator;
// attaching a list to an organization requires owning that organization
// but grants the organization no access back.
type ListService struct {
	store     store.Store
	authorize *AuthorizeService
	audit     *AuditService
}

func NewListService(st store.Store, authorize *AuthorizeService, audit *AuditService) *ListService {
	return &ListService{store: st, authorize: authorize, audit: audit}
}

// CreateList carries the caller-settable fields for Create.
type CreateList struct {
	Name           string
	Visibility     domain.ListVisibility
	IsDefault      bool
	OrganizationID *string
}

func (s *ListService) Create(ctx context.Context, userID string, in CreateList) (domain.List, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.List{}, fmt.Errorf("%w: list name is required", ErrInvalidInput)
	}
	if in.Visibility == "" {
		in.Visibility = domain.VisibilityPrivate
	}

	// Placing a list under an organization requires owning it. A missing
	// or soft-deleted organization is a not-found, someone else's is a
	// forbidden.
	if in.OrganizationID != nil {
		if err := s.authorize.Require(ctx, userID, KindOrganization, *in.OrganizationID); err != nil {
			return domain.List{}, err
		}
	}

	now := time.Now().UTC()
	l := domain.List{
		ID:             idx.New().String(),
		Name:           in.Name,
		Visibility:     in.Visibility,
		IsDefault:      in.IsDefault,
		OwnerID:        userID,
		OrganizationID: in.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Lists().CreateList(ctx, l); err != nil {
		return domain.List{}, fmt.Errorf("create list: %w", err)
	}

	s.audit.Record(ctx, userID, AuditCreate, EntityList, l.ID, map[string]any{"name": l.Name})
	return l, nil
}

func (s *ListService) Get(ctx context.Context, userID, id string) (domain.List, error) {
	l, err := s.store.Lists().GetListByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.List{}, ErrNotFound
		}
		return domain.List{}, fmt.Errorf("get list: %w", err)
	}
	if l.OwnerID != userID {
		return domain.List{}, ErrForbidden
	}
	return l, nil
}

// ListMine returns the caller's lists, newest first.
func (s *ListService) ListMine(ctx context.Context, userID string) ([]domain.List, error) {
	lists, err := s.store.Lists().ListListsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

func (s *ListService) Update(ctx context.Context, userID, id string, upd domain.ListUpdate) (domain.List, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return domain.List{}, fmt.Errorf("%w: list name cannot be empty", ErrInvalidInput)
		}
		upd.Name = &trimmed
	}

	if err := s.authorize.Require(ctx, userID, KindList, id); err != nil {
		return domain.List{}, err
	}
	if err := s.store.Lists().UpdateList(ctx, id, upd); err != nil {
		return domain.List{}, fmt.Errorf("update list: %w", err)
	}

	s.audit.Record(ctx, userID, AuditUpdate, EntityList, id, nil)
	return s.store.Lists().GetListByID(ctx, id)
}

// Delete soft-deletes the list. Its tasks are not touched, but they become
// unreachable because every task authorization walks through the list.
func (s *ListService) Delete(ctx context.Context, userID, id string) error {
	if err := s.authorize.Require(ctx, userID, KindList, id); err != nil {
		return err
	}
	if err := s.store.Lists().SoftDeleteList(ctx, id); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	s.audit.Record(ctx, userID, AuditDelete, EntityList, id, nil)
	return nil
}
