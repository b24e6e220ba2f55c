package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/store"
)

// UserService covers profile reads, the admin user listing, and self
// updates. Secrets never leave this layer: every returned user has been
// through Public().
type UserService struct {
	store store.Store
	audit *AuditService
}

func NewUserService(st store.Store, audit *AuditService) *UserService {
	return &UserService{store: st, audit: audit}
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := s.store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u.Public(), nil
}

// UserPage is one page of the admin listing.
type UserPage struct {
	Users []domain.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// List returns a page of users. Admin only; the caller's role is read
// from the store, not the token, so a demotion takes effect immediately.
func (s *UserService) List(ctx context.Context, callerID string, page, limit int) (UserPage, error) {
	caller, err := s.store.Users().GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return UserPage{}, ErrUnauthorized
		}
		return UserPage{}, fmt.Errorf("get caller: %w", err)
	}
	if caller.Role != domain.RoleAdmin {
		return UserPage{}, ErrForbidden
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, err := s.store.Users().ListUsers(ctx, limit, (page-1)*limit)
	if err != nil {
		return UserPage{}, fmt.Errorf("list users: %w", err)
	}
	total, err := s.store.Users().CountUsers(ctx)
	if err != nil {
		return UserPage{}, fmt.Errorf("count users: %w", err)
	}

	for i := range users {
		users[i] = users[i].Public()
	}
	return UserPage{Users: users, Total: total, Page: page, Limit: limit}, nil
}

// Update applies profile changes. Users may only touch their own profile,
// and only an admin may set role or status.
func (s *UserService) Update(ctx context.Context, callerID, targetID string, upd domain.UserUpdate) (domain.User, error) {
	if callerID != targetID {
		return domain.User{}, ErrForbidden
	}

	if upd.Role != nil || upd.Status != nil {
		caller, err := s.store.Users().GetUserByID(ctx, callerID)
		if err != nil {
			return domain.User{}, fmt.Errorf("get caller: %w", err)
		}
		if caller.Role != domain.RoleAdmin {
			return domain.User{}, ErrForbidden
		}
	}

	if upd.Username != nil {
		trimmed := strings.TrimSpace(*upd.Username)
		if trimmed == "" {
			return domain.User{}, fmt.Errorf("%w: username cannot be empty", ErrInvalidInput)
		}
		upd.Username = &trimmed
	}

	if err := s.store.Users().UpdateUser(ctx, targetID, upd); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrConflict
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	s.audit.Record(ctx, callerID, AuditUpdate, EntityUser, targetID, nil)
	return s.Get(ctx, targetID)
}

// Remove soft-deletes the caller's own account and kills its session. The
// email and username become reusable because uniqueness only counts live
// rows.
func (s *UserService) Remove(ctx context.Context, callerID, targetID string) error {
	if callerID != targetID {
		return ErrForbidden
	}

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().ClearRefreshTokenHash(ctx, targetID); err != nil {
			return err
		}
		return tx.Users().SoftDeleteUser(ctx, targetID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.audit.Record(ctx, callerID, AuditDelete, EntityUser, targetID, nil)
	return nil
}
