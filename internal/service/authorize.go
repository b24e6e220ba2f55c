package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tasklight/tasklight/internal/store"
)

// EntityKind names a resource class the ownership resolver understands.
type EntityKind string

const (
	KindOrganization EntityKind = "organization"
	KindList         EntityKind = "list"
	KindTask         EntityKind = "task"
)

// AuthorizeService answers "may this user act on this resource" by walking
// the ownership chain to the owning user: organizations and lists carry
// their owner directly, tasks inherit ownership through their list. One
// resolver serves every entity so the rules cannot drift apart per type.
type AuthorizeService struct {
	store store.Store
}

func NewAuthorizeService(st store.Store) *AuthorizeService {
	return &AuthorizeService{store: st}
}

// ResolveOwner returns the owning user id for the entity. Absent and
// soft-deleted entities both resolve to ErrNotFound; a task whose list has
// been soft-deleted is unreachable too.
func (s *AuthorizeService) ResolveOwner(ctx context.Context, kind EntityKind, id string) (string, error) {
	switch kind {
	case KindOrganization:
		o, err := s.store.Organizations().GetOrganizationByID(ctx, id)
		if err != nil {
			return "", mapResolveErr(err)
		}
		return o.OwnerID, nil

	case KindList:
		l, err := s.store.Lists().GetListByID(ctx, id)
		if err != nil {
			return "", mapResolveErr(err)
		}
		return l.OwnerID, nil

	case KindTask:
		t, err := s.store.Tasks().GetTaskByID(ctx, id)
		if err != nil {
			return "", mapResolveErr(err)
		}
		l, err := s.store.Lists().GetListByID(ctx, t.ListID)
		if err != nil {
			return "", mapResolveErr(err)
		}
		return l.OwnerID, nil

	default:
		return "", fmt.Errorf("authorize: unknown entity kind %q", kind)
	}
}

// Require resolves the entity's owner and checks it against userID.
// Returns ErrNotFound when the entity does not resolve, ErrForbidden when
// it resolves to a different owner, nil when the caller owns it.
func (s *AuthorizeService) Require(ctx context.Context, userID string, kind EntityKind, id string) error {
	ownerID, err := s.ResolveOwner(ctx, kind, id)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	return nil
}

func mapResolveErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("resolve owner: %w", err)
}
