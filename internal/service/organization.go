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

// OrganizationService manages organizations. Every mutating operation is
// gated on ownership before it touches the row.
type OrganizationService struct {
	store     store.Store
	authorize *AuthorizeService
	audit     *AuditService
}

func NewOrganizationService(st store.Store, authorize *AuthorizeService, audit *AuditService) *OrganizationService {
	return &OrganizationService{store: st, authorize: authorize, audit: audit}
}

func (s *OrganizationService) Create(ctx context.Context, ownerID, name string) (domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Organization{}, fmt.Errorf("%w: organization name is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	o := domain.Organization{
		ID:        idx.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Organizations().CreateOrganization(ctx, o); err != nil {
		return domain.Organization{}, fmt.Errorf("create organization: %w", err)
	}

	s.audit.Record(ctx, ownerID, AuditCreate, EntityOrganization, o.ID, map[string]any{"name": name})
	return o, nil
}

func (s *OrganizationService) Get(ctx context.Context, userID, id string) (domain.Organization, error) {
	o, err := s.store.Organizations().GetOrganizationByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Organization{}, ErrNotFound
		}
		return domain.Organization{}, fmt.Errorf("get organization: %w", err)
	}
	if o.OwnerID != userID {
		return domain.Organization{}, ErrForbidden
	}
	return o, nil
}

// ListMine returns the caller's organizations, newest first.
func (s *OrganizationService) ListMine(ctx context.Context, userID string) ([]domain.Organization, error) {
	orgs, err := s.store.Organizations().ListOrganizationsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, nil
}

func (s *OrganizationService) Rename(ctx context.Context, userID, id, name string) (domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Organization{}, fmt.Errorf("%w: organization name is required", ErrInvalidInput)
	}

	if err := s.authorize.Require(ctx, userID, KindOrganization, id); err != nil {
		return domain.Organization{}, err
	}
	if err := s.store.Organizations().UpdateOrganizationName(ctx, id, name); err != nil {
		return domain.Organization{}, fmt.Errorf("rename organization: %w", err)
	}

	s.audit.Record(ctx, userID, AuditUpdate, EntityOrganization, id, map[string]any{"name": name})
	return s.store.Organizations().GetOrganizationByID(ctx, id)
}

// Delete soft-deletes the organization. Lists that referenced it keep
// their organization_id but the organization itself stops resolving.
func (s *OrganizationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.authorize.Require(ctx, userID, KindOrganization, id); err != nil {
		return err
	}
	if err := s.store.Organizations().SoftDeleteOrganization(ctx, id); err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}

	s.audit.Record(ctx, userID, AuditDelete, EntityOrganization, id, nil)
	return nil
}
