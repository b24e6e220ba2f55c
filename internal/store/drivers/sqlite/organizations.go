package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
)

type organizationsRepo struct {
	db dbtx
}

const organizationColumns = `id, name, owner_id, created_at, updated_at, deleted_at`

func scanOrganization(row interface{ Scan(...any) error }) (domain.Organization, error) {
	var (
		o         domain.Organization
		deletedAt sql.NullTime
	)
	if err := row.Scan(&o.ID, &o.Name, &o.OwnerID, &o.CreatedAt, &o.UpdatedAt, &deletedAt); err != nil {
		return domain.Organization{}, err
	}
	o.DeletedAt = mapNullTimePtr(deletedAt)
	return o, nil
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.OwnerID, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	o, err := scanOrganization(r.db.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE id = ? AND deleted_at IS NULL`, id))
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return o, nil
}

func (r *organizationsRepo) ListOrganizationsByOwner(ctx context.Context, ownerID string) ([]domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+organizationColumns+` FROM organizations
		WHERE owner_id = ? AND deleted_at IS NULL ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (r *organizationsRepo) UpdateOrganizationName(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE organizations SET name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		name, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *organizationsRepo) SoftDeleteOrganization(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE organizations SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
