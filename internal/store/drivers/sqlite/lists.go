package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
)

type listsRepo struct {
	db dbtx
}

const listColumns = `id, name, visibility, is_default, owner_id, organization_id,
	created_at, updated_at, deleted_at`

func scanList(row interface{ Scan(...any) error }) (domain.List, error) {
	var (
		l          domain.List
		visibility string
		orgID      sql.NullString
		deletedAt  sql.NullTime
	)
	err := row.Scan(&l.ID, &l.Name, &visibility, &l.IsDefault, &l.OwnerID, &orgID,
		&l.CreatedAt, &l.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.List{}, err
	}
	l.Visibility = domain.ListVisibility(visibility)
	l.OrganizationID = mapNullStringPtr(orgID)
	l.DeletedAt = mapNullTimePtr(deletedAt)
	return l, nil
}

func (r *listsRepo) CreateList(ctx context.Context, l domain.List) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lists (id, name, visibility, is_default, owner_id, organization_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, string(l.Visibility), l.IsDefault, l.OwnerID,
		mapOptionalString(l.OrganizationID), l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *listsRepo) GetListByID(ctx context.Context, id string) (domain.List, error) {
	l, err := scanList(r.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = ? AND deleted_at IS NULL`, id))
	if err != nil {
		return domain.List{}, mapNotFound(err)
	}
	return l, nil
}

func (r *listsRepo) ListListsByOwner(ctx context.Context, ownerID string) ([]domain.List, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+listColumns+` FROM lists
		WHERE owner_id = ? AND deleted_at IS NULL ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *listsRepo) UpdateList(ctx context.Context, id string, upd domain.ListUpdate) error {
	var name, visibility sql.NullString
	var isDefault sql.NullBool
	if upd.Name != nil {
		name = sql.NullString{String: *upd.Name, Valid: true}
	}
	if upd.Visibility != nil {
		visibility = sql.NullString{String: string(*upd.Visibility), Valid: true}
	}
	if upd.IsDefault != nil {
		isDefault = sql.NullBool{Bool: *upd.IsDefault, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE lists SET
			name = COALESCE(?, name),
			visibility = COALESCE(?, visibility),
			is_default = COALESCE(?, is_default),
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		name, visibility, isDefault, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *listsRepo) SoftDeleteList(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE lists SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
