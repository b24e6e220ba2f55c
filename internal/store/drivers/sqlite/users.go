package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
	"github.com/tasklight/tasklight/internal/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, username, password_hash, auth_provider, auth_provider_id,
	role, status, email_verified, verification_token_hash,
	reset_token_hash, reset_token_expires_at, refresh_token_hash,
	created_at, updated_at, deleted_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u              domain.User
		passwordHash   sql.NullString
		providerID     sql.NullString
		verifyHash     sql.NullString
		resetHash      sql.NullString
		resetExpires   sql.NullTime
		refreshHash    sql.NullString
		deletedAt      sql.NullTime
		provider, role string
		status         string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &passwordHash, &provider, &providerID,
		&role, &status, &u.EmailVerified, &verifyHash,
		&resetHash, &resetExpires, &refreshHash,
		&u.CreatedAt, &u.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.PasswordHash = mapNullStringPtr(passwordHash)
	u.AuthProvider = domain.AuthProvider(provider)
	u.AuthProviderID = mapNullStringPtr(providerID)
	u.Role = domain.UserRole(role)
	u.Status = domain.UserStatus(status)
	u.VerificationTokenHash = mapNullStringPtr(verifyHash)
	u.ResetTokenHash = mapNullStringPtr(resetHash)
	u.ResetTokenExpiresAt = mapNullTimePtr(resetExpires)
	u.RefreshTokenHash = mapNullStringPtr(refreshHash)
	u.DeletedAt = mapNullTimePtr(deletedAt)
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, username, password_hash, auth_provider, auth_provider_id,
			role, status, email_verified, verification_token_hash,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, mapOptionalString(u.PasswordHash),
		string(u.AuthProvider), mapOptionalString(u.AuthProviderID),
		string(u.Role), string(u.Status), u.EmailVerified,
		mapOptionalString(u.VerificationTokenHash),
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *usersRepo) getBy(ctx context.Context, where string, arg any) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where+` AND deleted_at IS NULL`, arg))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, "email = ?", email)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *usersRepo) GetUserByVerificationTokenHash(ctx context.Context, hash string) (domain.User, error) {
	return r.getBy(ctx, "verification_token_hash = ?", hash)
}

func (r *usersRepo) GetUserByActiveResetTokenHash(ctx context.Context, hash string, now time.Time) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE reset_token_hash = ? AND reset_token_expires_at > ? AND deleted_at IS NULL`,
		hash, now))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE deleted_at IS NULL ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&n)
	return n, err
}

func (r *usersRepo) UpdateUser(ctx context.Context, userID string, upd domain.UserUpdate) error {
	// COALESCE keeps unset fields untouched; only the allow-listed columns
	// appear here.
	var username, role, status sql.NullString
	if upd.Username != nil {
		username = sql.NullString{String: *upd.Username, Valid: true}
	}
	if upd.Role != nil {
		role = sql.NullString{String: string(*upd.Role), Valid: true}
	}
	if upd.Status != nil {
		status = sql.NullString{String: string(*upd.Status), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			username = COALESCE(?, username),
			role = COALESCE(?, role),
			status = COALESCE(?, status),
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		username, role, status, time.Now().UTC(), userID)
	if err != nil {
		return mapConflict(err)
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		newHash, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET email_verified = 1, verification_token_hash = NULL, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID string, hash string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		hash, expiresAt, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePasswordAndClearReset(ctx context.Context, userID string, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			password_hash = ?,
			reset_token_hash = NULL,
			reset_token_expires_at = NULL,
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		newHash, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = ?
		WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= ?`,
		now, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) SetRefreshTokenHash(ctx context.Context, userID string, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET refresh_token_hash = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		hash, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SwapRefreshTokenHash(ctx context.Context, userID string, oldHash, newHash string) (bool, error) {
	// The refresh slot is a single mutable cell; the WHERE predicate on
	// the current value serializes concurrent rotations. Zero rows
	// affected means another rotation already replaced the slot.
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET refresh_token_hash = ?, updated_at = ?
		WHERE id = ? AND refresh_token_hash = ? AND deleted_at IS NULL`,
		newHash, time.Now().UTC(), userID, oldHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *usersRepo) ClearRefreshTokenHash(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET refresh_token_hash = NULL, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SoftDeleteUser(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
