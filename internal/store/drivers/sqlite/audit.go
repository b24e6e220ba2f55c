package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/tasklight/tasklight/internal/domain"
)

type auditLogsRepo struct {
	db dbtx
}

func (r *auditLogsRepo) AppendAuditLog(ctx context.Context, entry domain.AuditLog) error {
	var details sql.NullString
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return err
		}
		details = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Action, entry.EntityType, entry.EntityID,
		details, entry.CreatedAt)
	return err
}

func (r *auditLogsRepo) ListRecentAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM audit_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditLog
	for rows.Next() {
		var (
			e       domain.AuditLog
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.EntityType, &e.EntityID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
