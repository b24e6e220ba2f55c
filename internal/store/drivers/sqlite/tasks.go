package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
)

type tasksRepo struct {
	db dbtx
}

const taskColumns = `id, title, description, status, importance, due_at, completed_at,
	list_id, created_by, updated_by, parent_task_id,
	created_at, updated_at, deleted_at`

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var (
		t                  domain.Task
		description        sql.NullString
		status, importance string
		dueAt, completedAt sql.NullTime
		parentID           sql.NullString
		deletedAt          sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Title, &description, &status, &importance, &dueAt, &completedAt,
		&t.ListID, &t.CreatedBy, &t.UpdatedBy, &parentID,
		&t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.Task{}, err
	}
	t.Description = mapNullStringPtr(description)
	t.Status = domain.TaskStatus(status)
	t.Importance = domain.TaskImportance(importance)
	t.DueAt = mapNullTimePtr(dueAt)
	t.CompletedAt = mapNullTimePtr(completedAt)
	t.ParentTaskID = mapNullStringPtr(parentID)
	t.DeletedAt = mapNullTimePtr(deletedAt)
	return t, nil
}

func (r *tasksRepo) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, title, description, status, importance, due_at, completed_at,
			list_id, created_by, updated_by, parent_task_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, mapOptionalString(t.Description), string(t.Status), string(t.Importance),
		mapOptionalTime(t.DueAt), mapOptionalTime(t.CompletedAt),
		t.ListID, t.CreatedBy, t.UpdatedBy, mapOptionalString(t.ParentTaskID),
		t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *tasksRepo) GetTaskByID(ctx context.Context, id string) (domain.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND deleted_at IS NULL`, id))
	if err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tasksRepo) ListTasksByList(ctx context.Context, listID string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE list_id = ? AND deleted_at IS NULL ORDER BY id`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *tasksRepo) UpdateTask(ctx context.Context, id string, upd domain.TaskUpdate, updatedBy string) error {
	var title, description, status, importance sql.NullString
	if upd.Title != nil {
		title = sql.NullString{String: *upd.Title, Valid: true}
	}
	if upd.Description != nil {
		description = sql.NullString{String: *upd.Description, Valid: true}
	}
	if upd.Status != nil {
		status = sql.NullString{String: string(*upd.Status), Valid: true}
	}
	if upd.Importance != nil {
		importance = sql.NullString{String: string(*upd.Importance), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			status = COALESCE(?, status),
			importance = COALESCE(?, importance),
			due_at = COALESCE(?, due_at),
			completed_at = COALESCE(?, completed_at),
			updated_by = ?,
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		title, description, status, importance,
		mapOptionalTime(upd.DueAt), mapOptionalTime(upd.CompletedAt),
		updatedBy, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *tasksRepo) SoftDeleteTask(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
