package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/task-tracker/internal/errs"
	"github.com/and161185/task-tracker/internal/model"
)

// TaskRepo implements TaskRepository using PostgreSQL.
// All statements filter by user_id so ownership is enforced in SQL.
type TaskRepo struct{ db *DB }

// NewTaskRepo constructs a task repository.
func NewTaskRepo(db *DB) *TaskRepo { return &TaskRepo{db: db} }

// Create inserts a new task row. created_at is maintained by the database.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	const q = `
INSERT INTO tasks (id, user_id, title, description, due_date, status)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, t.ID, t.UserID, t.Title, t.Description, t.DueDate, t.Status)
	return err
}

// GetByID selects a task by id scoped to its owner.
func (r *TaskRepo) GetByID(ctx context.Context, userID string, taskID uuid.UUID) (*model.Task, error) {
	const q = `
SELECT id, user_id, title, description, due_date, status, created_at
FROM tasks WHERE id=$1 AND user_id=$2`
	row := r.db.Pool.QueryRow(ctx, q, taskID, userID)
	var t model.Task
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate, &t.Status, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByUser returns the user's tasks, newest first.
func (r *TaskRepo) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	const q = `
SELECT id, user_id, title, description, due_date, status, created_at
FROM tasks WHERE user_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var t model.Task
		if err = rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of an owned task.
func (r *TaskRepo) Update(ctx context.Context, userID string, t *model.Task) error {
	const q = `
UPDATE tasks SET title=$3, description=$4, due_date=$5, status=$6
WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, t.ID, userID, t.Title, t.Description, t.DueDate, t.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes an owned task. Zero rows affected is a success: deleting an
// absent or foreign task is indistinguishable from deleting nothing.
func (r *TaskRepo) Delete(ctx context.Context, userID string, taskID uuid.UUID) error {
	const q = `DELETE FROM tasks WHERE id=$1 AND user_id=$2`
	_, err := r.db.Pool.Exec(ctx, q, taskID, userID)
	return err
}

// SetStatus updates the status of an owned task.
func (r *TaskRepo) SetStatus(ctx context.Context, userID string, taskID uuid.UUID, status string) error {
	const q = `UPDATE tasks SET status=$3 WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, taskID, userID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// CountByStatus aggregates task counts for the dashboard.
func (r *TaskRepo) CountByStatus(ctx context.Context, userID string) (model.TaskCounts, error) {
	const q = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE status='completed')
FROM tasks WHERE user_id=$1`
	var c model.TaskCounts
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&c.Total, &c.Completed); err != nil {
		return model.TaskCounts{}, err
	}
	c.Pending = c.Total - c.Completed
	return c, nil
}
