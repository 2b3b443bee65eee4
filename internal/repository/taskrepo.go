package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/task-tracker/internal/model"
)

// TaskRepository provides owner-scoped access to tasks.
//
// Every method takes the owning user ID and scopes its query by it, so a
// task owned by someone else behaves exactly like a missing one. Mutations
// re-check ownership in the statement itself; there are no cached decisions.
type TaskRepository interface {
	// Create inserts a new task.
	Create(ctx context.Context, t *model.Task) error

	// GetByID returns the task, or errs.ErrNotFound when it is absent or
	// owned by another user.
	GetByID(ctx context.Context, userID string, taskID uuid.UUID) (*model.Task, error)

	// ListByUser returns the user's tasks, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Task, error)

	// Update rewrites title, description, due date and status.
	// Returns errs.ErrNotFound when no owned row matched.
	Update(ctx context.Context, userID string, t *model.Task) error

	// Delete removes the task. Deleting an absent or foreign task is a no-op success.
	Delete(ctx context.Context, userID string, taskID uuid.UUID) error

	// SetStatus updates only the status column.
	// Returns errs.ErrNotFound when no owned row matched.
	SetStatus(ctx context.Context, userID string, taskID uuid.UUID, status string) error

	// CountByStatus aggregates the user's tasks for the dashboard.
	CountByStatus(ctx context.Context, userID string) (model.TaskCounts, error)
}
