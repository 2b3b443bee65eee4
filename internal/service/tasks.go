package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/task-tracker/internal/errs"
	"github.com/and161185/task-tracker/internal/model"
	"github.com/and161185/task-tracker/internal/repository"
)

// TaskInput carries the editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      string
}

// TaskService defines owner-scoped task operations.
//
// Every operation requires the caller's user ID and re-checks ownership at
// the point of use. Absent and foreign tasks are indistinguishable: reads
// report errs.ErrNotFound, Delete succeeds without effect.
type TaskService interface {
	// Create adds a task owned by userID. Title must be non-empty after trimming.
	Create(ctx context.Context, userID string, in TaskInput) (*model.Task, error)
	// Get returns a single owned task.
	Get(ctx context.Context, userID string, id uuid.UUID) (*model.Task, error)
	// List returns the user's tasks, newest first.
	List(ctx context.Context, userID string) ([]model.Task, error)
	// Update rewrites the editable fields of an owned task.
	Update(ctx context.Context, userID string, id uuid.UUID, in TaskInput) error
	// Delete removes an owned task; deleting an absent task is a success.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	// ToggleStatus flips pending<->completed on an owned task.
	ToggleStatus(ctx context.Context, userID string, id uuid.UUID) error
	// Counts aggregates {total, completed, pending} for the dashboard.
	Counts(ctx context.Context, userID string) (model.TaskCounts, error)
}

type TaskServiceImpl struct {
	repo repository.TaskRepository
}

// NewTaskService constructs TaskService.
func NewTaskService(repo repository.TaskRepository) *TaskServiceImpl {
	return &TaskServiceImpl{repo: repo}
}

func normalizeInput(in *TaskInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	if in.Status == "" {
		in.Status = model.StatusPending
	}
	if !model.ValidStatus(in.Status) {
		return fmt.Errorf("%w: unknown status %q", errs.ErrValidation, in.Status)
	}
	return nil
}

// Create validates input and inserts a new task for userID.
func (s *TaskServiceImpl) Create(ctx context.Context, userID string, in TaskInput) (*model.Task, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	if err := normalizeInput(&in); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	t := &model.Task{
		ID:          id,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get fetches a single owned task.
func (s *TaskServiceImpl) Get(ctx context.Context, userID string, id uuid.UUID) (*model.Task, error) {
	if userID == "" || id == uuid.Nil {
		return nil, errs.ErrNotFound
	}
	return s.repo.GetByID(ctx, userID, id)
}

// List returns all tasks of the user.
func (s *TaskServiceImpl) List(ctx context.Context, userID string) ([]model.Task, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	return s.repo.ListByUser(ctx, userID)
}

// Update validates input and rewrites the task. Ownership is re-checked in
// the UPDATE itself; a miss surfaces as errs.ErrNotFound.
func (s *TaskServiceImpl) Update(ctx context.Context, userID string, id uuid.UUID, in TaskInput) error {
	if userID == "" || id == uuid.Nil {
		return errs.ErrNotFound
	}
	if err := normalizeInput(&in); err != nil {
		return err
	}
	t := &model.Task{
		ID:          id,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
	}
	return s.repo.Update(ctx, userID, t)
}

// Delete removes the task if owned; absent and foreign ids are a no-op success.
func (s *TaskServiceImpl) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" || id == uuid.Nil {
		return nil
	}
	return s.repo.Delete(ctx, userID, id)
}

// ToggleStatus re-fetches the task and flips its status.
func (s *TaskServiceImpl) ToggleStatus(ctx context.Context, userID string, id uuid.UUID) error {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	next := model.StatusCompleted
	if t.Status == model.StatusCompleted {
		next = model.StatusPending
	}
	return s.repo.SetStatus(ctx, userID, id, next)
}

// Counts aggregates the user's tasks.
func (s *TaskServiceImpl) Counts(ctx context.Context, userID string) (model.TaskCounts, error) {
	if userID == "" {
		return model.TaskCounts{}, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	return s.repo.CountByStatus(ctx, userID)
}
