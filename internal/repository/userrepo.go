// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/task-tracker/internal/model"
)

// UserRepository provides access to user accounts in the document store.
// Accounts are immutable after creation; there is no update or delete.
type UserRepository interface {
	// Create inserts a new user. Returns errs.ErrAlreadyExists when the
	// username or email is already taken.
	Create(ctx context.Context, u *model.User) error
	// GetByEmail loads a user by lower-cased email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
