// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Task statuses. Tasks start as pending and toggle between the two.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted
}

// User is an account record stored in the document store.
// Passwords are stored only as bcrypt hashes; email is kept lower-cased.
type User struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	PwdHash   []byte    `bson:"pwd_hash"`
	CreatedAt time.Time `bson:"created_at"`
}

// Identity is the authenticated-user tuple carried by a valid session.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// Identity returns the session identity for a user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Email: u.Email}
}

// Task is a single to-do item owned by exactly one user.
// UserID is an opaque reference into the document store; the two entities
// live in different engines so there is no cross-store FK.
type Task struct {
	ID          uuid.UUID
	UserID      string
	Title       string
	Description string
	DueDate     *time.Time // nil when no due date is set
	Status      string
	CreatedAt   time.Time
}

// TaskCounts aggregates a user's tasks for the dashboard.
type TaskCounts struct {
	Total     int
	Completed int
	Pending   int
}
