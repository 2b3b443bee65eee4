// Package service contains application services for authentication and tasks.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/task-tracker/internal/crypto"
	"github.com/and161185/task-tracker/internal/errs"
	"github.com/and161185/task-tracker/internal/limiter"
	"github.com/and161185/task-tracker/internal/model"
	"github.com/and161185/task-tracker/internal/repository"
)

// AuthService defines registration and login operations.
type AuthService interface {
	// Register creates a new user with a bcrypt-hashed password and returns
	// the identity to start a session with.
	Register(ctx context.Context, username, email, password string) (model.Identity, error)
	// Login applies rate limiting and authenticates by email and password.
	Login(ctx context.Context, email, password, ip string) (model.Identity, error)
}

type AuthServiceImpl struct {
	users repository.UserRepository
	lim   limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, lim: lim}
}

// Register validates the fields, hashes the password and creates the account.
// The repository reports username/email collisions as errs.ErrAlreadyExists.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (model.Identity, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return model.Identity{}, fmt.Errorf("%w: all fields are required", errs.ErrValidation)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return model.Identity{}, err
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return model.Identity{}, err
	}

	u := &model.User{
		ID:        uid.String(),
		Username:  username,
		Email:     email,
		PwdHash:   hash,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.Identity{}, err
	}
	return u.Identity(), nil
}

// Login authenticates with rate limiting by (email, ip). Unknown email and
// wrong password resolve to the same errs.ErrInvalidCredentials so account
// existence is never revealed; repo lookup errors are masked the same way.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (model.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.Identity{}, errs.ErrInvalidCredentials
	}

	ipHash := limiter.HashIP(ip)
	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Identity{}, err
	}
	if !allowed {
		return model.Identity{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Identity{}, errs.ErrRateLimited
		}
		// unknown email, wrong password and storage errors all look the same
		return model.Identity{}, errs.ErrInvalidCredentials
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	return u.Identity(), nil
}
