package repository

import (
	"context"
	"errors"

	"usermgr/internal/domain"
)

var (
	// ErrUserNotFound is returned when no row matches the requested username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when a username or email is already taken.
	ErrUserAlreadyExists = errors.New("username or email already taken")
	// ErrConnection is returned when the store cannot be reached.
	ErrConnection = errors.New("storage unreachable")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	// Reset drops the users table and recreates an empty one.
	Reset(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Search(ctx context.Context, query string) ([]domain.User, error)
	Page(ctx context.Context, limit, offset int) ([]domain.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) error
	Delete(ctx context.Context, id int64) error
}

// Session is a transaction scoped to a single command invocation.
// Anything not committed is discarded when the session is released.
type Session interface {
	Users() UserRepository
	Commit() error
	Rollback() error
}

// SessionProvider hands out scoped sessions.
type SessionProvider interface {
	WithSession(ctx context.Context, fn func(Session) error) error
}
