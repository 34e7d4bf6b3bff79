package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// hashed password; plaintext never reaches this layer.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address (case-insensitive).
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ApplyLockoutTransition atomically replaces the user's lockout counters,
	// but only if the persisted state still equals from. This is the
	// compare-and-set primitive that keeps concurrent failed logins from
	// under- or over-counting.
	// Returns ErrStaleLockoutState if the persisted state no longer matches,
	// and ErrUserNotFound if the user does not exist.
	ApplyLockoutTransition(ctx context.Context, id uuid.UUID, from, to domain.LockoutState) error

	// UpdateCredentialHash replaces the user's password hash and clears any
	// lockout state, recording the change time.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateCredentialHash(ctx context.Context, id uuid.UUID, hashedPassword string) error
}
