package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn                 func(ctx context.Context, user *domain.User) error
	GetByIDFn                func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn             func(ctx context.Context, email string) (*domain.User, error)
	ApplyLockoutTransitionFn func(ctx context.Context, id uuid.UUID, from, to domain.LockoutState) error
	UpdateCredentialHashFn   func(ctx context.Context, id uuid.UUID, hashedPassword string) error

	// Data for the default in-memory implementation, keyed by lowercase email
	mu    sync.Mutex
	Users map[string]*domain.User

	// Errors returned by the default implementation when set
	CreateError     error
	GetByEmailError error

	// Call tracking for lockout transitions
	TransitionCalls []LockoutTransitionCall
}

// LockoutTransitionCall records one ApplyLockoutTransition invocation.
type LockoutTransitionCall struct {
	UserID uuid.UUID
	From   domain.LockoutState
	To     domain.LockoutState
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]*domain.User),
	}
}

// AddUser seeds the in-memory map, mirroring the store's lowercase-email
// lookup behavior.
func (m *MockUserStore) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[strings.ToLower(user.Email)] = user
}

// Create implements the store.UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := m.Users[key]; exists {
		return store.ErrEmailExists
	}

	m.Users[key] = user
	return nil
}

// GetByID implements the store.UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, store.ErrUserNotFound
}

// GetByEmail implements the store.UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	if m.GetByEmailError != nil {
		return nil, m.GetByEmailError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.Users[strings.ToLower(email)]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	return user, nil
}

// ApplyLockoutTransition implements the store.UserStore interface. The
// default implementation enforces the same compare-and-set semantics as the
// real store so concurrency tests behave faithfully.
func (m *MockUserStore) ApplyLockoutTransition(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.LockoutState,
) error {
	if m.ApplyLockoutTransitionFn != nil {
		return m.ApplyLockoutTransitionFn(ctx, id, from, to)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TransitionCalls = append(m.TransitionCalls, LockoutTransitionCall{
		UserID: id,
		From:   from,
		To:     to,
	})

	for _, user := range m.Users {
		if user.ID != id {
			continue
		}

		if user.FailedLoginAttempts != from.Attempts ||
			!equalLockTimes(user.LockedUntil, from.LockedUntil) {
			return store.ErrStaleLockoutState
		}

		user.FailedLoginAttempts = to.Attempts
		user.LockedUntil = to.LockedUntil
		return nil
	}

	return store.ErrUserNotFound
}

// UpdateCredentialHash implements the store.UserStore interface
func (m *MockUserStore) UpdateCredentialHash(
	ctx context.Context,
	id uuid.UUID,
	hashedPassword string,
) error {
	if m.UpdateCredentialHashFn != nil {
		return m.UpdateCredentialHashFn(ctx, id, hashedPassword)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.Users {
		if user.ID != id {
			continue
		}

		user.HashedPassword = hashedPassword
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
		user.PasswordChangedAt = time.Now().UTC()
		return nil
	}

	return store.ErrUserNotFound
}

func equalLockTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
