package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// All lookups are scoped to an owning user; a task belonging to someone else
// is indistinguishable from a missing one.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task owned by userID.
	// Returns ErrTaskNotFound if no such task exists for that user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// ListByUser retrieves all tasks owned by userID, most recently
	// created first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update applies a partial update to a task owned by userID and returns
	// the updated task. Nil patch fields are left untouched.
	// Returns ErrTaskNotFound if no such task exists for that user.
	Update(ctx context.Context, userID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task owned by userID.
	// Returns ErrTaskNotFound if no such task exists for that user.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
