package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, task *domain.Task) error
	GetByIDFn    func(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	UpdateFn     func(ctx context.Context, userID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteFn     func(ctx context.Context, userID, id uuid.UUID) error

	// Data for the default in-memory implementation
	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task

	// Error returned by the default Create when set
	CreateError error
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// AddTask seeds the in-memory map.
func (m *MockTaskStore) AddTask(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task
}

// Create implements the store.TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the store.TaskStore interface. Like the real store, a
// task owned by a different user reads as not found.
func (m *MockTaskStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// ListByUser implements the store.TaskStore interface
func (m *MockTaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var tasks []*domain.Task
	for _, task := range m.Tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}

	// Newest first, matching the real store's ordering.
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// Update implements the store.TaskStore interface
func (m *MockTaskStore) Update(
	ctx context.Context,
	userID, id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, userID, id, patch)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}

	// Merge onto a copy first, like the real store's check constraint: an
	// invalid merged result must leave the stored task untouched.
	merged := *task
	patch.ApplyTo(&merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	merged.UpdatedAt = time.Now().UTC()

	m.Tasks[id] = &merged
	return &merged, nil
}

// Delete implements the store.TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.Tasks[id]
	if !exists || task.UserID != userID {
		return store.ErrTaskNotFound
	}

	delete(m.Tasks, id)
	return nil
}
