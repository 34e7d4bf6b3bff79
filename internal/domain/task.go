package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task validation errors
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwner     = errors.New("task owner cannot be empty")
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrEmptyTaskBody      = errors.New("task description cannot be empty")
	ErrMissingTaskEnd     = errors.New("task end date is required")
	ErrTaskEndBeforeStart = errors.New("task end date cannot be before its start date")
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Valid task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether the priority is one of the known values.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// TaskStatus represents where a task sits on the board.
type TaskStatus string

// Valid task statuses.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "inProgress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task represents a single unit of work owned by a user.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	StartAt     time.Time    `json:"start_at"`
	EndAt       time.Time    `json:"end_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a task for the given owner, applying the defaults the board
// expects: priority low, status todo, start now.
func NewTask(userID uuid.UUID, title, description string, endAt time.Time) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Priority:    TaskPriorityLow,
		Status:      TaskStatusTodo,
		StartAt:     now,
		EndAt:       endAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if t.Description == "" {
		return ErrEmptyTaskBody
	}
	if !t.Priority.Valid() {
		return ErrInvalidTaskPriority
	}
	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	if t.EndAt.IsZero() {
		return ErrMissingTaskEnd
	}
	if t.EndAt.Before(t.StartAt) {
		return ErrTaskEndBeforeStart
	}
	return nil
}

// TaskPatch describes a partial update to a task. Nil fields are left
// untouched; the store applies only the populated ones.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	Status      *TaskStatus
	StartAt     *time.Time
	EndAt       *time.Time
}

// Empty reports whether the patch would change nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.StartAt == nil && p.EndAt == nil
}

// ApplyTo merges the populated fields of the patch into the task. The caller
// is expected to Validate the merged result; a patch that is valid in
// isolation can still break a cross-field rule such as EndAt >= StartAt.
func (p TaskPatch) ApplyTo(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.StartAt != nil {
		t.StartAt = *p.StartAt
	}
	if p.EndAt != nil {
		t.EndAt = *p.EndAt
	}
}

// Validate checks the populated fields of the patch.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTaskTitle
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return ErrEmptyTaskBody
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ErrInvalidTaskPriority
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	return nil
}
