package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string `json:"last_name"  validate:"required,min=2,max=50"`
	Email     string `json:"email"      validate:"required,email"`
	Age       int    `json:"age"        validate:"required,gte=12,lte=120"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserResponse is the sanitized account projection returned to clients.
// It never includes the credential hash or lockout counters.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
}

// NewUserResponse builds the sanitized projection of a user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Age:       user.Age,
	}
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    UserResponse `json:"user"`
	// Redirect tells browser clients where to navigate next.
	Redirect string `json:"redirect,omitempty"`
}

// VerifyResponse defines the response for the token verification endpoint.
type VerifyResponse struct {
	Valid bool         `json:"valid"`
	User  UserResponse `json:"user"`
}

// ForgotPasswordRequest defines the payload for the forgot-password endpoint.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest defines the payload for the reset-password endpoint.
type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// MessageResponse is a bare acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required"`
	Description string     `json:"description" validate:"required"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      string     `json:"status"      validate:"omitempty,oneof=todo inProgress done"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       time.Time  `json:"end_at"      validate:"required"`
}

// UpdateTaskRequest defines the payload for partially updating a task.
// Absent fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      *string    `json:"status"   validate:"omitempty,oneof=todo inProgress done"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTaskResponse builds the response projection of a task.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		StartAt:     task.StartAt,
		EndAt:       task.EndAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
