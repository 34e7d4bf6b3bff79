package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/store"
)

// TaskHandler handles task CRUD API requests. Every operation is scoped to
// the authenticated user; another user's task reads as not found.
type TaskHandler struct {
	taskStore store.TaskStore
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskStore store.TaskStore, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		taskStore: taskStore,
		validator: validator.New(),
		logger:    log.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := domain.NewTask(userID, req.Title, req.Description, req.EndAt)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return
	}
	if req.Priority != "" {
		task.Priority = domain.TaskPriority(req.Priority)
	}
	if req.Status != "" {
		task.Status = domain.TaskStatus(req.Status)
	}
	if req.StartAt != nil {
		task.StartAt = *req.StartAt
	}
	if err := task.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	tasks, err := h.taskStore.ListByUser(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	// An empty board serializes as [], not null.
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	taskID, err := taskIDFromPath(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to get task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	taskID, err := taskIDFromPath(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}

	if patch.Empty() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No fields to update")
		return
	}
	if err := patch.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return
	}

	task, err := h.taskStore.Update(r.Context(), userID, taskID, patch)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		// Cross-field date failures only surface once the patch is merged
		// with the stored row.
		if errors.Is(err, domain.ErrTaskEndBeforeStart) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to update task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in request context")
		return
	}

	taskID, err := taskIDFromPath(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.taskStore.Delete(r.Context(), userID, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to delete task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Task deleted successfully",
	})
}

// taskIDFromPath parses the {id} URL parameter.
func taskIDFromPath(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
