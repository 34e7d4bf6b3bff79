package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/mocks"
)

// newTaskRouter mounts the handler behind chi so URL parameters resolve, with
// userID injected the way the auth middleware would.
func newTaskRouter(handler *TaskHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/tasks", handler.Create)
	r.Get("/tasks", handler.List)
	r.Get("/tasks/{id}", handler.Get)
	r.Put("/tasks/{id}", handler.Update)
	r.Delete("/tasks/{id}", handler.Delete)
	return r
}

func seedTask(t *testing.T, taskStore *mocks.MockTaskStore, userID uuid.UUID) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(userID, "Write report", "Quarterly numbers",
		time.Now().UTC().Add(48*time.Hour))
	require.NoError(t, err)
	taskStore.AddTask(task)
	return task
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	userID := uuid.New()
	router := newTaskRouter(NewTaskHandler(taskStore, nil), userID)

	endAt := time.Now().UTC().Add(24 * time.Hour)
	req := newJSONRequest(t, http.MethodPost, "/tasks", map[string]any{
		"title":       "Write report",
		"description": "Quarterly numbers",
		"priority":    "high",
		"end_at":      endAt.Format(time.RFC3339),
	})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, "Write report", resp.Title)
	assert.Equal(t, "high", resp.Priority)
	assert.Equal(t, "todo", resp.Status, "status defaults to todo")
	assert.False(t, resp.StartAt.IsZero(), "start defaults to now")
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{
			name:    "missing title",
			payload: map[string]any{"description": "Body", "end_at": time.Now().Add(time.Hour).Format(time.RFC3339)},
		},
		{
			name:    "missing end date",
			payload: map[string]any{"title": "Title", "description": "Body"},
		},
		{
			name: "unknown priority",
			payload: map[string]any{
				"title": "Title", "description": "Body",
				"priority": "urgent",
				"end_at":   time.Now().Add(time.Hour).Format(time.RFC3339),
			},
		},
		{
			name: "end before start",
			payload: map[string]any{
				"title": "Title", "description": "Body",
				"end_at": time.Now().Add(-time.Hour).Format(time.RFC3339),
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := newTaskRouter(NewTaskHandler(mocks.NewMockTaskStore(), nil), uuid.New())

			req := newJSONRequest(t, http.MethodPost, "/tasks", tc.payload)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	userID := uuid.New()
	seedTask(t, taskStore, userID)
	seedTask(t, taskStore, uuid.New()) // another user's task

	router := newTaskRouter(NewTaskHandler(taskStore, nil), userID)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp []TaskResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1, "only the caller's tasks are listed")
	assert.Equal(t, userID, resp[0].UserID)
}

func TestListTasksEmptyBoard(t *testing.T) {
	t.Parallel()

	router := newTaskRouter(NewTaskHandler(mocks.NewMockTaskStore(), nil), uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String(), "empty board is [], not null")
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	userID := uuid.New()
	task := seedTask(t, taskStore, userID)

	router := newTaskRouter(NewTaskHandler(taskStore, nil), userID)

	req := httptest.NewRequest(http.MethodGet, "/tasks/"+task.ID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, task.ID, resp.ID)
}

func TestGetTaskInvalidID(t *testing.T) {
	t.Parallel()

	router := newTaskRouter(NewTaskHandler(mocks.NewMockTaskStore(), nil), uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/tasks/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetTaskOwnedByAnotherUser(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	task := seedTask(t, taskStore, uuid.New())

	// A different caller gets 404, not 403: existence is not revealed.
	router := newTaskRouter(NewTaskHandler(taskStore, nil), uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/tasks/"+task.ID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	userID := uuid.New()
	task := seedTask(t, taskStore, userID)

	router := newTaskRouter(NewTaskHandler(taskStore, nil), userID)

	req := newJSONRequest(t, http.MethodPut, "/tasks/"+task.ID.String(), map[string]any{
		"status":   "done",
		"priority": "medium",
	})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "done", resp.Status)
	assert.Equal(t, "medium", resp.Priority)
	assert.Equal(t, task.Title, resp.Title, "absent fields are untouched")
}

func TestUpdateTaskKeepsDatesOrdered(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	userID := uuid.New()
	task := seedTask(t, taskStore, userID)
	router := newTaskRouter(NewTaskHandler(taskStore, nil), userID)

	t.Run("end patched before stored start", func(t *testing.T) {
		req := newJSONRequest(t, http.MethodPut, "/tasks/"+task.ID.String(), map[string]any{
			"end_at": task.StartAt.Add(-time.Hour).Format(time.RFC3339),
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		stored, err := taskStore.GetByID(context.Background(), userID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.EndAt, stored.EndAt, "rejected patch leaves the task untouched")
	})

	t.Run("start patched after stored end", func(t *testing.T) {
		req := newJSONRequest(t, http.MethodPut, "/tasks/"+task.ID.String(), map[string]any{
			"start_at": task.EndAt.Add(time.Hour).Format(time.RFC3339),
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("both dates moved together", func(t *testing.T) {
		newStart := task.EndAt.Add(24 * time.Hour)
		req := newJSONRequest(t, http.MethodPut, "/tasks/"+task.ID.String(), map[string]any{
			"start_at": newStart.Format(time.RFC3339),
			"end_at":   newStart.Add(2 * time.Hour).Format(time.RFC3339),
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestUpdateTaskEmptyPatch(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	userID := uuid.New()
	task := seedTask(t, taskStore, userID)

	router := newTaskRouter(NewTaskHandler(taskStore, nil), userID)

	req := newJSONRequest(t, http.MethodPut, "/tasks/"+task.ID.String(), map[string]any{})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateTaskNotFound(t *testing.T) {
	t.Parallel()

	router := newTaskRouter(NewTaskHandler(mocks.NewMockTaskStore(), nil), uuid.New())

	req := newJSONRequest(t, http.MethodPut, "/tasks/"+uuid.NewString(), map[string]any{
		"status": "done",
	})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	taskStore := mocks.NewMockTaskStore()
	userID := uuid.New()
	task := seedTask(t, taskStore, userID)

	router := newTaskRouter(NewTaskHandler(taskStore, nil), userID)

	req := httptest.NewRequest(http.MethodDelete, "/tasks/"+task.ID.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	// Deleting again reads as gone.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/tasks/"+task.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTaskHandlersRequireUser(t *testing.T) {
	t.Parallel()

	// No user in context: every endpoint refuses.
	handler := NewTaskHandler(mocks.NewMockTaskStore(), nil)
	r := chi.NewRouter()
	r.Post("/tasks", handler.Create)
	r.Get("/tasks", handler.List)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
