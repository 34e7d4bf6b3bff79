package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

const taskColumns = `id, user_id, title, description, priority, status,
	start_at, end_at, created_at, updated_at`

// Create implements store.TaskStore.Create
// Returns validation errors from the domain Task if data is invalid.
// Returns store.ErrInvalidEntity if the owning user does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, priority, status,
			start_at, end_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.StartAt,
		task.EndAt,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if no task with that ID is owned by userID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	row := s.db.QueryRowContext(ctx, query, id, userID)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListByUser implements store.TaskStore.ListByUser
func (s *PostgresTaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update
// Only the populated fields of the patch are changed; everything else keeps
// its stored value. Returns store.ErrTaskNotFound if no task with that ID is
// owned by userID, and domain.ErrTaskEndBeforeStart if the merged row would
// end before it starts.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	userID, id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var priorityArg, statusArg *string
	if patch.Priority != nil {
		v := string(*patch.Priority)
		priorityArg = &v
	}
	if patch.Status != nil {
		v := string(*patch.Status)
		statusArg = &v
	}

	query := `
		UPDATE tasks
		SET title = COALESCE($1::text, title),
			description = COALESCE($2::text, description),
			priority = COALESCE($3::text, priority),
			status = COALESCE($4::text, status),
			start_at = COALESCE($5::timestamptz, start_at),
			end_at = COALESCE($6::timestamptz, end_at),
			updated_at = $7
		WHERE id = $8 AND user_id = $9
		RETURNING ` + taskColumns
	row := s.db.QueryRowContext(
		ctx,
		query,
		patch.Title,
		patch.Description,
		priorityArg,
		statusArg,
		patch.StartAt,
		patch.EndAt,
		time.Now().UTC(),
		id,
		userID,
	)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		// The tasks_dates_check constraint rejects a merge whose end date
		// lands before the stored (or patched) start date.
		if isCheckViolation(err) {
			return nil, domain.ErrTaskEndBeforeStart
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	log.Debug("task updated",
		slog.String("task_id", id.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if no task with that ID is owned by userID.
func (s *PostgresTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// scanner matches *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	var priority, status string

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&priority,
		&status,
		&task.StartAt,
		&task.EndAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	return &task, nil
}
