package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

const userColumns = `id, email, first_name, last_name, age, hashed_password,
	failed_login_attempts, locked_until, password_changed_at, created_at, updated_at`

// Create implements store.UserStore.Create
// Returns store.ErrEmailExists if the email is already taken.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	query := `
		INSERT INTO users (id, email, first_name, last_name, age, hashed_password,
			failed_login_attempts, locked_until, password_changed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Age,
		user.HashedPassword,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.PasswordChangedAt,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("duplicate email during user creation",
				slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(ctx, s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.UserStore.GetByEmail
// The lookup is case-insensitive. Returns store.ErrUserNotFound if the user
// does not exist.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = LOWER($1)`
	return s.scanUser(ctx, s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresUserStore) scanUser(ctx context.Context, row *sql.Row) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var user domain.User
	var lockedUntil sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Age,
		&user.HashedPassword,
		&user.FailedLoginAttempts,
		&lockedUntil,
		&user.PasswordChangedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to scan user row", slog.String("error", err.Error()))
		return nil, err
	}

	if lockedUntil.Valid {
		t := lockedUntil.Time
		user.LockedUntil = &t
	}

	return &user, nil
}

// ApplyLockoutTransition implements store.UserStore.ApplyLockoutTransition
// It performs a compare-and-set on the lockout counters: the update only
// lands when the persisted state still equals from, so interleaved login
// attempts cannot under- or over-count toward the threshold.
// Returns store.ErrStaleLockoutState when a concurrent attempt won the race
// and store.ErrUserNotFound when the user does not exist.
func (s *PostgresUserStore) ApplyLockoutTransition(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.LockoutState,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET failed_login_attempts = $1,
			locked_until = $2,
			updated_at = $3
		WHERE id = $4
			AND failed_login_attempts = $5
			AND locked_until IS NOT DISTINCT FROM $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		to.Attempts,
		to.LockedUntil,
		time.Now().UTC(),
		id,
		from.Attempts,
		from.LockedUntil,
	)
	if err != nil {
		log.Error("failed to apply lockout transition",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		log.Debug("lockout transition applied",
			slog.String("user_id", id.String()),
			slog.Int("attempts", to.Attempts),
			slog.Bool("locked", to.LockedUntil != nil))
		return nil
	}

	// No row matched: either the user is gone or the counters moved.
	var exists bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).
		Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrUserNotFound
	}

	log.Debug("lockout transition lost a concurrent race",
		slog.String("user_id", id.String()))
	return store.ErrStaleLockoutState
}

// UpdateCredentialHash implements store.UserStore.UpdateCredentialHash
// A credential change also clears the lockout counters; the old attempt
// streak is meaningless against a new password.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) UpdateCredentialHash(
	ctx context.Context,
	id uuid.UUID,
	hashedPassword string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if hashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	now := time.Now().UTC()
	query := `
		UPDATE users
		SET hashed_password = $1,
			password_changed_at = $2,
			failed_login_attempts = 0,
			locked_until = NULL,
			updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, hashedPassword, now, id)
	if err != nil {
		log.Error("failed to update credential hash",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrUserNotFound
	}

	log.Info("credential hash updated",
		slog.String("user_id", id.String()))
	return nil
}
