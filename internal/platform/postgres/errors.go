// Package postgres provides PostgreSQL implementations of the store
// interfaces, built on database/sql with the pgx driver.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
	pgCheckViolationCode      = "23514"
)

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation, such as a duplicate email address.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

// isForeignKeyViolation checks if the given error is a PostgreSQL foreign key
// constraint violation, such as a task referencing a missing user.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode
}

// isCheckViolation checks if the given error is a PostgreSQL check constraint
// violation, such as a task whose end date lands before its start date.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckViolationCode
}
