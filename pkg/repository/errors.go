package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUndefinedTableCode = "42P01"

// ErrSchemaMissing indicates a query referenced a table that does not exist,
// usually because migrations have not been applied.
var ErrSchemaMissing = errors.New("database schema missing, run migrations")

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr when one is given and PostgreSQL
// undefined_table (42P01) to ErrSchemaMissing. Other errors are returned unchanged.
func MapError(err error, notFoundErr error) error {
	if err == nil {
		return nil
	}

	if notFoundErr != nil && errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTableCode {
		return errors.Join(ErrSchemaMissing, err)
	}

	return err
}
