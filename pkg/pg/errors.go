package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("pg.connection_failed")
	ErrFailedToParseDBConfig    = errors.New("pg.invalid_config")
	ErrHealthcheckFailed        = errors.New("pg.healthcheck_failed")
	ErrFailedToApplyMigrations  = errors.New("pg.migrations_failed")
)

// IsNotFoundError reports whether err is pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports a unique constraint violation (SQLSTATE 23505).
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolationError reports a foreign key violation (SQLSTATE 23503).
func IsForeignKeyViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
