package database

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eventmarket/backend/pkg/apperr"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Classify turns missing rows into NotFound and unique violations into Conflict.
// Other errors are returned unchanged.
func Classify(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperr.Wrap(apperr.NotFound, err, what+" not found")
	case IsUniqueViolation(err):
		return apperr.Wrap(apperr.Conflict, err, what+" already exists")
	default:
		return err
	}
}
