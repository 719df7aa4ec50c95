package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// UniqueViolation reports whether err is a unique constraint violation and,
// if so, which constraint fired. Both supported drivers are recognised.
func UniqueViolation(err error) (constraint string, ok bool) {
	code, constraint := sqlState(err)
	if code != uniqueViolation {
		return "", false
	}
	return constraint, true
}

// ForeignKeyViolation reports whether err is a foreign key violation, such as
// a row referencing a parent deleted in a concurrent transaction.
func ForeignKeyViolation(err error) bool {
	code, _ := sqlState(err)
	return code == foreignKeyViolation
}

func sqlState(err error) (code, constraint string) {
	if err == nil {
		return "", ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}

	return "", ""
}
