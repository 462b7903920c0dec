package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories branch on
const (
	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

// IsPgDuplicateError reports a primary key clash, which for the files table
// means a client re-sent a create for an id that already exists
func IsPgDuplicateError(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// IsPgUndefinedTable reports a query against a table that was never created
func IsPgUndefinedTable(err error) bool {
	return pgCode(err) == codeUndefinedTable
}

// IsPgNoRowsError reports whether a QueryRow scan found nothing
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
