package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxFn runs inside a transaction. Repositories called with the ctx it receives
// join that transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs a TxFn atomically. Both storage backends implement it.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...interface{}) pgx.Row
}

type pgxTxKey struct{}

// SetTx stores a pgx transaction in the context
func SetTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, pgxTxKey{}, tx)
}

// GetTx returns the pgx transaction stored in ctx, or nil
func GetTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(pgxTxKey{}).(pgx.Tx)
	return tx
}
