package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"sanctum/internal/domain/repositories"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txContextKey struct{}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func txFrom(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txContextKey{}).(*sql.Tx)
	return tx
}

// executor returns the transaction carried by ctx, or the database itself
func (s *Store) executor(ctx context.Context) dbtx {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return s.db
}

// TransactionManager runs functions inside a SQLite transaction
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager over the store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx executes fn within a transaction, joining one already present in ctx.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(withTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
