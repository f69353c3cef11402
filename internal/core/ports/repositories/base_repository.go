package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management.
//
// The in-memory driver satisfies this with a nil pgx.Tx; its *InTx methods
// ignore the handle and guard with their own lock instead.
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction. Safe to defer after Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
