package repositories

import (
	"context"

	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// HolderReader defines read operations for holder records.
type HolderReader interface {
	// FindHolderByID retrieves a holder record. Returns apperrors.ErrNotFound
	// for holders that have never been touched; callers that want sparse-map
	// semantics substitute domain.NewHolder.
	FindHolderByID(ctx context.Context, holderID string) (*domain.Holder, error)

	// ListHolders retrieves holders ordered by creation time. nextToken is an
	// opaque pagination cursor; an empty returned token means no more pages.
	ListHolders(ctx context.Context, limit int, nextToken string) ([]domain.Holder, string, error)
}

// LedgerStateReader defines read operations for the global ledger row.
type LedgerStateReader interface {
	// GetLedgerState retrieves the global rate and total principal.
	GetLedgerState(ctx context.Context) (*domain.LedgerState, error)
}

// LedgerTransactionSupport defines the operations a ledger mutation performs
// under one database transaction.
type LedgerTransactionSupport interface {
	// FindHoldersByIDsForUpdate selects holder rows and locks them for update.
	// Holders with no row yet are simply absent from the returned map.
	FindHoldersByIDsForUpdate(ctx context.Context, tx pgx.Tx, holderIDs []string) (map[string]domain.Holder, error)

	// GetLedgerStateForUpdate selects and locks the global ledger row.
	GetLedgerStateForUpdate(ctx context.Context, tx pgx.Tx) (*domain.LedgerState, error)

	// ApplyChangesetInTx upserts the changeset's holder rows, adjusts total
	// principal and optionally replaces the global rate, all within tx.
	ApplyChangesetInTx(ctx context.Context, tx pgx.Tx, cs domain.LedgerChangeset) error
}

// LedgerStateInitializer seeds the global ledger row on first boot. The rate
// passed here is the highest the ledger will ever carry; every later change
// must decrease it.
type LedgerStateInitializer interface {
	InitLedgerState(ctx context.Context, initialRate decimal.Decimal, callerID string) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	HolderReader
	LedgerStateReader
	LedgerStateInitializer
	LedgerTransactionSupport
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction control.
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
