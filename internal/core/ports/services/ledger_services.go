package services

import (
	"context"

	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines the read-only ledger queries. None of these mutate
// state; entitlement is computed live from the stored checkpoint.
type LedgerReaderSvc interface {
	// GetHolder retrieves a holder's full record. Returns
	// apperrors.ErrNotFound for holders that have never been touched.
	GetHolder(ctx context.Context, holderID string) (*domain.Holder, error)

	// EntitlementOf returns principal plus interest accrued since the last
	// checkpoint. Zero for holders that have never been touched.
	EntitlementOf(ctx context.Context, holderID string) (decimal.Decimal, error)

	// PrincipalOf returns the stored principal, excluding unrealized interest.
	PrincipalOf(ctx context.Context, holderID string) (decimal.Decimal, error)

	// RateOf returns the holder's locked-in per-second rate.
	RateOf(ctx context.Context, holderID string) (decimal.Decimal, error)

	// GlobalRate returns the rate currently assigned to new holders.
	GlobalRate(ctx context.Context) (decimal.Decimal, error)

	// TotalSupply returns the sum of all holders' principal.
	TotalSupply(ctx context.Context) (decimal.Decimal, error)

	// ListHolders returns a page of holder records and the next page token.
	ListHolders(ctx context.Context, limit int, nextToken string) ([]domain.Holder, string, error)
}

// LedgerWriterSvc defines the mutating ledger operations. Every operation
// realizes pending interest for the holders it touches before mutating
// principal, and is atomic as a whole.
type LedgerWriterSvc interface {
	// SetGlobalRate replaces the global rate. The new rate must decrease it
	// (strictly, unless configured otherwise) or the call fails with
	// apperrors.ErrRateIncreaseRejected.
	SetGlobalRate(ctx context.Context, newRate decimal.Decimal, callerID string) (*domain.LedgerState, error)

	// Credit realizes pending interest, locks the holder's rate if their
	// post-realization principal is zero (rateOverride if given, else the
	// current global rate), then adds amount to principal.
	Credit(ctx context.Context, holderID string, amount decimal.Decimal, rateOverride *decimal.Decimal, callerID string) (*domain.Holder, error)

	// Debit realizes pending interest, then subtracts amount from principal.
	// domain.AmountMax drains the full entitlement.
	Debit(ctx context.Context, holderID string, amount decimal.Decimal, callerID string) (*domain.Holder, error)

	// Transfer realizes pending interest for both holders, applies rate
	// inheritance when the receiver holds zero entitlement, then moves
	// principal. domain.AmountMax moves the sender's full entitlement.
	Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, callerID string) (*domain.TransferResult, error)
}

// LedgerSvcFacade combines ledger reads and writes.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
