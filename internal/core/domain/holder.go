package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holder is one account on the interest-bearing ledger.
//
// Principal is the number of base units actually credited to the holder,
// excluding interest accrued since LastCheckpoint. Rate is the per-second
// interest rate locked in for this holder, expressed in 1e-18 scaled units
// (a rate of 5e10 means 5e10/1e18 per second). Both are integer-valued
// decimals; fractional base units never exist on the ledger.
//
// A holder record springs into existence on first credit. Principal may fall
// back to zero but the record is never deleted; accrual on zero principal
// yields zero, so stale rate/checkpoint metadata is harmless.
type Holder struct {
	HolderID       string          `json:"holderID"`
	Principal      decimal.Decimal `json:"principal"`
	Rate           decimal.Decimal `json:"rate"`
	LastCheckpoint time.Time       `json:"lastCheckpoint"`
	AuditFields
}

// NewHolder returns the default record for a holder that has never been
// touched: zero principal, zero rate, zero checkpoint. Sparse-map semantics;
// absence in storage and this record are indistinguishable to callers.
func NewHolder(holderID string) Holder {
	return Holder{
		HolderID:  holderID,
		Principal: decimal.Zero,
		Rate:      decimal.Zero,
	}
}

// LedgerState is the single global row of the ledger: the current rate applied
// to new holders and the running sum of all holders' principal.
//
// GlobalRate is monotonically non-increasing for the life of the ledger.
// TotalPrincipal tracks credits minus debits plus realized interest; it never
// includes accrued-but-unrealized interest.
type LedgerState struct {
	GlobalRate     decimal.Decimal `json:"globalRate"`
	TotalPrincipal decimal.Decimal `json:"totalPrincipal"`
	AuditFields
}

// AmountMax is the sentinel a caller passes to debit or transfer the holder's
// full current entitlement. It is replaced by the post-realization principal
// before any balance check runs.
var AmountMax = decimal.NewFromInt(-1)

// TransferResult carries both holder records after a completed transfer.
// From and To alias the same record for self-transfers.
type TransferResult struct {
	From   Holder          `json:"from"`
	To     Holder          `json:"to"`
	Amount decimal.Decimal `json:"amount"` // the effective amount moved, after sentinel resolution
}

// LedgerChangeset is one atomic mutation of the ledger: the holder rows to
// upsert, the change to total principal, and optionally a new global rate.
// Repositories must apply the whole changeset or none of it.
type LedgerChangeset struct {
	Holders     []Holder
	SupplyDelta decimal.Decimal
	GlobalRate  *decimal.Decimal
	UpdatedAt   time.Time
	UpdatedBy   string
}
