package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holder is the DB row for one ledger holder. Principal and rate are stored
// as NUMERIC(78,0); last_checkpoint is NULL until the holder's first
// realization (represented here as the zero time).
type Holder struct {
	HolderID       string          `db:"holder_id"`
	Principal      decimal.Decimal `db:"principal"`
	Rate           decimal.Decimal `db:"rate"`
	LastCheckpoint time.Time       `db:"last_checkpoint"`
	AuditFields
}

// LedgerState is the single-row table carrying the global rate and the
// running total of principal across all holders.
type LedgerState struct {
	ID             int             `db:"id"` // always 1
	GlobalRate     decimal.Decimal `db:"global_rate"`
	TotalPrincipal decimal.Decimal `db:"total_principal"`
	AuditFields
}
