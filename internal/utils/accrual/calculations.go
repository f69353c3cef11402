package accrual

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Scale is the fixed-point precision of interest rates: rates are integers in
// units of 1e-18 per second. Entitlement math multiplies through by Scale and
// truncates, so results are always whole base units.
var Scale = decimal.New(1, 18)

// Entitlement computes a holder's current balance: principal plus interest
// accrued linearly over elapsed time since the holder's last checkpoint.
//
//	entitlement = principal * (Scale + rate*seconds) / Scale, truncated
//
// Pure and deterministic. decimal coefficients are arbitrary precision, so the
// product cannot silently overflow. Sub-second elapsed time does not accrue;
// whole seconds are used, matching the one-second granularity of checkpoints.
func Entitlement(principal, rate decimal.Decimal, elapsed time.Duration) (decimal.Decimal, error) {
	if principal.IsNegative() {
		return decimal.Zero, fmt.Errorf("principal must be non-negative, got %s", principal)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("rate must be non-negative, got %s", rate)
	}
	if elapsed < 0 {
		return decimal.Zero, fmt.Errorf("elapsed time must be non-negative, got %s", elapsed)
	}

	seconds := decimal.NewFromInt(int64(elapsed / time.Second))
	growth := Scale.Add(rate.Mul(seconds))
	// QuoRem with precision 0 truncates toward zero; all operands are
	// non-negative here so this is plain floor division.
	entitlement, _ := principal.Mul(growth).QuoRem(Scale, 0)
	return entitlement, nil
}

// AccruedInterest computes the interest portion of a holder's entitlement:
// Entitlement(...) - principal. Never negative.
func AccruedInterest(principal, rate decimal.Decimal, elapsed time.Duration) (decimal.Decimal, error) {
	entitlement, err := Entitlement(principal, rate, elapsed)
	if err != nil {
		return decimal.Zero, err
	}
	return entitlement.Sub(principal), nil
}

// ValidateAmount checks that a ledger amount is a non-negative whole number of
// base units. Fractional base units never exist on the ledger.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("amount must be non-negative, got %s", amount)
	}
	if !amount.IsInteger() {
		return fmt.Errorf("amount must be a whole number of base units, got %s", amount)
	}
	return nil
}
