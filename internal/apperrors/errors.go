package apperrors

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation forbidden")

// ErrRateIncreaseRejected indicates a global-rate update that does not decrease the rate.
var ErrRateIncreaseRejected = errors.New("global rate may only decrease")

// ErrInsufficientBalance indicates a debit or transfer exceeding the holder's realized principal.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrClockRegression indicates that the observed time moved behind a holder's
// last checkpoint. This is an environment invariant violation and is never
// clamped away, since clamping could mask accounting corruption.
var ErrClockRegression = errors.New("clock moved before last checkpoint")

// RateIncreaseRejectedError carries the current and attempted global rates of a
// rejected rate update. Matches errors.Is(err, ErrRateIncreaseRejected).
type RateIncreaseRejectedError struct {
	Current   decimal.Decimal
	Attempted decimal.Decimal
}

func (e *RateIncreaseRejectedError) Error() string {
	return fmt.Sprintf("global rate may only decrease: current %s, attempted %s", e.Current, e.Attempted)
}

func (e *RateIncreaseRejectedError) Unwrap() error { return ErrRateIncreaseRejected }

// InsufficientBalanceError carries the realized principal available and the
// amount requested by a failed debit or transfer.
// Matches errors.Is(err, ErrInsufficientBalance).
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, requested %s", e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// ClockRegressionError carries the observed time and the checkpoint it moved behind.
// Matches errors.Is(err, ErrClockRegression).
type ClockRegressionError struct {
	Now            time.Time
	LastCheckpoint time.Time
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("clock moved before last checkpoint: now %s, last checkpoint %s",
		e.Now.Format(time.RFC3339Nano), e.LastCheckpoint.Format(time.RFC3339Nano))
}

func (e *ClockRegressionError) Unwrap() error { return ErrClockRegression }
