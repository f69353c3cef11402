package dto

import (
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreditRequest defines the data needed to credit a holder.
type CreditRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	// Optional per-credit rate; when absent the holder keeps or inherits the
	// global rate.
	RateOverride *decimal.Decimal `json:"rateOverride"`
}

// DebitRequest defines the data needed to debit a holder.
type DebitRequest struct {
	Amount decimal.Decimal `json:"amount"`
	// WithdrawAll debits the holder's full accrued entitlement; Amount is
	// ignored when set.
	WithdrawAll bool `json:"withdrawAll"`
}

// TransferRequest defines the data needed to move value between holders.
type TransferRequest struct {
	ToHolderID string          `json:"toHolderID" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	// TransferAll moves the sender's full accrued entitlement; Amount is
	// ignored when set.
	TransferAll bool `json:"transferAll"`
}

// SetGlobalRateRequest defines the data needed to lower the global rate.
type SetGlobalRateRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

// TransferResponse defines the data returned after a transfer.
type TransferResponse struct {
	From   HolderResponse  `json:"from"`
	To     HolderResponse  `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// ToTransferResponse converts a domain.TransferResult to TransferResponse DTO
func ToTransferResponse(res *domain.TransferResult) TransferResponse {
	return TransferResponse{
		From:   ToHolderResponse(&res.From),
		To:     ToHolderResponse(&res.To),
		Amount: res.Amount,
	}
}

// GlobalRateResponse defines the data returned for the global rate query.
type GlobalRateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

// TotalSupplyResponse defines the data returned for the total supply query.
type TotalSupplyResponse struct {
	TotalSupply decimal.Decimal `json:"totalSupply"`
	AsOf        time.Time       `json:"asOf"`
}
