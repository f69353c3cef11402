package dto

import (
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// HolderResponse defines the data returned for a holder position.
// Mirrors domain.Holder.
type HolderResponse struct {
	HolderID       string          `json:"holderID"`
	Principal      decimal.Decimal `json:"principal"`
	Rate           decimal.Decimal `json:"rate"`
	LastCheckpoint *time.Time      `json:"lastCheckpoint,omitempty"` // Nil until the first checkpoint
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy  string          `json:"lastUpdatedBy"`
}

// ToHolderResponse converts a domain.Holder to HolderResponse DTO
func ToHolderResponse(h *domain.Holder) HolderResponse {
	resp := HolderResponse{
		HolderID:      h.HolderID,
		Principal:     h.Principal,
		Rate:          h.Rate,
		CreatedAt:     h.CreatedAt,
		CreatedBy:     h.CreatedBy,
		LastUpdatedAt: h.LastUpdatedAt,
		LastUpdatedBy: h.LastUpdatedBy,
	}
	if !h.LastCheckpoint.IsZero() {
		cp := h.LastCheckpoint
		resp.LastCheckpoint = &cp
	}
	return resp
}

// ToListHolderResponse converts a slice of domain.Holder to HolderResponse DTOs
func ToListHolderResponse(holders []domain.Holder) []HolderResponse {
	res := make([]HolderResponse, len(holders))
	for i, h := range holders {
		res[i] = ToHolderResponse(&h)
	}
	return res
}

// ListHoldersParams defines query parameters for listing holders.
type ListHoldersParams struct {
	Limit     int    `form:"limit,default=20"`
	NextToken string `form:"nextToken"`
}

// ListHoldersResponse wraps a page of holders.
type ListHoldersResponse struct {
	Holders   []HolderResponse `json:"holders"`
	NextToken string           `json:"nextToken,omitempty"`
}

// EntitlementResponse defines the data returned for an entitlement query.
type EntitlementResponse struct {
	HolderID    string          `json:"holderID"`
	Entitlement decimal.Decimal `json:"entitlement"`
	AsOf        time.Time       `json:"asOf"`
}

// PrincipalResponse defines the data returned for a principal query.
type PrincipalResponse struct {
	HolderID  string          `json:"holderID"`
	Principal decimal.Decimal `json:"principal"`
}

// RateResponse defines the data returned for a holder rate query.
type RateResponse struct {
	HolderID string          `json:"holderID"`
	Rate     decimal.Decimal `json:"rate"`
}
