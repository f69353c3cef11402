package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/dto"
	"github.com/accrualfi/accrual_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for ledger mutations and global state.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// RegisterLedgerRoutes registers ledger-level routes. Mutations additionally
// require the operator role.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, operatorOnly gin.HandlerFunc) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/rate", h.getGlobalRate)
		ledger.PUT("/rate", operatorOnly, h.setGlobalRate)
		ledger.GET("/supply", h.getTotalSupply)
	}

	holders := rg.Group("/holders")
	{
		holders.POST("/:id/credit", operatorOnly, h.credit)
		holders.POST("/:id/debit", operatorOnly, h.debit)
		holders.POST("/:id/transfer", operatorOnly, h.transfer)
	}
}

// getGlobalRate godoc
// @Summary Get the global accrual rate
// @Description Returns the per-second rate currently assigned to new holders
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.GlobalRateResponse
// @Failure 500 {object} map[string]string "Failed to retrieve global rate"
// @Security BearerAuth
// @Router /ledger/rate [get]
func (h *ledgerHandler) getGlobalRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rate, err := h.ledgerService.GlobalRate(c.Request.Context())
	if err != nil {
		logger.Error("Failed to get global rate from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve global rate"})
		return
	}

	c.JSON(http.StatusOK, dto.GlobalRateResponse{Rate: rate})
}

// setGlobalRate godoc
// @Summary Lower the global accrual rate
// @Description Replaces the global rate. The new rate must be lower than the current one.
// @Tags ledger
// @Accept json
// @Produce json
// @Param rate body dto.SetGlobalRateRequest true "New global rate"
// @Success 200 {object} dto.GlobalRateResponse
// @Failure 400 {object} map[string]string "Invalid input or rate not decreasing"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to set global rate"
// @Security BearerAuth
// @Router /ledger/rate [put]
func (h *ledgerHandler) setGlobalRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SetGlobalRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetGlobalRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	callerID, ok := middleware.GetCallerIDFromContext(c)
	if !ok {
		logger.Error("Caller ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received request to set global rate", slog.String("new_rate", req.Rate.String()))

	state, err := h.ledgerService.SetGlobalRate(c.Request.Context(), req.Rate, callerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateIncreaseRejected) || errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Rate change rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to set global rate in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set global rate"})
		}
		return
	}

	logger.Info("Global rate updated", slog.String("rate", state.GlobalRate.String()))
	c.JSON(http.StatusOK, dto.GlobalRateResponse{Rate: state.GlobalRate})
}

// getTotalSupply godoc
// @Summary Get the total principal supply
// @Description Returns the sum of all holders' realized principal
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.TotalSupplyResponse
// @Failure 500 {object} map[string]string "Failed to retrieve total supply"
// @Security BearerAuth
// @Router /ledger/supply [get]
func (h *ledgerHandler) getTotalSupply(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	supply, err := h.ledgerService.TotalSupply(c.Request.Context())
	if err != nil {
		logger.Error("Failed to get total supply from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve total supply"})
		return
	}

	c.JSON(http.StatusOK, dto.TotalSupplyResponse{TotalSupply: supply})
}

// credit godoc
// @Summary Credit a holder
// @Description Realizes pending interest for the holder, then adds the amount to their principal. A rate override may be supplied for holders starting from zero.
// @Tags holders
// @Accept json
// @Produce json
// @Param id path string true "Holder ID"
// @Param credit body dto.CreditRequest true "Credit details"
// @Success 200 {object} dto.HolderResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to credit holder"
// @Security BearerAuth
// @Router /holders/{id}/credit [post]
func (h *ledgerHandler) credit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holderID := c.Param("id")

	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Credit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	callerID, ok := middleware.GetCallerIDFromContext(c)
	if !ok {
		logger.Error("Caller ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("holder_id", holderID))
	logger.Info("Received request to credit holder", slog.String("amount", req.Amount.String()))

	holder, err := h.ledgerService.Credit(c.Request.Context(), holderID, req.Amount, req.RateOverride, callerID)
	if err != nil {
		h.respondMutationError(c, logger, err, "Failed to credit holder")
		return
	}

	logger.Info("Holder credited", slog.String("principal", holder.Principal.String()))
	c.JSON(http.StatusOK, dto.ToHolderResponse(holder))
}

// debit godoc
// @Summary Debit a holder
// @Description Realizes pending interest for the holder, then subtracts the amount from their principal. Set withdrawAll to drain the full entitlement.
// @Tags holders
// @Accept json
// @Produce json
// @Param id path string true "Holder ID"
// @Param debit body dto.DebitRequest true "Debit details"
// @Success 200 {object} dto.HolderResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Failure 500 {object} map[string]string "Failed to debit holder"
// @Security BearerAuth
// @Router /holders/{id}/debit [post]
func (h *ledgerHandler) debit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holderID := c.Param("id")

	var req dto.DebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Debit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	callerID, ok := middleware.GetCallerIDFromContext(c)
	if !ok {
		logger.Error("Caller ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	amount := req.Amount
	if req.WithdrawAll {
		amount = domain.AmountMax
	}

	logger = logger.With(slog.String("holder_id", holderID))
	logger.Info("Received request to debit holder", slog.Bool("withdraw_all", req.WithdrawAll))

	holder, err := h.ledgerService.Debit(c.Request.Context(), holderID, amount, callerID)
	if err != nil {
		h.respondMutationError(c, logger, err, "Failed to debit holder")
		return
	}

	logger.Info("Holder debited", slog.String("principal", holder.Principal.String()))
	c.JSON(http.StatusOK, dto.ToHolderResponse(holder))
}

// transfer godoc
// @Summary Transfer between holders
// @Description Realizes pending interest for both holders, then moves the amount from the path holder to the target. Set transferAll to move the full entitlement.
// @Tags holders
// @Accept json
// @Produce json
// @Param id path string true "Sending holder ID"
// @Param transfer body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Failure 500 {object} map[string]string "Failed to transfer"
// @Security BearerAuth
// @Router /holders/{id}/transfer [post]
func (h *ledgerHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromID := c.Param("id")

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	callerID, ok := middleware.GetCallerIDFromContext(c)
	if !ok {
		logger.Error("Caller ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	amount := req.Amount
	if req.TransferAll {
		amount = domain.AmountMax
	}

	logger = logger.With(slog.String("from_holder_id", fromID), slog.String("to_holder_id", req.ToHolderID))
	logger.Info("Received request to transfer", slog.Bool("transfer_all", req.TransferAll))

	result, err := h.ledgerService.Transfer(c.Request.Context(), fromID, req.ToHolderID, amount, callerID)
	if err != nil {
		h.respondMutationError(c, logger, err, "Failed to transfer")
		return
	}

	logger.Info("Transfer completed", slog.String("amount", result.Amount.String()))
	c.JSON(http.StatusOK, dto.ToTransferResponse(result))
}

// respondMutationError maps ledger service errors to HTTP responses.
func (h *ledgerHandler) respondMutationError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		logger.Warn("Insufficient balance", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrClockRegression):
		logger.Error("Clock regression detected", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
