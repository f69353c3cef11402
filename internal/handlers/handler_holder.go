package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/dto"
	"github.com/accrualfi/accrual_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// holderHandler handles HTTP requests for holder queries.
type holderHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newHolderHandler creates a new holderHandler.
func newHolderHandler(ls portssvc.LedgerSvcFacade) *holderHandler {
	return &holderHandler{
		ledgerService: ls,
	}
}

// RegisterHolderRoutes registers read-only holder routes.
func RegisterHolderRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newHolderHandler(ledgerService)

	holders := rg.Group("/holders")
	{
		holders.GET("", h.listHolders)
		holders.GET("/:id", h.getHolder)
		holders.GET("/:id/entitlement", h.getEntitlement)
		holders.GET("/:id/principal", h.getPrincipal)
		holders.GET("/:id/rate", h.getRate)
	}
}

// getHolder godoc
// @Summary Get a holder by ID
// @Description Retrieves the stored record for a holder
// @Tags holders
// @Produce json
// @Param id path string true "Holder ID"
// @Success 200 {object} dto.HolderResponse
// @Failure 404 {object} map[string]string "Holder not found"
// @Failure 500 {object} map[string]string "Failed to retrieve holder"
// @Security BearerAuth
// @Router /holders/{id} [get]
func (h *holderHandler) getHolder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holderID := c.Param("id")

	holder, err := h.ledgerService.GetHolder(c.Request.Context(), holderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Holder not found", slog.String("holder_id", holderID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Holder not found"})
		} else {
			logger.Error("Failed to get holder from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve holder"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToHolderResponse(holder))
}

// listHolders godoc
// @Summary List holders
// @Description Retrieves a page of holder records ordered by creation time
// @Tags holders
// @Produce json
// @Param limit query int false "Limit number of results" default(20)
// @Param nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListHoldersResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list holders"
// @Security BearerAuth
// @Router /holders [get]
func (h *holderHandler) listHolders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListHoldersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListHolders", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	holders, nextToken, err := h.ledgerService.ListHolders(c.Request.Context(), params.Limit, params.NextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list holders from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list holders"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ListHoldersResponse{
		Holders:   dto.ToListHolderResponse(holders),
		NextToken: nextToken,
	})
}

// getEntitlement godoc
// @Summary Get a holder's current entitlement
// @Description Returns principal plus interest accrued since the holder's last checkpoint. Zero for unknown holders.
// @Tags holders
// @Produce json
// @Param id path string true "Holder ID"
// @Success 200 {object} dto.EntitlementResponse
// @Failure 500 {object} map[string]string "Failed to compute entitlement"
// @Security BearerAuth
// @Router /holders/{id}/entitlement [get]
func (h *holderHandler) getEntitlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holderID := c.Param("id")

	entitlement, err := h.ledgerService.EntitlementOf(c.Request.Context(), holderID)
	if err != nil {
		logger.Error("Failed to compute entitlement", slog.String("holder_id", holderID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute entitlement"})
		return
	}

	c.JSON(http.StatusOK, dto.EntitlementResponse{
		HolderID:    holderID,
		Entitlement: entitlement,
		AsOf:        time.Now().UTC(),
	})
}

// getPrincipal godoc
// @Summary Get a holder's stored principal
// @Description Returns the realized principal, excluding unrealized interest. Zero for unknown holders.
// @Tags holders
// @Produce json
// @Param id path string true "Holder ID"
// @Success 200 {object} dto.PrincipalResponse
// @Failure 500 {object} map[string]string "Failed to retrieve principal"
// @Security BearerAuth
// @Router /holders/{id}/principal [get]
func (h *holderHandler) getPrincipal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holderID := c.Param("id")

	principal, err := h.ledgerService.PrincipalOf(c.Request.Context(), holderID)
	if err != nil {
		logger.Error("Failed to get principal", slog.String("holder_id", holderID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve principal"})
		return
	}

	c.JSON(http.StatusOK, dto.PrincipalResponse{HolderID: holderID, Principal: principal})
}

// getRate godoc
// @Summary Get a holder's locked rate
// @Description Returns the per-second rate locked in for the holder. Zero for unknown holders.
// @Tags holders
// @Produce json
// @Param id path string true "Holder ID"
// @Success 200 {object} dto.RateResponse
// @Failure 500 {object} map[string]string "Failed to retrieve rate"
// @Security BearerAuth
// @Router /holders/{id}/rate [get]
func (h *holderHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	holderID := c.Param("id")

	rate, err := h.ledgerService.RateOf(c.Request.Context(), holderID)
	if err != nil {
		logger.Error("Failed to get rate", slog.String("holder_id", holderID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rate"})
		return
	}

	c.JSON(http.StatusOK, dto.RateResponse{HolderID: holderID, Rate: rate})
}
