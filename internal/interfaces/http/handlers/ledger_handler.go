package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/interfaces/http/middleware"
	"smart-bin.backend/internal/interfaces/http/response"
	"smart-bin.backend/internal/usecases"
)

// LedgerHandler handles point credits and redemptions
type LedgerHandler struct {
	ledgerUsecase *usecases.LedgerUsecase
	authUsecase   *usecases.AuthUsecase
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerUsecase *usecases.LedgerUsecase, authUsecase *usecases.AuthUsecase) *LedgerHandler {
	return &LedgerHandler{
		ledgerUsecase: ledgerUsecase,
		authUsecase:   authUsecase,
	}
}

// Credit awards points for a deposit, addressed by the bin-scanned token.
// Device-secret authenticated; bins never learn user identities.
// POST /api/v1/ledger/credits
func (h *LedgerHandler) Credit(c *gin.Context) {
	var input entities.CreditInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	entry, err := h.ledgerUsecase.CreditByToken(c.Request.Context(), input.Token, input.Points, input.Source)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entry)
}

// Redeem deducts points from a user on behalf of the calling vendor.
// The guarded balance check makes concurrent overdraws impossible.
// POST /api/v1/ledger/redemptions
func (h *LedgerHandler) Redeem(c *gin.Context) {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	var input entities.RedeemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	// Role flags are read from the row, not the token, so a revoked
	// vendor is cut off immediately.
	vendor, err := h.authUsecase.GetUserByID(c.Request.Context(), callerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	entry, err := h.ledgerUsecase.Redeem(c.Request.Context(), vendor, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entry)
}
