package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/interfaces/http/middleware"
	"smart-bin.backend/internal/interfaces/http/response"
	"smart-bin.backend/internal/usecases"
)

// AdminHandler handles the admin surface: user listing, role grants,
// the unclaimed token pool and the redemption report.
type AdminHandler struct {
	authUsecase     *usecases.AuthUsecase
	ledgerUsecase   *usecases.LedgerUsecase
	registryUsecase *usecases.RegistryUsecase
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	authUsecase *usecases.AuthUsecase,
	ledgerUsecase *usecases.LedgerUsecase,
	registryUsecase *usecases.RegistryUsecase,
) *AdminHandler {
	return &AdminHandler{
		authUsecase:     authUsecase,
		ledgerUsecase:   ledgerUsecase,
		registryUsecase: registryUsecase,
	}
}

// ListUsers lists users, filtered by ?q=
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.authUsecase.ListUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"users": users,
	})
}

// ListUnclaimed returns the unclaimed token pool
// GET /api/v1/admin/unclaimed-tokens
func (h *AdminHandler) ListUnclaimed(c *gin.Context) {
	tokens, err := h.registryUsecase.ListUnclaimed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokens,
	})
}

func (h *AdminHandler) caller(c *gin.Context) (uuid.UUID, bool) {
	return middleware.GetUserID(c)
}

// GrantAdmin grants the admin role. Grants are monotone; there is no
// revoke endpoint.
// POST /api/v1/admin/users/:id/grant-admin
func (h *AdminHandler) GrantAdmin(c *gin.Context) {
	h.grant(c, h.ledgerUsecase.GrantAdmin)
}

// GrantVendor grants the vendor role
// POST /api/v1/admin/users/:id/grant-vendor
func (h *AdminHandler) GrantVendor(c *gin.Context) {
	h.grant(c, h.ledgerUsecase.GrantVendor)
}

func (h *AdminHandler) grant(c *gin.Context, fn func(ctx context.Context, caller *entities.User, target uuid.UUID) error) {
	callerID, ok := h.caller(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	target, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid user id"))
		return
	}

	caller, err := h.authUsecase.GetUserByID(c.Request.Context(), callerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := fn(c.Request.Context(), caller, target); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Role granted",
	})
}

// Report returns aggregate redemption totals per user and per vendor
// GET /api/v1/admin/report
func (h *AdminHandler) Report(c *gin.Context) {
	callerID, ok := h.caller(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	caller, err := h.authUsecase.GetUserByID(c.Request.Context(), callerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.ledgerUsecase.Report(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}
