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

// UserHandler handles the authenticated profile endpoints
type UserHandler struct {
	authUsecase   *usecases.AuthUsecase
	ledgerUsecase *usecases.LedgerUsecase
}

// NewUserHandler creates a new user handler
func NewUserHandler(authUsecase *usecases.AuthUsecase, ledgerUsecase *usecases.LedgerUsecase) *UserHandler {
	return &UserHandler{
		authUsecase:   authUsecase,
		ledgerUsecase: ledgerUsecase,
	}
}

// Me returns the caller's profile. Points ride on the user row, kept in
// step with the ledger transactionally.
// GET /api/v1/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	user, err := h.authUsecase.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// UpdateProfile updates name/email/phone. Changing a verified contact
// resets verification.
// PATCH /api/v1/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.authUsecase.UpdateProfile(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// ChangePassword changes the password after a fresh re-authentication
// POST /api/v1/me/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	var input entities.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.authUsecase.ChangePassword(c.Request.Context(), userID, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Password changed",
	})
}

type changeEmailInput struct {
	NewEmail        string `json:"newEmail" binding:"required,email"`
	CurrentPassword string `json:"currentPassword" binding:"required"`
}

// ChangeEmail changes the login email after a fresh re-authentication
// and drops the account back to unverified.
// POST /api/v1/me/change-email
func (h *UserHandler) ChangeEmail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	var input changeEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.authUsecase.ChangeEmail(c.Request.Context(), userID, input.NewEmail, input.CurrentPassword)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// Transactions returns the caller's ledger history, newest first
// GET /api/v1/me/transactions
func (h *UserHandler) Transactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	entries, err := h.ledgerUsecase.History(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"transactions": entries,
	})
}
