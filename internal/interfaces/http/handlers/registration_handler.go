package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/interfaces/http/response"
	"smart-bin.backend/internal/usecases"
)

// RegistrationHandler handles the deferred registration flow
type RegistrationHandler struct {
	registrationUsecase *usecases.RegistrationUsecase
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationUsecase *usecases.RegistrationUsecase) *RegistrationHandler {
	return &RegistrationHandler{
		registrationUsecase: registrationUsecase,
	}
}

// StartPending opens a deferred registration: the token is parked on a
// pending record and a verification link is sent, no account exists yet.
// POST /api/v1/registrations/pending
func (h *RegistrationHandler) StartPending(c *gin.Context) {
	var input entities.StartPendingInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	pending, err := h.registrationUsecase.StartPendingRegistration(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Check your email to complete registration.",
		"pending": pending,
	})
}

// Resend reissues the pending verification email
// POST /api/v1/registrations/:id/resend
func (h *RegistrationHandler) Resend(c *gin.Context) {
	pendingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid registration id"))
		return
	}

	if err := h.registrationUsecase.ResendPendingVerification(c.Request.Context(), pendingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Verification email resent",
	})
}

// Complete finishes a deferred registration. The emailed token proves
// address ownership, so no bearer token is required.
// POST /api/v1/registrations/complete
func (h *RegistrationHandler) Complete(c *gin.Context) {
	var input entities.CompleteRegistrationInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.registrationUsecase.CompleteRegistration(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Registration complete",
		"user":    user,
	})
}
