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

// VerificationHandler handles email/phone verification endpoints
type VerificationHandler struct {
	verificationUsecase *usecases.VerificationUsecase
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verificationUsecase *usecases.VerificationUsecase) *VerificationHandler {
	return &VerificationHandler{
		verificationUsecase: verificationUsecase,
	}
}

// Status returns the verification state plus the resend cooldown signal.
// Clients poll this; the server never pushes.
// GET /api/v1/verify/status
func (h *VerificationHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	status, err := h.verificationUsecase.Status(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, status)
}

// ResendEmail reissues the email verification link, voiding prior tokens
// POST /api/v1/verify/email/resend
func (h *VerificationHandler) ResendEmail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	if _, err := h.verificationUsecase.IssueEmailVerification(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Verification email sent",
	})
}

type confirmEmailInput struct {
	Token string `json:"token" binding:"required"`
}

// ConfirmEmail consumes an emailed verification token. Public: the token
// itself proves possession of the inbox.
// POST /api/v1/verify/email/confirm
func (h *VerificationHandler) ConfirmEmail(c *gin.Context) {
	var input confirmEmailInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.verificationUsecase.ConfirmEmail(c.Request.Context(), input.Token); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Email verified",
	})
}

// StartPhone issues a fresh OTP session, invalidating any live one
// POST /api/v1/verify/phone/start
func (h *VerificationHandler) StartPhone(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	sessionID, err := h.verificationUsecase.StartPhoneVerification(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"sessionId": sessionID,
	})
}

// ConfirmPhone consumes an OTP. A wrong code leaves the session live
// until its TTL; a correct one is single-use.
// POST /api/v1/verify/phone/confirm
func (h *VerificationHandler) ConfirmPhone(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	var input entities.ConfirmPhoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.verificationUsecase.ConfirmPhone(c.Request.Context(), userID, input.SessionID, input.Code); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Phone verified",
	})
}

// Activate promotes a verified account to active
// POST /api/v1/verify/activate
func (h *VerificationHandler) Activate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.verificationUsecase.Activate(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Account activated",
	})
}
