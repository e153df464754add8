package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"smart-bin.backend/internal/domain/entities"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/interfaces/http/response"
	"smart-bin.backend/internal/usecases"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase         *usecases.AuthUsecase
	registrationUsecase *usecases.RegistrationUsecase
	verificationUsecase *usecases.VerificationUsecase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authUsecase *usecases.AuthUsecase,
	registrationUsecase *usecases.RegistrationUsecase,
	verificationUsecase *usecases.VerificationUsecase,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:         authUsecase,
		registrationUsecase: registrationUsecase,
		verificationUsecase: verificationUsecase,
	}
}

// Register handles direct registration with a claimed token
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.registrationUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email for verification.",
		"user":    user,
	})
}

// Login handles login by email or phone
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	authResponse, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authResponse)
}

type refreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh exchanges a refresh token for a new pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input refreshInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	pair, err := h.authUsecase.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pair)
}

type passwordResetInput struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset issues a reset token. The response does not reveal
// whether the email exists.
// POST /api/v1/auth/password-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var input passwordResetInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.verificationUsecase.RequestPasswordReset(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "If that email is registered, a reset link has been sent.",
	})
}

type passwordResetConfirmInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// ConfirmPasswordReset consumes a reset token and sets a new password
// POST /api/v1/auth/password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var input passwordResetConfirmInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.verificationUsecase.ConfirmPasswordReset(c.Request.Context(), input.Token, input.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Password updated",
	})
}
