package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "smart-bin.backend/internal/domain/errors"
	"smart-bin.backend/internal/interfaces/http/response"
	"smart-bin.backend/internal/usecases"
)

// RegistryHandler handles scan ingestion and token availability endpoints
type RegistryHandler struct {
	registryUsecase *usecases.RegistryUsecase
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(registryUsecase *usecases.RegistryUsecase) *RegistryHandler {
	return &RegistryHandler{
		registryUsecase: registryUsecase,
	}
}

type recordScanInput struct {
	Token string `json:"token" binding:"required"`
}

// RecordScan ingests a token sighting from bin hardware
// POST /api/v1/scans
func (h *RegistryHandler) RecordScan(c *gin.Context) {
	var input recordScanInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.registryUsecase.RecordScan(c.Request.Context(), input.Token); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"message": "Scan recorded",
	})
}

// CheckAvailability reports whether a token can still be claimed
// GET /api/v1/tokens/:token/availability
func (h *RegistryHandler) CheckAvailability(c *gin.Context) {
	availability, err := h.registryUsecase.CheckAvailability(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":        c.Param("token"),
		"availability": availability,
	})
}
