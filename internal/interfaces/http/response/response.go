package response

import (
	"github.com/gin-gonic/gin"
	domainerrors "smart-bin.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Plain domain sentinels are mapped to
// their HTTP shape first; anything unrecognized becomes a 500.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
