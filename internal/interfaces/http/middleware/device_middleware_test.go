package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newDeviceRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DeviceAuthMiddleware(secret))
	r.POST("/scans", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	return r
}

func TestDeviceAuthMiddleware(t *testing.T) {
	r := newDeviceRouter("bin-secret")

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/scans", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/scans", nil)
		req.Header.Set(DeviceSecretHeader, "guess")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("correct secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/scans", nil)
		req.Header.Set(DeviceSecretHeader, "bin-secret")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusAccepted, w.Code)
	})
}

func TestDeviceAuthMiddleware_FailsClosedWhenUnconfigured(t *testing.T) {
	r := newDeviceRouter("")

	// Even a blank presented secret must not match a blank configured one.
	req := httptest.NewRequest(http.MethodPost, "/scans", nil)
	req.Header.Set(DeviceSecretHeader, "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
