package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-registrar-api/pkg/config"
)

func serve(cfg config.CORSConfig, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(cfg))
	r.Any("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAllowListedOrigin(t *testing.T) {
	rec := serve(config.CORSConfig{AllowedOrigins: []string{"https://registrar.test/"}}, http.MethodGet, "https://registrar.test")
	assert.Equal(t, "https://registrar.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestRejectsUnknownOriginPreflight(t *testing.T) {
	rec := serve(config.CORSConfig{AllowedOrigins: []string{"https://registrar.test"}}, http.MethodOptions, "https://evil.test")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAllowAllWhenUnconfigured(t *testing.T) {
	rec := serve(config.CORSConfig{}, http.MethodOptions, "https://any.test")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://any.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
