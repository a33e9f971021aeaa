package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseMetaCarriesCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var got map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/t", func(c *gin.Context) {
		SetCacheHit(c, true)
		got = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/t", nil))

	require.NotNil(t, got)
	assert.Equal(t, true, got[cacheHitKey])
	assert.Contains(t, got, "processing_time_ms")
	assert.NotContains(t, got, "started_at")
}

func TestExtractMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, ExtractMeta(c))

	SetCacheHit(c, false)
	assert.Equal(t, map[string]interface{}{cacheHitKey: false}, ExtractMeta(c))
}
