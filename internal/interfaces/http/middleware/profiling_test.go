package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfileLabels(t *testing.T) {
	labels := map[string]string{}
	capture := func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			labels[key] = value
			return true
		})
		c.Status(http.StatusOK)
	}

	router := gin.New()
	router.Use(ProfileLabels())
	router.GET("/api/v1/products/:id", capture)
	router.GET("/api/v1/health", capture)

	t.Run("route pattern and method are attached", func(t *testing.T) {
		clear(labels)
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/products/42", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/api/v1/products/:id", labels["route"])
		assert.Equal(t, http.MethodGet, labels["method"])
	})

	t.Run("health checks are not labelled", func(t *testing.T) {
		clear(labels)
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, labels)
	})
}
