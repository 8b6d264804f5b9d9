package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartSession(t *testing.T) {
	svc := newJWTService(time.Hour)
	router := gin.New()
	router.Use(RequestID(), OptionalAuth(svc), CartSession())
	router.GET("/test", func(c *gin.Context) {
		assert.Equal(t, GetCartSession(c), logger.GetCartSession(c.Request.Context()))
		c.String(http.StatusOK, GetCartSession(c))
	})

	t.Run("signed-in user owns the cart", func(t *testing.T) {
		userID := uuid.New()
		req := bearer(issueToken(t, svc, userID))
		req.Header.Set(HeaderCartSession, uuid.NewString())

		w := serve(router, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user:"+userID.String(), w.Body.String())
	})

	t.Run("anonymous header", func(t *testing.T) {
		session := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderCartSession, session)

		w := serve(router, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anon:"+session, w.Body.String())
	})

	t.Run("query parameter for event streams", func(t *testing.T) {
		session := uuid.NewString()

		w := serve(router, httptest.NewRequest(http.MethodGet, "/test?session="+session, nil))

		assert.Equal(t, "anon:"+session, w.Body.String())
	})

	t.Run("missing or malformed session", func(t *testing.T) {
		for _, raw := range []string{"", "not-a-uuid", uuid.Nil.String()} {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(HeaderCartSession, raw)

			w := serve(router, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, raw)
			assert.Contains(t, w.Body.String(), "ERR_MISSING_CART_SESSION")
			assert.Contains(t, w.Body.String(), w.Header().Get(HeaderRequestID))
		}
	})
}
