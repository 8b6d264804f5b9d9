package middleware

import (
	"net/http"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartSessionKey is the gin context key holding the cart session ID
const CartSessionKey = "cart_session"

// CartSession resolves the cart a request works on. Signed-in users share
// one cart across devices, keyed by their user ID; anonymous clients pick a
// UUID and send it in the X-Cart-Session header.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var session string
		if userID, ok := GetUserID(c); ok {
			session = "user:" + userID.String()
		} else {
			raw := c.GetHeader(HeaderCartSession)
			if raw == "" {
				raw = c.Query("session")
			}
			id, err := uuid.Parse(raw)
			if err != nil || id == uuid.Nil {
				abortWithError(c, http.StatusBadRequest, dto.ErrCodeMissingCart,
					"A signed-in user or a valid X-Cart-Session header is required")
				return
			}
			session = "anon:" + id.String()
		}

		c.Set(CartSessionKey, session)
		c.Request = c.Request.WithContext(logger.WithCartSession(c.Request.Context(), session))
		c.Next()
	}
}

// GetCartSession returns the cart session resolved by CartSession
func GetCartSession(c *gin.Context) string {
	return c.GetString(CartSessionKey)
}
