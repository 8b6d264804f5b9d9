package middleware

import (
	"context"
	"strings"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfileLabels tags each request's goroutine with its method and route
// pattern so profiles can be sliced per endpoint. Unmatched paths and the
// health checks run unlabelled.
func ProfileLabels() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || strings.HasSuffix(route, "/health") || strings.HasSuffix(route, "/ready") {
			c.Next()
			return
		}
		telemetry.WithProfileLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}, telemetry.ProfileLabelMethod, c.Request.Method, telemetry.ProfileLabelRoute, route)
	}
}
