package handler

import (
	appidentity "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/identity"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/orders"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves the signed-in customer's profile and order history
type AccountHandler struct {
	BaseHandler
	identity *appidentity.Service
	orders   *orders.Service
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(identity *appidentity.Service, orders *orders.Service) *AccountHandler {
	return &AccountHandler{identity: identity, orders: orders}
}

// Me handles GET /me
func (h *AccountHandler) Me(c *gin.Context) {
	profile, err := h.identity.CurrentUser(c.Request.Context(), currentUser(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// ListOrders handles GET /orders
func (h *AccountHandler) ListOrders(c *gin.Context) {
	var filter orders.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.orders.ListOrders(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
