package handler

import (
	"errors"

	appcatalog "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/session"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/dto"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartHandler edits the cart of the request's cart session
type CartHandler struct {
	BaseHandler
	sessions *session.Manager
	catalog  *appcatalog.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(sessions *session.Manager, catalog *appcatalog.Service) *CartHandler {
	return &CartHandler{sessions: sessions, catalog: catalog}
}

func (h *CartHandler) session(c *gin.Context) *session.Session {
	return h.sessions.Get(c.Request.Context(), middleware.GetCartSession(c))
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	h.Success(c, dto.NewCartView(h.session(c).Cart.Items()))
}

// AddItem handles POST /cart/items. The product is read from the catalog so
// clients cannot set their own prices.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := c.Request.Context()
	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	s := h.session(c)
	h.respond(c, s, s.Cart.AddItem(ctx, *product, req.Quantity))
}

// UpdateQuantity handles PUT /cart/items/:product_id
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}
	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	s := h.session(c)
	h.respond(c, s, s.Cart.UpdateQuantity(c.Request.Context(), productID, *req.Quantity))
}

// RemoveItem handles DELETE /cart/items/:product_id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}

	s := h.session(c)
	h.respond(c, s, s.Cart.RemoveItem(c.Request.Context(), productID))
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	s := h.session(c)
	h.respond(c, s, s.Cart.Clear(c.Request.Context()))
}

// respond answers a cart mutation with the new cart. Persistence failures
// keep the in-memory change, so they are logged and the cart is returned.
func (h *CartHandler) respond(c *gin.Context, s *session.Session, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.HandleError(c, err)
		return
	}
	if err != nil {
		logger.L(c.Request.Context()).Warn("cart change not persisted", zap.Error(err))
	}
	h.Success(c, dto.NewCartView(s.Cart.Items()))
}
