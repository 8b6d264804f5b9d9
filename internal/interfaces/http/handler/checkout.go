package handler

import (
	"net/http"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/checkout"
	appidentity "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/identity"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/session"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/dispatch"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/dto"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutHandler starts checkouts and individual sends and streams their
// progress
type CheckoutHandler struct {
	BaseHandler
	sessions *session.Manager
	checkout *checkout.Service
	identity *appidentity.Service
	hub      *StreamHub
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(sessions *session.Manager, svc *checkout.Service, identity *appidentity.Service, hub *StreamHub) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, checkout: svc, identity: identity, hub: hub}
}

func (h *CheckoutHandler) session(c *gin.Context) *session.Session {
	return h.sessions.Get(c.Request.Context(), middleware.GetCartSession(c))
}

// Checkout handles POST /checkout. It records the order and starts sending
// every channel group; progress arrives on the stream, so it answers 202.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	userID := currentUser(c)
	request := checkout.Request{ClearCart: req.ClearCart}
	if req.ClearCart && userID != uuid.Nil {
		request.Customer = h.customer(c, userID)
	}

	s := h.session(c)
	result, err := h.checkout.Checkout(ctx, s.Cart, s.Dispatcher, userID, request)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, result)
}

// customer returns the buyer lines of the message. A missing profile only
// drops those lines.
func (h *CheckoutHandler) customer(c *gin.Context, userID uuid.UUID) *dispatch.Customer {
	profile, err := h.identity.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		logger.L(c.Request.Context()).Warn("customer profile unavailable", zap.Error(err))
		return nil
	}
	return &dispatch.Customer{Name: profile.User.FullName(), Email: profile.User.Email}
}

// SendGroup handles POST /checkout/groups/:channel/send
func (h *CheckoutHandler) SendGroup(c *gin.Context) {
	var req dto.SendGroupRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.session(c).Dispatcher.SendGroup(c.Request.Context(), cart.NormalizeChannel(req.Channel))
	h.sendResult(c, result, err)
}

// SendItem handles POST /checkout/items/:product_id/send
func (h *CheckoutHandler) SendItem(c *gin.Context) {
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}

	result, err := h.session(c).Dispatcher.SendItem(c.Request.Context(), productID)
	h.sendResult(c, result, err)
}

// sendResult answers an individual send. Rejected units are not errors of
// the request; the outcome says what happened.
func (h *CheckoutHandler) sendResult(c *gin.Context, result dispatch.Result, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Status handles GET /checkout/status
func (h *CheckoutHandler) Status(c *gin.Context) {
	h.Success(c, h.session(c).Dispatcher.Status())
}

// Stream handles GET /checkout/stream. The first events carry the current
// cart and dispatch state.
func (h *CheckoutHandler) Stream(c *gin.Context) {
	s := h.session(c)

	var initial []SSEMessage
	if msg, err := NewEvent(EventCart, dto.NewCartView(s.Cart.Items())); err == nil {
		initial = append(initial, msg)
	}
	if msg, err := NewEvent(EventState, s.Dispatcher.Status()); err == nil {
		initial = append(initial, msg)
	}
	if len(initial) < 2 {
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to encode stream state")
		return
	}
	h.hub.Serve(c, s.ID, initial...)
}
