package router

import (
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/handler"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the storefront handlers
type Handlers struct {
	System   *handler.SystemHandler
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Account  *handler.AccountHandler
	Seller   *handler.SellerHandler
}

// Guards are the authentication middleware shared by the groups
type Guards struct {
	// OptionalAuth identifies signed-in users without requiring it
	OptionalAuth gin.HandlerFunc
	// RequireAuth rejects anonymous requests
	RequireAuth gin.HandlerFunc
	// RequireSeller rejects users without the seller flag; runs after RequireAuth
	RequireSeller gin.HandlerFunc
}

// RegisterStorefront registers every storefront route group on r
func RegisterStorefront(r *Router, h Handlers, g Guards) {
	r.Register(NewDomainGroup("system", "").
		GET("/health", h.System.Health).
		GET("/ready", h.System.Ready))

	r.Register(NewDomainGroup("catalog", "/catalog").
		GET("/products", h.Catalog.ListProducts).
		GET("/products/:id", h.Catalog.GetProduct).
		GET("/categories", h.Catalog.ListCategories))

	r.Register(NewDomainGroup("cart", "/cart").
		Use(g.OptionalAuth, middleware.CartSession()).
		GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem).
		PUT("/items/:product_id", h.Cart.UpdateQuantity).
		DELETE("/items/:product_id", h.Cart.RemoveItem))

	r.Register(NewDomainGroup("checkout", "/checkout").
		Use(g.OptionalAuth, middleware.CartSession()).
		POST("", h.Checkout.Checkout).
		POST("/groups/:channel/send", h.Checkout.SendGroup).
		POST("/items/:product_id/send", h.Checkout.SendItem).
		GET("/status", h.Checkout.Status).
		GET("/stream", h.Checkout.Stream))

	r.Register(NewDomainGroup("account", "").
		Use(g.RequireAuth).
		GET("/me", h.Account.Me).
		GET("/orders", h.Account.ListOrders))

	r.Register(NewDomainGroup("seller", "/seller").
		Use(g.RequireAuth, g.RequireSeller).
		GET("/products", h.Seller.ListProducts).
		POST("/products", h.Seller.CreateProduct).
		PUT("/products/:id", h.Seller.UpdateProduct).
		DELETE("/products/:id", h.Seller.DeleteProduct).
		PATCH("/products/:id/active", h.Seller.SetActive).
		POST("/products/:id/image", h.Seller.RequestImageUpload).
		PUT("/products/:id/image", h.Seller.ConfirmImage))
}
