package dto

import (
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/google/uuid"
)

// AddItemRequest adds a catalog product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=999"`
}

// UpdateQuantityRequest sets an absolute quantity; zero or less removes the line
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CheckoutRequest selects the checkout variant
type CheckoutRequest struct {
	ClearCart bool `json:"clear_cart"`
}

// SendGroupRequest addresses a channel group by its number
type SendGroupRequest struct {
	Channel string `uri:"channel" binding:"required,channel"`
}

// LineItemView is one cart line with its subtotal
type LineItemView struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal string          `json:"subtotal"`
}

// SellerGroupView is a cart group of one seller
type SellerGroupView struct {
	SellerID   uuid.UUID       `json:"seller_id"`
	SellerName string          `json:"seller_name"`
	Seller     *catalog.Seller `json:"seller,omitempty"`
	Items      []LineItemView  `json:"items"`
	Total      string          `json:"total"`
}

// ChannelGroupView is a cart group reachable through one messaging number
type ChannelGroupView struct {
	ChannelID string         `json:"channel_id"`
	Seller    catalog.Seller `json:"seller"`
	Items     []LineItemView `json:"items"`
	ItemCount int            `json:"item_count"`
	Total     string         `json:"total"`
}

// CartView is the full cart with its derived aggregates
type CartView struct {
	Items          []LineItemView     `json:"items"`
	TotalPrice     string             `json:"total_price"`
	TotalItemCount int                `json:"total_item_count"`
	SellerGroups   []SellerGroupView  `json:"seller_groups"`
	ChannelGroups  []ChannelGroupView `json:"channel_groups"`
	Unroutable     []LineItemView     `json:"unroutable"`
}

// NewCartView builds the view of a cart snapshot
func NewCartView(items []cart.LineItem) CartView {
	view := CartView{
		Items:          lineItemViews(items),
		TotalPrice:     cart.FormatAmount(cart.TotalPrice(items)),
		TotalItemCount: cart.TotalItemCount(items),
		SellerGroups:   make([]SellerGroupView, 0),
		ChannelGroups:  make([]ChannelGroupView, 0),
	}
	for _, g := range cart.GroupBySeller(items) {
		view.SellerGroups = append(view.SellerGroups, SellerGroupView{
			SellerID:   g.SellerID,
			SellerName: g.SellerName(),
			Seller:     g.Seller,
			Items:      lineItemViews(g.Items),
			Total:      cart.FormatAmount(g.Total),
		})
	}
	grouping := cart.GroupByChannel(items)
	for _, g := range grouping.Groups {
		view.ChannelGroups = append(view.ChannelGroups, ChannelGroupView{
			ChannelID: g.ChannelID,
			Seller:    g.Seller,
			Items:     lineItemViews(g.Items),
			ItemCount: g.ItemCount(),
			Total:     cart.FormatAmount(g.Total),
		})
	}
	view.Unroutable = lineItemViews(grouping.Unroutable)
	return view
}

func lineItemViews(items []cart.LineItem) []LineItemView {
	out := make([]LineItemView, 0, len(items))
	for _, it := range items {
		out = append(out, LineItemView{
			Product:  it.Product,
			Quantity: it.Quantity,
			Subtotal: cart.FormatAmount(it.Subtotal()),
		})
	}
	return out
}
