// Package cart holds the shopping cart line items and the pure aggregation
// rules (totals, seller groups, channel groups) derived from them.
package cart

import (
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is returned when adding fewer than one unit
var ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")

// LineItem is one product and the number of units wanted
type LineItem struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// ProductID returns the identity of the line item
func (i LineItem) ProductID() uuid.UUID {
	return i.Product.ID
}

// Subtotal returns price * quantity without rounding
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered list of line items, unique by product id
type Cart struct {
	items []LineItem
}

// New builds a cart from previously stored items
func New(items []LineItem) *Cart {
	c := &Cart{items: make([]LineItem, 0, len(items))}
	c.items = append(c.items, items...)
	return c
}

// Items returns a copy of the line items in insertion order
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct products
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no line items
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Find returns the line item for productID
func (c *Cart) Find(productID uuid.UUID) (LineItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

// Add merges quantity into an existing line for the product, or appends a new one
func (c *Cart) Add(product catalog.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if i := c.indexOf(product.ID); i >= 0 {
		c.items[i].Quantity += quantity
		return nil
	}
	c.items = append(c.items, LineItem{Product: product, Quantity: quantity})
	return nil
}

// SetQuantity sets an absolute quantity; zero or less removes the line.
// Unknown products are ignored.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

// Remove deletes the line for productID if present
func (c *Cart) Remove(productID uuid.UUID) {
	if i := c.indexOf(productID); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.items = c.items[:0:0]
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
