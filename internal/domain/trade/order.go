package trade

import (
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

// OrderStatusPending is the status every order is created with
const OrderStatusPending OrderStatus = "pending"

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

var (
	// ErrOrderWithoutUser is returned when no customer is known
	ErrOrderWithoutUser = shared.NewDomainError("ORDER_WITHOUT_USER", "An order needs a customer")
	// ErrEmptyOrder is returned when there is nothing to order
	ErrEmptyOrder = shared.NewDomainError("EMPTY_ORDER", "An order needs at least one item")
)

// Order records a checkout attempt of a customer
type Order struct {
	shared.BaseEntity
	UserID uuid.UUID       `json:"user_id"`
	Total  decimal.Decimal `json:"total"`
	Status OrderStatus     `json:"status"`
	Items  []OrderItem     `json:"items,omitempty"`
}

// OrderItem is one product line of an order with the price paid per unit
type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Amount returns quantity * unit price
func (i OrderItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder builds a pending order from cart line items.
// Quantities and unit prices are copied from the items, never re-read from the catalog.
func NewOrder(userID uuid.UUID, items []cart.LineItem) (*Order, error) {
	if userID == uuid.Nil {
		return nil, ErrOrderWithoutUser
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	order := &Order{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Total:      cart.TotalPrice(items),
		Status:     OrderStatusPending,
		Items:      make([]OrderItem, 0, len(items)),
	}
	for _, it := range items {
		order.Items = append(order.Items, OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   it.Product.ID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Product.Price,
		})
	}
	return order, nil
}

// ItemCount returns the number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
