package trade

import (
	"context"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence.
// Header and items are written by separate calls and are not wrapped in a
// transaction.
type OrderRepository interface {
	// Create inserts the order header
	Create(ctx context.Context, order *Order) error

	// CreateItems inserts all items of an order in one statement
	CreateItems(ctx context.Context, items []OrderItem) error

	// FindByUser lists a customer's orders newest first, items included
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// CountByUser counts a customer's orders
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
