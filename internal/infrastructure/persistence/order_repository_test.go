package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/trade"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/persistence/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.OrderModel{}, &models.OrderItemModel{}))
	return db
}

func newTestOrder(t *testing.T, userID uuid.UUID, createdAt time.Time) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(userID, []cart.LineItem{
		{Product: catalog.Product{BaseEntity: shared.NewBaseEntity(), Name: "Casabe", Price: decimal.RequireFromString("2.25")}, Quantity: 2},
		{Product: catalog.Product{BaseEntity: shared.NewBaseEntity(), Name: "Miel", Price: decimal.RequireFromString("5")}, Quantity: 1},
	})
	require.NoError(t, err)
	order.CreatedAt = createdAt
	return order
}

func TestGormOrderRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(newSQLiteDB(t))
	userID := uuid.New()

	older := newTestOrder(t, userID, time.Now().Add(-time.Hour))
	newer := newTestOrder(t, userID, time.Now())
	for _, o := range []*trade.Order{older, newer} {
		require.NoError(t, repo.Create(ctx, o))
		require.NoError(t, repo.CreateItems(ctx, o.Items))
	}
	require.NoError(t, repo.Create(ctx, newTestOrder(t, uuid.New(), time.Now())))

	count, err := repo.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	orders, err := repo.FindByUser(ctx, userID, shared.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, trade.OrderStatusPending, orders[0].Status)
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("9.5")))
	require.Len(t, orders[0].Items, 2)

	var sum decimal.Decimal
	for _, it := range orders[0].Items {
		sum = sum.Add(it.Amount())
	}
	assert.True(t, sum.Equal(orders[0].Total))
}

func TestGormOrderRepository_CreateItemsEmpty(t *testing.T) {
	repo := NewGormOrderRepository(newSQLiteDB(t))
	assert.NoError(t, repo.CreateItems(context.Background(), nil))
}

func TestGormOrderRepository_ItemsFailureKeepsHeader(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)
	order := newTestOrder(t, uuid.New(), time.Now())

	mock.ExpectExec(`INSERT INTO "orders"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "order_items"`).WillReturnError(errors.New("relation does not exist"))

	require.NoError(t, repo.Create(context.Background(), order))
	assert.Error(t, repo.CreateItems(context.Background(), order.Items))
	// no rollback statement is issued
	assert.NoError(t, mock.ExpectationsWereMet())
}
