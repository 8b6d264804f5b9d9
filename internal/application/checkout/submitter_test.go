package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/cart"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/shared"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/trade"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/persistence"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/persistence/models"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) CreateItems(ctx context.Context, items []trade.OrderItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func newMetrics(t *testing.T) (*telemetry.CheckoutMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	m, err := telemetry.NewCheckoutMetrics(provider.Meter("checkout-test"))
	require.NoError(t, err)
	return m, reader
}

// orderResults sums the order counter per result attribute
func orderResults(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "storefront_order_submissions_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(telemetry.AttrOrderResult)
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

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

func lineItems(t *testing.T) []cart.LineItem {
	t.Helper()
	seller := newSeller("Ana", "5355550001")
	return []cart.LineItem{
		{Product: newProduct(t, "Miel", "2.50", seller), Quantity: 3},
		{Product: newProduct(t, "Café", "9.99", seller), Quantity: 1},
	}
}

func TestOrderSubmitter_SkipsWithoutUserOrItems(t *testing.T) {
	repo := new(MockOrderRepository)
	metrics, reader := newMetrics(t)
	s := NewOrderSubmitter(repo, DefaultSubmitterConfig(), WithSubmitterMetrics(metrics))
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, uuid.Nil, lineItems(t))
	assert.NoError(t, err)
	assert.Nil(t, order)

	order, err = s.CreateOrder(ctx, uuid.New(), nil)
	assert.NoError(t, err)
	assert.Nil(t, order)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, int64(2), orderResults(t, reader)[telemetry.OrderResultSkipped])
}

func TestOrderSubmitter_CreatesHeaderThenItems(t *testing.T) {
	repo := new(MockOrderRepository)
	s := NewOrderSubmitter(repo, DefaultSubmitterConfig())
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *trade.Order) bool {
		return o.UserID == userID && o.Total.String() == "17.49" && o.Status == trade.OrderStatusPending
	})).Return(nil).Once()
	repo.On("CreateItems", mock.Anything, mock.MatchedBy(func(items []trade.OrderItem) bool {
		return len(items) == 2 && items[0].Quantity == 3 && items[0].UnitPrice.String() == "2.5"
	})).Return(nil).Once()

	order, err := s.CreateOrder(ctx, userID, lineItems(t))
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, 4, order.ItemCount())
	repo.AssertExpectations(t)
}

func TestOrderSubmitter_HeaderFailureWritesNoItems(t *testing.T) {
	repo := new(MockOrderRepository)
	s := NewOrderSubmitter(repo, DefaultSubmitterConfig())
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	order, err := s.CreateOrder(context.Background(), uuid.New(), lineItems(t))
	assert.Error(t, err)
	assert.Nil(t, order)
	repo.AssertNotCalled(t, "CreateItems", mock.Anything, mock.Anything)
}

func TestOrderSubmitter_BreakerOpens(t *testing.T) {
	repo := new(MockOrderRepository)
	metrics, reader := newMetrics(t)
	s := NewOrderSubmitter(repo, SubmitterConfig{BreakerMaxFailures: 2, BreakerOpenTimeout: time.Minute},
		WithSubmitterMetrics(metrics))
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	ctx := context.Background()

	for range 2 {
		_, err := s.CreateOrder(ctx, uuid.New(), lineItems(t))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrOrderStoreUnavailable)
	}

	_, err := s.CreateOrder(ctx, uuid.New(), lineItems(t))
	assert.ErrorIs(t, err, ErrOrderStoreUnavailable)
	repo.AssertNumberOfCalls(t, "Create", 2)
	assert.Equal(t, int64(3), orderResults(t, reader)[telemetry.OrderResultFailed])
}

func TestOrderSubmitter_ItemsFailureKeepsOrderRow(t *testing.T) {
	db := newSQLiteDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.OrderItemModel{}))

	repo := persistence.NewGormOrderRepository(db)
	s := NewOrderSubmitter(repo, DefaultSubmitterConfig())
	userID := uuid.New()

	_, err := s.CreateOrder(context.Background(), userID, lineItems(t))
	require.Error(t, err, "order_items table is missing")

	count, err := repo.CountByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestOrderSubmitter_RoundTrip(t *testing.T) {
	repo := persistence.NewGormOrderRepository(newSQLiteDB(t))
	s := NewOrderSubmitter(repo, DefaultSubmitterConfig())
	userID := uuid.New()

	created, err := s.CreateOrder(context.Background(), userID, lineItems(t))
	require.NoError(t, err)

	orders, err := repo.FindByUser(context.Background(), userID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, created.ID, orders[0].ID)
	assert.True(t, orders[0].Total.Equal(created.Total))
	assert.Len(t, orders[0].Items, 2)
}
