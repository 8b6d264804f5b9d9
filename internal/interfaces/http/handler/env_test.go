package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	appcatalog "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/checkout"
	appidentity "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/identity"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/orders"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/session"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/auth"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/cache"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/config"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/persistence"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/persistence/models"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/dto"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// testEnv is the storefront API over an in-memory database
type testEnv struct {
	t        *testing.T
	db       *gorm.DB
	engine   *gin.Engine
	jwt      *auth.JWTService
	sessions *session.Manager
	hub      *StreamHub

	seller   *models.UserModel
	buyer    *models.UserModel
	products map[string]*catalog.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.CategoryModel{}, &models.ProductModel{},
		&models.OrderModel{}, &models.OrderItemModel{}))

	env := &testEnv{
		t:        t,
		db:       db,
		jwt:      auth.NewJWTService(config.JWTConfig{Secret: "handler-test-secret", AccessTokenExpiration: time.Hour}),
		hub:      NewStreamHub(WithStreamHeartbeat(time.Hour)),
		products: make(map[string]*catalog.Product),
	}
	env.seller = env.addUser("seller@example.com", "Ana", "Pérez", "+53 5 555 0001", true)
	env.buyer = env.addUser("buyer@example.com", "Luis", "Gómez", "+53 5 555 0002", false)

	productRepo := persistence.NewGormProductRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	userRepo := persistence.NewGormUserRepository(db)

	for _, p := range []struct {
		name, price string
		active      bool
	}{
		{"Miel", "2.50", true},
		{"Café", "9.99", true},
		{"Retirado", "1.00", false},
	} {
		env.addProduct(productRepo, p.name, p.price, p.active)
	}

	catalogSvc := appcatalog.NewService(productRepo, categoryRepo)
	identitySvc := appidentity.NewService(userRepo)
	checkoutSvc := checkout.NewService(
		checkout.NewOrderSubmitter(orderRepo, checkout.DefaultSubmitterConfig()), nil)

	env.sessions = session.NewManager(cache.NewMemoryCartStorage(), checkout.DefaultConfig(),
		func(id string) session.Sink { return env.hub.Sink(id) },
		session.WithDispatcherOptions(checkout.WithTimer(checkout.ImmediateTimer{})))
	t.Cleanup(func() {
		env.hub.Stop()
		env.sessions.Close()
	})

	system := NewSystemHandler("storefront-test", map[string]Pinger{
		"database": func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
	})
	catalogH := NewCatalogHandler(catalogSvc)
	cartH := NewCartHandler(env.sessions, catalogSvc)
	checkoutH := NewCheckoutHandler(env.sessions, checkoutSvc, identitySvc, env.hub)
	account := NewAccountHandler(identitySvc, orders.NewService(orderRepo))
	seller := NewSellerHandler(catalogSvc)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.GET("/health", system.Health)
	api.GET("/ready", system.Ready)
	api.GET("/catalog/products", catalogH.ListProducts)
	api.GET("/catalog/products/:id", catalogH.GetProduct)
	api.GET("/catalog/categories", catalogH.ListCategories)

	sessioned := api.Group("", middleware.OptionalAuth(env.jwt), middleware.CartSession())
	sessioned.GET("/cart", cartH.Get)
	sessioned.DELETE("/cart", cartH.Clear)
	sessioned.POST("/cart/items", cartH.AddItem)
	sessioned.PUT("/cart/items/:product_id", cartH.UpdateQuantity)
	sessioned.DELETE("/cart/items/:product_id", cartH.RemoveItem)
	sessioned.POST("/checkout", checkoutH.Checkout)
	sessioned.POST("/checkout/groups/:channel/send", checkoutH.SendGroup)
	sessioned.POST("/checkout/items/:product_id/send", checkoutH.SendItem)
	sessioned.GET("/checkout/status", checkoutH.Status)
	sessioned.GET("/checkout/stream", checkoutH.Stream)

	authed := api.Group("", middleware.RequireAuth(env.jwt))
	authed.GET("/me", account.Me)
	authed.GET("/orders", account.ListOrders)
	sellerGroup := authed.Group("/seller", middleware.RequireSeller(identitySvc))
	sellerGroup.GET("/products", seller.ListProducts)
	sellerGroup.POST("/products", seller.CreateProduct)
	sellerGroup.PUT("/products/:id", seller.UpdateProduct)
	sellerGroup.DELETE("/products/:id", seller.DeleteProduct)
	sellerGroup.PATCH("/products/:id/active", seller.SetActive)
	sellerGroup.POST("/products/:id/image", seller.RequestImageUpload)
	sellerGroup.PUT("/products/:id/image", seller.ConfirmImage)

	env.engine = engine
	return env
}

func (e *testEnv) addUser(email, first, last, phone string, isSeller bool) *models.UserModel {
	e.t.Helper()
	now := time.Now()
	u := &models.UserModel{
		BaseModel:     models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Email:         email,
		FirstName:     first,
		LastName:      last,
		WhatsAppPhone: phone,
		IsSeller:      isSeller,
	}
	require.NoError(e.t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) addProduct(repo catalog.ProductRepository, name, price string, active bool) {
	e.t.Helper()
	p, err := catalog.NewProduct(e.seller.ID, catalog.ProductDetails{
		Name:  name,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(e.t, err)
	require.NoError(e.t, repo.Save(context.Background(), p))
	if !active {
		p.SetActive(false)
		require.NoError(e.t, repo.Save(context.Background(), p))
	}
	e.products[name] = p
}

func (e *testEnv) token(userID uuid.UUID) string {
	e.t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(userID, "")
	require.NoError(e.t, err)
	return token
}

// request describes one API call
type request struct {
	method  string
	path    string
	body    any
	session string
	userID  uuid.UUID
}

func (e *testEnv) do(r request) *httptest.ResponseRecorder {
	e.t.Helper()
	var body bytes.Buffer
	if r.body != nil {
		require.NoError(e.t, json.NewEncoder(&body).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, "/api/v1"+r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.session != "" {
		req.Header.Set(middleware.HeaderCartSession, r.session)
	}
	if r.userID != uuid.Nil {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+e.token(r.userID))
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the data of a success response into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	if out != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Response
}

// errorCode returns the error code of an error response
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
