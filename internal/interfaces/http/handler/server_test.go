package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	appcart "github.com/tungtungsport/storefront/internal/application/cart"
	appcatalog "github.com/tungtungsport/storefront/internal/application/catalog"
	appidentity "github.com/tungtungsport/storefront/internal/application/identity"
	apporder "github.com/tungtungsport/storefront/internal/application/order"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/identity"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/infrastructure/auth"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence"
	"github.com/tungtungsport/storefront/internal/infrastructure/storage"
	"github.com/tungtungsport/storefront/internal/interfaces/http/dto"
	"github.com/tungtungsport/storefront/internal/interfaces/http/middleware"
	"github.com/tungtungsport/storefront/tests/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer wires the handlers to real services over a SQLite database
type testServer struct {
	engine      *gin.Engine
	db          *gorm.DB
	jwt         *auth.JWTService
	blacklist   *auth.InMemoryTokenBlacklist
	storage     *storage.MemoryProofStorage
	products    *persistence.GormProductRepository
	customers   *persistence.GormCustomerRepository
	orders      *persistence.GormOrderRepository
	orderSvc    *apporder.OrderService
	returnsRepo *persistence.GormReturnRepository
}

// customerSession is a seeded account with a valid access token
type customerSession struct {
	ID    uuid.UUID
	Email string
	Token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "storefront.db") + "?_busy_timeout=5000"
	database, err := persistence.NewSQLiteDatabase(dsn, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB
	log := zap.NewNop()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-storefront-handlers",
		RefreshSecret:          "test-refresh-secret-for-storefront-handlers",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "storefront-test",
		MaxRefreshCount:        10,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	proofStore := storage.NewMemoryProofStorage()

	txScope := persistence.NewGormTransactionScope(db)
	customerRepo := persistence.NewGormCustomerRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	ratingRepo := persistence.NewGormRatingRepository(db)
	returnRepo := persistence.NewGormReturnRepository(db)
	policy := order.DefaultPolicy()

	authService := appidentity.NewAuthService(customerRepo, jwtService, blacklist, log)
	cartService := appcart.NewCartService(persistence.NewGormCartRepository(db), productRepo, log)
	productService := appcatalog.NewProductService(productRepo, ratingRepo, log)
	favoriteService := appcatalog.NewFavoriteService(persistence.NewGormFavoriteRepository(db), productRepo, log)
	checkoutService := apporder.NewCheckoutService(txScope, orderRepo, productRepo, apporder.CheckoutConfig{
		VirtualAccountPrefix: "8808",
		Policy:               policy,
	}, log)
	orderService := apporder.NewOrderService(txScope, orderRepo, ratingRepo, policy, log)
	proofService := apporder.NewPaymentProofService(txScope, orderRepo, persistence.NewGormPaymentProofRepository(db), proofStore, log)
	ratingService := apporder.NewRatingService(txScope, orderRepo, ratingRepo, policy, log)
	returnService := apporder.NewReturnService(txScope, orderRepo, returnRepo, policy, log)

	authHandler := NewAuthHandler(authService)
	productHandler := NewProductHandler(productService, ratingService)
	cartHandler := NewCartHandler(cartService)
	favoriteHandler := NewFavoriteHandler(favoriteService)
	orderHandler := NewOrderHandler(OrderServices{
		Checkout: checkoutService,
		Orders:   orderService,
		Proofs:   proofService,
		Returns:  returnService,
		Ratings:  ratingService,
		Auth:     authService,
	})
	adminHandler := NewAdminHandler(orderService, proofService, returnService)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	jwtMW := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	})

	api := engine.Group("/api/v1")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.RefreshToken)
	api.GET("/products", productHandler.ListProducts)
	api.GET("/products/brands", productHandler.ListBrands)
	api.GET("/products/categories", productHandler.ListCategories)
	api.GET("/products/:id", productHandler.GetProduct)
	api.GET("/products/:id/ratings", productHandler.ListProductRatings)
	api.GET("/shipping-options", productHandler.ListShippingOptions)

	authed := api.Group("", jwtMW)
	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/profile", authHandler.GetProfile)
	authed.PUT("/profile", authHandler.UpdateProfile)
	authed.PUT("/profile/password", authHandler.ChangePassword)

	authed.GET("/cart", cartHandler.GetCart)
	authed.DELETE("/cart", cartHandler.ClearCart)
	authed.POST("/cart/items", cartHandler.AddItem)
	authed.DELETE("/cart/items", cartHandler.RemoveItem)
	authed.PUT("/cart/items/quantity", cartHandler.UpdateQuantity)
	authed.PUT("/cart/items/size", cartHandler.ChangeSize)
	authed.POST("/cart/selection/toggle", cartHandler.ToggleSelection)
	authed.POST("/cart/selection/all", cartHandler.SelectAll)
	authed.DELETE("/cart/selection", cartHandler.ClearSelection)

	authed.GET("/favorites", favoriteHandler.ListFavorites)
	authed.POST("/favorites/:product_id", favoriteHandler.AddFavorite)
	authed.DELETE("/favorites/:product_id", favoriteHandler.RemoveFavorite)
	authed.POST("/favorites/:product_id/toggle", favoriteHandler.ToggleFavorite)

	authed.POST("/checkout", orderHandler.Checkout)
	authed.GET("/orders", orderHandler.ListOrders)
	authed.GET("/orders/:id", orderHandler.GetOrder)
	authed.POST("/orders/:id/cancel", orderHandler.CancelOrder)
	authed.POST("/orders/:id/confirm-received", orderHandler.ConfirmReceived)
	authed.GET("/orders/:id/payment", orderHandler.GetPaymentInstructions)
	authed.GET("/orders/:id/payment-proofs", orderHandler.ListPaymentProofs)
	authed.POST("/orders/:id/payment-proofs", orderHandler.UploadPaymentProof)
	authed.POST("/orders/:id/returns", orderHandler.RequestReturn)
	authed.POST("/orders/:id/ratings", orderHandler.RateOrder)
	authed.GET("/returns", orderHandler.ListReturns)
	authed.GET("/returns/:id", orderHandler.GetReturn)

	admin := authed.Group("/admin", middleware.RequireStaff())
	admin.GET("/orders", adminHandler.ListOrders)
	admin.GET("/orders/:id", adminHandler.GetOrder)
	admin.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.GET("/payment-proofs", adminHandler.ListPendingProofs)
	admin.POST("/payment-proofs/:id/verify", adminHandler.VerifyProof)
	admin.POST("/payment-proofs/:id/reject", adminHandler.RejectProof)
	admin.POST("/returns/:id/approve", adminHandler.ApproveReturn)
	admin.POST("/returns/:id/reject", adminHandler.RejectReturn)
	admin.POST("/returns/:id/complete", adminHandler.CompleteReturn)

	return &testServer{
		engine:      engine,
		db:          db,
		jwt:         jwtService,
		blacklist:   blacklist,
		storage:     proofStore,
		products:    productRepo,
		customers:   customerRepo,
		orders:      orderRepo,
		orderSvc:    orderService,
		returnsRepo: returnRepo,
	}
}

// do sends a JSON request, with a bearer token when one is given
func (s *testServer) do(t *testing.T, method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

// seedProduct stores an active product
func (s *testServer) seedProduct(t *testing.T, name string, price int64, sizes ...string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "Nike", "Football", decimal.NewFromInt(price))
	require.NoError(t, err)
	p.Sizes = sizes
	require.NoError(t, s.products.Save(context.Background(), p))
	return p
}

// seedCustomer stores an account with complete shipping details and signs it in
func (s *testServer) seedCustomer(t *testing.T, staff bool) customerSession {
	t.Helper()
	email := "buyer-" + uuid.NewString()[:8] + "@example.com"
	c, err := identity.NewCustomer(email, "secret-pass-1", "Budi Santoso")
	require.NoError(t, err)
	require.NoError(t, c.UpdateProfile("Budi Santoso", "081234567890", "Jl. Merdeka No. 1, Jakarta"))
	if staff {
		c.PromoteToStaff()
	}
	require.NoError(t, s.customers.Save(context.Background(), c))

	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		CustomerID: c.ID,
		Email:      c.Email,
		Role:       string(c.Role),
	})
	require.NoError(t, err)
	return customerSession{ID: c.ID, Email: c.Email, Token: pair.AccessToken}
}

// envelope is the response shape with the data kept raw for typed decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// decodeData asserts a success envelope and decodes its data
func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var data T
	testutil.AssertSuccessBody(t, rec.Body.Bytes(), &data)
	return data
}

// errorCode returns the error code of a failed envelope
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success, rec.Body.String())
	require.NotNil(t, env.Error)
	return env.Error.Code
}
