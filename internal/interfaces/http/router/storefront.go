package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tungtungsport/storefront/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers the storefront API serves
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Favorite *handler.FavoriteHandler
	Order    *handler.OrderHandler
	Admin    *handler.AdminHandler
	System   *handler.SystemHandler
}

// PublicPaths are the API paths served without a token
func PublicPaths(basePath string) []string {
	return []string{
		basePath + "/auth/register",
		basePath + "/auth/login",
		basePath + "/auth/refresh",
		basePath + "/products",
		basePath + "/shipping-options",
		basePath + "/system/info",
	}
}

// PublicPathPrefixes are the API subtrees served without a token
func PublicPathPrefixes(basePath string) []string {
	return []string{
		basePath + "/products/",
	}
}

// DomainGroups builds the storefront route table. requireStaff guards the
// back office; everything else relies on the API-wide authentication.
func DomainGroups(h Handlers, requireStaff gin.HandlerFunc) []*DomainGroup {
	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", h.Auth.Register)
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/refresh", h.Auth.RefreshToken)
	authRoutes.POST("/logout", h.Auth.Logout)

	profileRoutes := NewDomainGroup("profile", "/profile")
	profileRoutes.GET("", h.Auth.GetProfile)
	profileRoutes.PUT("", h.Auth.UpdateProfile)
	profileRoutes.PUT("/password", h.Auth.ChangePassword)

	catalogRoutes := NewDomainGroup("catalog", "/products")
	catalogRoutes.GET("", h.Product.ListProducts)
	catalogRoutes.GET("/brands", h.Product.ListBrands)
	catalogRoutes.GET("/categories", h.Product.ListCategories)
	catalogRoutes.GET("/:id", h.Product.GetProduct)
	catalogRoutes.GET("/:id/ratings", h.Product.ListProductRatings)

	shippingRoutes := NewDomainGroup("shipping", "/shipping-options")
	shippingRoutes.GET("", h.Product.ListShippingOptions)

	cartRoutes := NewDomainGroup("cart", "/cart")
	cartRoutes.GET("", h.Cart.GetCart)
	cartRoutes.DELETE("", h.Cart.ClearCart)
	cartItems := cartRoutes.Group("cart-items", "/items")
	cartItems.POST("", h.Cart.AddItem)
	cartItems.DELETE("", h.Cart.RemoveItem)
	cartItems.PUT("/quantity", h.Cart.UpdateQuantity)
	cartItems.PUT("/size", h.Cart.ChangeSize)
	cartSelection := cartRoutes.Group("cart-selection", "/selection")
	cartSelection.POST("/toggle", h.Cart.ToggleSelection)
	cartSelection.POST("/all", h.Cart.SelectAll)
	cartSelection.DELETE("", h.Cart.ClearSelection)

	favoriteRoutes := NewDomainGroup("favorites", "/favorites")
	favoriteRoutes.GET("", h.Favorite.ListFavorites)
	favoriteRoutes.POST("/:product_id", h.Favorite.AddFavorite)
	favoriteRoutes.DELETE("/:product_id", h.Favorite.RemoveFavorite)
	favoriteRoutes.POST("/:product_id/toggle", h.Favorite.ToggleFavorite)

	checkoutRoutes := NewDomainGroup("checkout", "/checkout")
	checkoutRoutes.POST("", h.Order.Checkout)

	orderRoutes := NewDomainGroup("orders", "/orders")
	orderRoutes.GET("", h.Order.ListOrders)
	orderRoutes.GET("/:id", h.Order.GetOrder)
	orderRoutes.POST("/:id/cancel", h.Order.CancelOrder)
	orderRoutes.POST("/:id/confirm-received", h.Order.ConfirmReceived)
	orderRoutes.GET("/:id/payment", h.Order.GetPaymentInstructions)
	orderRoutes.GET("/:id/payment-proofs", h.Order.ListPaymentProofs)
	orderRoutes.POST("/:id/payment-proofs", h.Order.UploadPaymentProof)
	orderRoutes.POST("/:id/returns", h.Order.RequestReturn)
	orderRoutes.POST("/:id/ratings", h.Order.RateOrder)

	returnRoutes := NewDomainGroup("returns", "/returns")
	returnRoutes.GET("", h.Order.ListReturns)
	returnRoutes.GET("/:id", h.Order.GetReturn)

	adminRoutes := NewDomainGroup("admin", "/admin")
	if requireStaff != nil {
		adminRoutes.Use(requireStaff)
	}
	adminOrders := adminRoutes.Group("admin-orders", "/orders")
	adminOrders.GET("", h.Admin.ListOrders)
	adminOrders.GET("/:id", h.Admin.GetOrder)
	adminOrders.PUT("/:id/status", h.Admin.UpdateOrderStatus)
	adminProofs := adminRoutes.Group("admin-payment-proofs", "/payment-proofs")
	adminProofs.GET("", h.Admin.ListPendingProofs)
	adminProofs.POST("/:id/verify", h.Admin.VerifyProof)
	adminProofs.POST("/:id/reject", h.Admin.RejectProof)
	adminReturns := adminRoutes.Group("admin-returns", "/returns")
	adminReturns.POST("/:id/approve", h.Admin.ApproveReturn)
	adminReturns.POST("/:id/reject", h.Admin.RejectReturn)
	adminReturns.POST("/:id/complete", h.Admin.CompleteReturn)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)

	return []*DomainGroup{
		authRoutes,
		profileRoutes,
		catalogRoutes,
		shippingRoutes,
		cartRoutes,
		favoriteRoutes,
		checkoutRoutes,
		orderRoutes,
		returnRoutes,
		adminRoutes,
		systemRoutes,
	}
}
