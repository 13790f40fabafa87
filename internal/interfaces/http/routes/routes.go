// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/handlers"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/middleware"
)

// Handlers groups every HTTP handler the API mounts
type Handlers struct {
	Auth       *handlers.AuthHandler
	Profile    *handlers.UserProfileHandler
	Address    *handlers.UserAddressHandler
	Product    *handlers.ProductHandler
	Cart       *handlers.CartHandler
	Checkout   *handlers.CheckoutHandler
	Order      *handlers.OrderHandler
	Invoice    *handlers.InvoiceHandler
	AdminOrder *handlers.AdminOrderHandler
}

// Guards are the per-group middleware dependencies
type Guards struct {
	Tokens        middleware.TokenValidator
	Limiter       middleware.Limiter
	AuthRateLimit int
	Log           logrus.FieldLogger
}

// SetupRoutes mounts every API group on rg
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	SetupAuthRoutes(rg, h, g)
	SetupProfileRoutes(rg, h, g)
	SetupProductRoutes(rg, h)
	SetupCartRoutes(rg, h, g)
	SetupCheckoutRoutes(rg, h, g)
	SetupOrderRoutes(rg, h, g)
	SetupAdminRoutes(rg, h, g)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	auth := rg.Group("/auth")
	auth.Use(middleware.RateLimit(g.Limiter, "auth", g.AuthRateLimit, g.Log))
	{
		// Public auth endpoints
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/send-otp", h.Auth.SendOTP)
		auth.POST("/verify-otp", h.Auth.VerifyOTP)
		auth.GET("/google/url", h.Auth.GoogleURL)
		auth.GET("/google/callback", h.Auth.GoogleCallback)

		// Phone sign-up is finished with the temporary token from verify-otp
		auth.POST("/complete-profile", middleware.TempAuthMiddleware(g.Tokens), h.Auth.CompleteProfile)

		auth.POST("/logout", middleware.AuthMiddleware(g.Tokens), h.Auth.Logout)
	}
}

// SetupProfileRoutes sets up the signed-in user's profile and addresses
func SetupProfileRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	profile := rg.Group("/profile")
	profile.Use(middleware.AuthMiddleware(g.Tokens))
	{
		profile.GET("", h.Profile.GetProfile)
		profile.PUT("", h.Profile.UpdateProfile)

		addresses := profile.Group("/addresses")
		{
			addresses.GET("", h.Address.GetAddresses)
			addresses.POST("", h.Address.CreateAddress)
			addresses.PUT("/:addressId", h.Address.UpdateAddress)
			addresses.DELETE("/:addressId", h.Address.DeleteAddress)
			addresses.PATCH("/:addressId/default", h.Address.SetDefaultAddress)
		}
	}
}

// SetupProductRoutes sets up the public catalog
func SetupProductRoutes(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/:id", h.Product.GetProduct)
		products.GET("/slug/:slug", h.Product.GetProductBySlug)
	}

	rg.GET("/categories", h.Product.GetCategories)
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(g.Tokens))
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PATCH("/items/:productId", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:productId", h.Cart.RemoveFromCart)
	}
}

// SetupCheckoutRoutes sets up checkout related routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(g.Tokens))
	{
		checkout.POST("/address", h.Checkout.SaveAddress)
		checkout.POST("/create-order", h.Checkout.CreateOrder)
		checkout.POST("/verify-payment", h.Checkout.VerifyPayment)
		checkout.GET("/time-slots", h.Checkout.GetTimeSlots)
		checkout.GET("/payment-methods", h.Checkout.GetPaymentMethods)
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(g.Tokens))
	{
		orders.GET("", h.Order.GetOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.GET("/:id/invoice", h.Invoice.GenerateInvoice)
	}
}

// SetupAdminRoutes sets up back-office routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(g.Tokens))
	admin.Use(middleware.AdminMiddleware())
	{
		orders := admin.Group("/orders")
		{
			orders.PATCH("/:id/status", h.AdminOrder.UpdateOrderStatus)
			orders.GET("/export", h.AdminOrder.ExportOrders)
			orders.GET("/feed", h.AdminOrder.OrderFeed)
		}
	}
}
