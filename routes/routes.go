package routes

import (
	"ridelink/internal/handlers"
	"ridelink/internal/middleware"
	"ridelink/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers the session endpoints.
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, authService services.AuthService) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.SignIn)
		auth.POST("/register", authHandler.Register)
		auth.GET("/session", authHandler.GetSession)
		auth.GET("/route-guard", authHandler.ResolveRoute)
	}

	protected := r.Group("/auth")
	protected.Use(middleware.AuthRequired(authService))
	{
		protected.POST("/logout", authHandler.SignOut)
		protected.PUT("/profile", authHandler.UpdateProfile)
	}
}

// SetupPaymentRoutes registers the card and payment endpoints.
func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, authService services.AuthService) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthRequired(authService))
	{
		payments.GET("/cards", paymentHandler.ListCards)
		payments.POST("/cards", paymentHandler.AddCard)
		payments.POST("/cards/validate", paymentHandler.ValidateCard)
		payments.PUT("/cards/:id/default", paymentHandler.SetDefaultCard)
		payments.DELETE("/cards/:id", paymentHandler.DeleteCard)

		payments.POST("/process", paymentHandler.ProcessPayment)
		payments.GET("/history", paymentHandler.ListTransactions)
	}
}

// SetupPrefsRoutes registers the preference endpoints.
func SetupPrefsRoutes(r *gin.RouterGroup, prefsHandler *handlers.PrefsHandler, authService services.AuthService) {
	prefs := r.Group("/prefs")
	prefs.Use(middleware.AuthRequired(authService))
	{
		prefs.GET("/notifications", prefsHandler.GetNotificationSettings)
		prefs.PUT("/notifications", prefsHandler.UpdateNotificationSettings)
		prefs.GET("/driver-status", prefsHandler.GetDriverStatus)
		prefs.PUT("/driver-status", prefsHandler.UpdateDriverStatus)
	}
}
