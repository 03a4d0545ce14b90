package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blinddating/internal/handlers"
	"blinddating/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	userHandler *handlers.UserHandler,
	paymentHandler *handlers.PaymentHandler,
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- public
	users := r.Group("/api/users")
	{
		users.POST("/create", userHandler.Register)
		users.POST("/verify-otp", userHandler.VerifyOTP)
		users.POST("/resend-otp", userHandler.ResendOTP)

		// после подтверждения email
		users.GET("/me", middleware.AuthMiddleware(), userHandler.Me)
	}

	pays := r.Group("/api/payments")
	{
		pays.POST("/create-order", paymentHandler.CreateOrder)
		pays.POST("/verify", paymentHandler.VerifyPayment)
		pays.GET("/receipt/:id", paymentHandler.Receipt)
	}

	return r
}
