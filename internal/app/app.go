package app

import (
	"database/sql"
	"fmt"
	"log"

	"blinddating/internal/config"
	"blinddating/internal/handlers"
	"blinddating/internal/middleware"
	"blinddating/internal/payments"
	"blinddating/internal/pdf"
	"blinddating/internal/repositories"
	"blinddating/internal/routes"
	"blinddating/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	"github.com/swaggo/gin-swagger"

	_ "blinddating/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()

	if cfg.Auth.JWTSecret != "" {
		middleware.JWTKey = []byte(cfg.Auth.JWTSecret)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	notifier := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)

	otpService := services.NewOTPService(userRepo, emailService)
	registrationService := services.NewRegistrationService(userRepo, otpService, notifier)

	gateway, err := buildGateway(cfg.Payment)
	if err != nil {
		log.Fatal("Платёжный шлюз не сконфигурирован: ", err)
	}
	// сумма в минимальных единицах (пайсы/центы)
	amountMinor := int64(cfg.Payment.Amount * 100)
	paymentService := services.NewPaymentService(userRepo, gateway, emailService, notifier, amountMinor)

	receiptGen := pdf.NewReceiptGenerator(cfg.Files.RootDir, "")

	// === Handlers ===
	userHandler := handlers.NewUserHandler(registrationService, otpService, userRepo)
	paymentHandler := handlers.NewPaymentHandler(paymentService, userRepo, receiptGen)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, userHandler, paymentHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на %s (gateway=%s)", listenAddr, gateway.Name())
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}

// buildGateway — ровно один активный шлюз на деплой.
func buildGateway(cfg config.PaymentConfig) (payments.Gateway, error) {
	switch cfg.Gateway {
	case "razorpay":
		return payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.DryRun), nil
	case "stripe":
		return payments.NewStripeGateway(cfg.StripeSecretKey, cfg.DryRun), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", cfg.Gateway)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
