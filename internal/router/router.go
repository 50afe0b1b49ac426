package router

import (
	"time"

	"kartify/config"
	"kartify/internal/handler"
	"kartify/internal/middleware"
	"kartify/internal/repository"
	"kartify/internal/service"
	"kartify/internal/ws"
	"kartify/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, gw gateway.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	paymentHub := ws.NewPaymentHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	paymentSvc := service.NewPaymentService(orderRepo, paymentRepo, gw, paymentHub)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	callbackHandler := handler.NewCallbackHandler(paymentSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		payments := api.Group("/payments")
		{
			// signature-verified, no session auth
			payments.POST("/callback", callbackHandler.Handle)

			payments.POST("/create-order", authMw, paymentHandler.CreateOrder)
			payments.GET("/status/:merchantTransactionId", authMw, paymentHandler.CheckStatus)
			payments.GET("/orders", authMw, paymentHandler.ListOrders)
			payments.GET("/orders/:orderId", authMw, paymentHandler.GetOrder)
			payments.DELETE("/orders/:orderId", authMw, paymentHandler.DeleteOrder)
			payments.POST("/refund/:orderId", authMw, paymentHandler.Refund)
		}
	}

	r.GET("/ws/payments", ws.UpgradePaymentWS(&cfg.JWT, paymentHub))

	return r
}
