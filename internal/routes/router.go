package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parcel-relay/internal/config"
	"parcel-relay/internal/delivery/http/handler"
	"parcel-relay/internal/delivery/ws"
	"parcel-relay/internal/infrastructure/database/postgres"
	"parcel-relay/internal/lock"
	"parcel-relay/internal/logger"
	"parcel-relay/internal/middleware"
	"parcel-relay/internal/notification"
	"parcel-relay/internal/usecase/contract"
	"parcel-relay/internal/usecase/lifecycle"
	"parcel-relay/internal/usecase/match"
	"parcel-relay/internal/usecase/parcel"
	"parcel-relay/internal/usecase/relay"
)

// SetupRoutes wires repositories, services and handlers onto a gin
// engine. The returned dispatcher must be started with Run and stopped
// with Shutdown by the caller.
func SetupRoutes(cfg *config.Config, db *postgres.DB) (*gin.Engine, *notification.Dispatcher) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(1 << 20))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	parcelRepository := postgres.NewParcelRepository(db)
	matchRepository := postgres.NewMatchRepository(db)
	relayRepository := postgres.NewRelayRepository(db)
	contractRepository := postgres.NewContractRepository(db)
	userRepository := postgres.NewUserRepository(db)
	notificationRepository := postgres.NewNotificationRepository(db)

	hub := ws.NewHub()
	dispatcher := notification.NewDispatcher(
		notificationRepository,
		parcelRepository,
		matchRepository,
		cfg.Dispatch,
		notification.NewLogSink(),
		hub,
	)

	locks := lock.NewKeyed(cfg.Lock.AcquireTimeout)
	contractService := contract.NewService(contractRepository)
	lifecycleService := lifecycle.NewService(
		parcelRepository,
		matchRepository,
		relayRepository,
		userRepository,
		contractService,
		locks,
		dispatcher,
	)
	matchService := match.NewService(matchRepository, parcelRepository, lifecycleService)
	relayService := relay.NewService(
		relayRepository,
		parcelRepository,
		matchRepository,
		matchService,
		lifecycleService,
		contractService,
	)
	parcelService := parcel.NewService(parcelRepository, userRepository)

	parcelHandler := handler.NewParcelHandler(parcelService, lifecycleService)
	matchHandler := handler.NewMatchHandler(matchService)
	relayHandler := handler.NewRelayHandler(relayService)
	contractHandler := handler.NewContractHandler(contractService)

	v1 := router.Group("/api/v1")
	{
		parcelHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			parcelHandler.RegisterRoutes(protected)
			matchHandler.RegisterRoutes(protected)
			relayHandler.RegisterRoutes(protected)

			sender := protected.Group("")
			sender.Use(middleware.SenderOnly())
			{
				parcelHandler.RegisterSenderRoutes(sender)
			}

			carrier := protected.Group("")
			carrier.Use(middleware.CarrierOnly())
			{
				matchHandler.RegisterCarrierRoutes(carrier)
				relayHandler.RegisterCarrierRoutes(carrier)
				contractHandler.RegisterCarrierRoutes(carrier)
			}
		}
	}

	router.GET("/ws/notifications", middleware.AuthMiddleware(cfg), hub.Serve)

	logger.Info("All routes initialized")
	return router, dispatcher
}
