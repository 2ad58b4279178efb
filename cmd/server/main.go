package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/kickoff/internal/config"
	"github.com/quocanhngo/kickoff/internal/events"
	"github.com/quocanhngo/kickoff/internal/handler"
	"github.com/quocanhngo/kickoff/internal/middleware"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/internal/repository"
	"github.com/quocanhngo/kickoff/internal/service"
	"github.com/quocanhngo/kickoff/internal/worker"
	"github.com/quocanhngo/kickoff/internal/ws"
	"github.com/quocanhngo/kickoff/migrations"
	"github.com/quocanhngo/kickoff/pkg/auth"
	"github.com/quocanhngo/kickoff/pkg/logger"
	"github.com/quocanhngo/kickoff/pkg/obs"
	"github.com/quocanhngo/kickoff/pkg/push"
	"github.com/quocanhngo/kickoff/pkg/storage"
	"github.com/quocanhngo/kickoff/pkg/validation"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const version = "1.0.0"

// @title           Kickoff API
// @version         1.0
// @description     Pickup football matchmaking: fields, games, membership, nearby discovery and notifications.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@kickoff.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	logger.Setup(cfg.App.Env, cfg.App.LogLevel)
	log.Infof("🚀 Starting Kickoff API Server [env=%s]", cfg.App.Env)

	ctx := context.Background()

	// ==================== Tracing ====================
	shutdownTracer, err := obs.InitTracer(ctx, obs.Config{
		Endpoint:    cfg.OTEL.Endpoint,
		ServiceName: cfg.OTEL.ServiceName,
		Version:     version,
		Environment: cfg.App.Env,
	})
	if err != nil {
		log.Warnf("⚠️  Tracing disabled: %v", err)
		shutdownTracer = func(context.Context) error { return nil }
	} else if cfg.OTEL.Enabled() {
		log.Infof("📈 Exporting traces to %s", cfg.OTEL.Endpoint)
	}

	if err := validation.Register(); err != nil {
		log.Fatalf("❌ Failed to register validators: %v", err)
	}

	// ==================== Database (PostgreSQL) ====================
	gormLogger := gormlogger.Default.LogMode(gormlogger.Info)
	if cfg.App.IsProduction() {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Info("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Warnf("⚠️  Migration warning: %v", err)
		log.Info("📦 Falling back to GORM AutoMigrate...")
		if err := migrations.AutoMigrate(db,
			&model.User{},
			&model.Field{},
			&model.Game{},
			&model.GamePlayer{},
			&model.Friendship{},
			&model.Notification{},
			&model.DeviceRegistration{},
			&model.Metric{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Info("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Info("✅ Connected to Redis")

	// ==================== Push (FCM) ====================
	var transport push.Transport
	if fcm := push.NewFCM(ctx, cfg.Firebase.CredentialsFile); fcm != nil {
		transport = fcm
	}

	// ==================== MinIO Storage ====================
	var images service.ImageStore
	minioStorage, err := storage.NewMinIO(ctx, storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Warnf("⚠️  MinIO not available: %v (avatar upload disabled)", err)
	} else {
		images = minioStorage
		log.Info("✅ Connected to MinIO")
	}

	// ==================== Initialize Layers ====================
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	fieldRepo := repository.NewFieldRepository(db)
	gameRepo := repository.NewGameRepository(db)
	geoRepo := repository.NewGeoRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	metricRepo := repository.NewMetricRepository(db)

	metricsService := service.NewMetricsService(metricRepo)

	// WebSocket Hub (with Redis Pub/Sub for horizontal scaling)
	hub := ws.NewHub(rdb)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Notifications
	fanout := service.NewFanout(notificationRepo, deviceRepo, transport, hub, metricsService, service.FanoutConfig{
		Concurrency: cfg.Fanout.Concurrency,
		Timeout:     cfg.Fanout.Timeout,
	})
	notificationService := service.NewNotificationService(notificationRepo, deviceRepo, fanout, hub)

	// Event bus
	var (
		publisher events.Publisher
		localBus  *events.LocalBus
	)
	if cfg.NATS.Enabled() {
		nc, err := events.Connect(cfg.NATS.URL, cfg.NATS.Token)
		if err != nil {
			log.Fatalf("❌ Failed to connect to NATS: %v", err)
		}
		defer nc.Drain()
		bus := events.NewNATSBus(nc)
		if _, err := bus.Subscribe(notificationService.HandleEvent, service.EventTimeout); err != nil {
			log.Fatalf("❌ Failed to subscribe to events: %v", err)
		}
		publisher = bus
		log.Infof("✅ Connected to NATS %s", nc.ConnectedUrl())
	} else {
		localBus = events.NewLocalBus(notificationService.HandleEvent, service.EventTimeout)
		publisher = localBus
		log.Info("📨 NATS not configured, using in-process event bus")
	}

	// Services
	authService := service.NewAuthService(jwtManager, userRepo, rdb, metricsService)
	userService := service.NewUserService(userRepo, images, metricsService)
	discoveryService := service.NewDiscoveryService(geoRepo, metricsService, service.DiscoveryConfig{
		DefaultRadiusKm: cfg.Discovery.DefaultRadiusKm,
		MaxRadiusKm:     cfg.Discovery.MaxRadiusKm,
	})
	fieldService := service.NewFieldService(fieldRepo, discoveryService)
	gameService := service.NewGameService(gameRepo, fieldRepo, userRepo, publisher)
	friendService := service.NewFriendService(friendRepo, userRepo, publisher, metricsService)

	// Workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go worker.NewScheduler(gameService, cfg.Scheduler.Interval).Run(workerCtx)

	// Handlers
	userHandler := handler.NewUserHandler(userService, authService)
	fieldHandler := handler.NewFieldHandler(fieldService, discoveryService)
	gameHandler := handler.NewGameHandler(gameService, discoveryService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	friendHandler := handler.NewFriendHandler(friendService)
	metricsHandler := handler.NewMetricsHandler(metricsService)
	wsHandler := handler.NewWSHandler(hub, authService, notificationService)

	// ==================== Gin Router ====================
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.OTEL.ServiceName,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		// Auth & users
		protected.POST("/auth/logout", userHandler.Logout)
		protected.GET("/users/me", userHandler.Me)
		protected.PATCH("/users/me", userHandler.UpdateProfile)
		protected.POST("/users/me/avatar", userHandler.UploadAvatar)
		protected.GET("/users/search", userHandler.Search)

		// Fields
		protected.GET("/fields", fieldHandler.List)
		protected.GET("/fields/nearby", fieldHandler.Nearby)
		protected.GET("/fields/:id", fieldHandler.Get)
		admin := protected.Group("", middleware.RequireRole(auth.RoleAdmin))
		admin.POST("/fields", fieldHandler.Create)
		admin.PATCH("/fields/:id", fieldHandler.Update)

		// Games
		protected.POST("/games", gameHandler.Create)
		protected.GET("/games", gameHandler.List)
		protected.GET("/games/nearby", gameHandler.Nearby)
		protected.GET("/games/:id", gameHandler.Get)
		protected.PATCH("/games/:id", gameHandler.Update)
		protected.POST("/games/:id/cancel", gameHandler.Cancel)
		protected.POST("/games/:id/complete", gameHandler.Complete)

		// Membership
		protected.POST("/games/:id/join", gameHandler.Join)
		protected.POST("/games/:id/leave", gameHandler.Leave)
		protected.GET("/games/:id/players", gameHandler.Players)
		protected.POST("/games/:id/kick/:playerId", gameHandler.Kick)

		// Notifications & devices
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PATCH("/notifications/read-all", notificationHandler.MarkAllRead)
		protected.GET("/notifications/:id", notificationHandler.Get)
		protected.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		protected.POST("/devices", notificationHandler.RegisterDevice)
		protected.DELETE("/devices/:token", notificationHandler.RemoveDevice)
		admin.POST("/notifications/send-to-user", notificationHandler.SendToUser)
		admin.POST("/notifications/send-push", notificationHandler.SendPush)

		// Friends
		protected.POST("/friends", friendHandler.Add)
		protected.GET("/friends", friendHandler.List)
		protected.GET("/friends/pending", friendHandler.Pending)
		protected.PATCH("/friends/:id", friendHandler.Respond)
		protected.DELETE("/friends/:id", friendHandler.Remove)

		// Metrics
		admin.GET("/metrics", metricsHandler.List)
		admin.GET("/metrics/summary", metricsHandler.Summary)
		admin.GET("/metrics/distribution", metricsHandler.Distribution)
	}

	// WebSocket endpoint (auth via query parameter)
	router.GET("/ws", wsHandler.HandleWebSocket)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Infof("🌐 Kickoff API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Infof("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Infof("🔌 WebSocket: ws://0.0.0.0:%s/ws?token=<jwt>", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("❌ Server forced to shutdown: %v", err)
	}

	workerCancel()
	if localBus != nil {
		localBus.Wait()
	}
	fanout.WaitCleanup()
	hubCancel()
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warnf("⚠️  Tracer shutdown: %v", err)
	}
	log.Info("✅ Server exited gracefully")
}
