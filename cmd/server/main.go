package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/genmacebiz/permit-portal-backend/internal/config"
	"github.com/genmacebiz/permit-portal-backend/internal/database"
	"github.com/genmacebiz/permit-portal-backend/internal/handlers"
	"github.com/genmacebiz/permit-portal-backend/internal/middleware"
	"github.com/genmacebiz/permit-portal-backend/internal/models"
	"github.com/genmacebiz/permit-portal-backend/internal/notify"
	"github.com/genmacebiz/permit-portal-backend/internal/services"
	"github.com/genmacebiz/permit-portal-backend/pkg/jwt"
	"github.com/genmacebiz/permit-portal-backend/pkg/storage"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting GenMac Business Permit Portal Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	appRepo := database.NewApplicationRepository(db)
	actionRepo := database.NewStaffActionRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	documentRepo := database.NewDocumentRepository(db)
	auditRepo := database.NewAuditLogRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	hub := notify.NewHub(logger)
	fileStorage := storage.NewLocalStorage(cfg.Storage.Root, cfg.Storage.PublicPath)
	renderer := services.NewPermitRenderer(cfg.Storage.AssetsDir)
	gateway := services.NewCardGateway(&cfg.Payment, logger)

	auditSvc := services.NewAuditService(auditRepo, logger)
	lifecycleSvc := services.NewLifecycleService(appRepo, actionRepo, hub, logger)
	issuerSvc := services.NewIssuerService(appRepo, paymentRepo, renderer, fileStorage, gateway, hub, logger)
	expirySvc := services.NewExpiryService(appRepo, hub, logger)

	// Initialize and start cron service
	cronService := services.NewCronService(expirySvc, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService, auditSvc, hub, cfg.Security.BcryptCost)
	appHandler := handlers.NewApplicationHandler(lifecycleSvc, appRepo, actionRepo)
	paymentHandler := handlers.NewPaymentHandler(issuerSvc, paymentRepo)
	userHandler := handlers.NewUserHandler(userRepo, auditSvc, cfg.Security.BcryptCost)
	dashboardHandler := handlers.NewDashboardHandler(appRepo, userRepo)
	documentHandler := handlers.NewDocumentHandler(documentRepo, appRepo, fileStorage)
	wsHandler := handlers.NewWSHandler(hub, jwtService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Stored blobs (uploaded documents, generated permits)
	router.Static(cfg.Storage.PublicPath, cfg.Storage.Root)

	// Websocket notifications
	router.GET("/ws", wsHandler.Connect)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/me", authHandler.Me)
			}
		}

		// Application routes (protected)
		applications := v1.Group("/applications")
		applications.Use(middleware.AuthMiddleware(jwtService))
		{
			applications.POST("", appHandler.Create)
			applications.GET("", appHandler.List)
			applications.GET("/:id", appHandler.Get)
			applications.PUT("/:id", appHandler.Update)
			applications.DELETE("/:id", appHandler.Delete)
			applications.GET("/:id/actions", appHandler.Actions)
			applications.POST("/:id/documents", documentHandler.Upload)
			applications.GET("/:id/documents", documentHandler.List)

			staffOnly := applications.Group("")
			staffOnly.Use(middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
			{
				staffOnly.PUT("/:id/status", appHandler.UpdateStatus)
			}
		}

		// Payment routes (protected)
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthMiddleware(jwtService))
		{
			payments.POST("", paymentHandler.Record)
			payments.POST("/intent", paymentHandler.CreateIntent)
			payments.GET("/application/:id", paymentHandler.Status)

			staffOnly := payments.Group("")
			staffOnly.Use(middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
			{
				staffOnly.GET("", paymentHandler.List)
			}
		}

		// User routes (protected)
		users := v1.Group("/users")
		users.Use(middleware.AuthMiddleware(jwtService))
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)

			adminOnly := users.Group("")
			adminOnly.Use(middleware.RequireRole(models.RoleAdmin))
			{
				adminOnly.GET("", userHandler.List)
				adminOnly.POST("", userHandler.Create)
				adminOnly.PUT("/:id", userHandler.Update)
				adminOnly.PATCH("/:id/password", userHandler.ResetPassword)
			}
		}

		// Dashboard routes (protected)
		dashboard := v1.Group("/dashboard")
		dashboard.Use(middleware.AuthMiddleware(jwtService))
		{
			dashboard.GET("/owner", dashboardHandler.Owner)

			staffOnly := dashboard.Group("")
			staffOnly.Use(middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
			{
				staffOnly.GET("/overview", dashboardHandler.Overview)
				staffOnly.GET("/recent", dashboardHandler.Recent)
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cronService.Stop()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request failed with errors")
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
