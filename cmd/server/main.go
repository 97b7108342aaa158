package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classhub/internal/core/services"
	httphandlers "classhub/internal/handlers/http"
	"classhub/internal/infrastructure/live"
	"classhub/internal/infrastructure/meeting"
	"classhub/internal/infrastructure/middleware"
	"classhub/internal/infrastructure/monitoring"
	repositories "classhub/internal/infrastructure/repositories"
	"classhub/pkg/config"
	"classhub/pkg/logger"
	"classhub/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/classhub/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerEndpoint,
	})
	if err != nil {
		log.Warnw("failed to initialize tracing, continuing without it", "error", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(ctx); err != nil {
				log.Warnw("failed to shut down tracer provider", "error", err)
			}
		}()
	}

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	// Initialize repositories
	channelRepo := repoFactory.CreateChannelRepository()
	membershipRepo := repoFactory.CreateMembershipRepository()
	membershipSettingRepo := repoFactory.CreateMembershipSettingRepository()
	deviceSettingsRepo := repoFactory.CreateDeviceSettingsRepository()
	chatRepo := repoFactory.CreateChatMessageRepository()
	meetingTokenRepo := repoFactory.CreateMeetingTokenRepository()
	userRepo := repoFactory.CreateUserRepository()

	// Initialize monitoring and the live connection registry
	var collector *monitoring.Collector
	if cfg.Monitoring.PrometheusEnabled {
		collector = monitoring.NewCollector()
	}
	registry := live.NewRegistry(collector, log)

	// Initialize services
	accessService := services.NewAccessService(membershipRepo, log)
	meetingProvider := meeting.NewClient(cfg, log)
	channelService := services.NewChannelService(
		channelRepo,
		membershipRepo,
		membershipSettingRepo,
		deviceSettingsRepo,
		meetingTokenRepo,
		chatRepo,
		userRepo,
		accessService,
		meetingProvider,
		log,
	)
	chatService := services.NewChatService(accessService, chatRepo, membershipSettingRepo, userRepo, registry, log)
	searchService := services.NewSearchService(channelRepo, membershipRepo, membershipSettingRepo, userRepo, log)
	settingsService := services.NewSettingsService(accessService, deviceSettingsRepo, membershipRepo, membershipSettingRepo, log)
	authService := services.NewAuthService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Initialize live servers
	chatServer := live.NewChatServer(chatService, userRepo, channelRepo, registry, cfg, collector, log)
	searchServer := live.NewSearchServer(searchService, registry, cfg, collector, log)

	// Initialize HTTP handlers
	authHandler := httphandlers.NewAuthHandler(authService, userRepo)
	channelHandler := httphandlers.NewChannelHandler(channelService, settingsService, chatService)
	userHandler := httphandlers.NewUserHandler(userRepo)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.MetricsMiddleware(collector))

	// Global HTTP rate limiting (if enabled)
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	// Public auth routes
	authHandler.SetupRoutes(router)

	// Authenticated API routes
	authRequired := middleware.AuthMiddleware(authService)
	channelHandler.SetupRoutes(router, authRequired)
	userHandler.SetupRoutes(router, authRequired)

	// Live endpoints
	router.GET("/ws/chat/:channel_id", chatServer.HandleChat)
	router.GET("/ws/search", searchServer.HandleSearch)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	// Readiness endpoint
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := repoFactory.HealthCheck(ctx); err != nil {
			c.JSON(503, gin.H{
				"status":       "not_ready",
				"timestamp":    time.Now(),
				"dependencies": "unhealthy",
				"error":        err.Error(),
			})
			return
		}

		c.JSON(200, gin.H{
			"status":       "ready",
			"timestamp":    time.Now(),
			"dependencies": "ok",
		})
	})

	// Prometheus metrics endpoint
	if collector != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{})))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting ClassHub server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down ClassHub server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server gracefully
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	// Close repository factory
	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("ClassHub server stopped")
}
