package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/social-realtime/internal/adapters/primary/http"
	mw "github.com/lorrc/social-realtime/internal/adapters/primary/http/middleware"
	"github.com/lorrc/social-realtime/internal/adapters/primary/websocket"
	"github.com/lorrc/social-realtime/internal/adapters/secondary/postgres"
	"github.com/lorrc/social-realtime/internal/auth"
	"github.com/lorrc/social-realtime/internal/config"
	"github.com/lorrc/social-realtime/internal/core/services"
	"github.com/lorrc/social-realtime/internal/infrastructure/logging"
	"github.com/lorrc/social-realtime/internal/infrastructure/metrics"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Apply migrations if requested
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL); err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrations applied", "source", cfg.Database.MigrationsPath)
	}

	// 4. Initialize Database Pool
	ctx := context.Background()
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 5. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	var realtimeMetrics *metrics.Realtime
	if cfg.Metrics.Enabled {
		realtimeMetrics = metrics.NewRealtime(cfg.Metrics.Namespace)
	}

	hub := websocket.NewHub(websocket.NewRegistry(), realtimeMetrics, websocket.Config{
		SendBufferSize:     cfg.Realtime.SendBufferSize,
		DispatchBufferSize: cfg.Realtime.DispatchBufferSize,
		PingPeriod:         cfg.WebSocket.PingInterval,
		PongWait:           cfg.WebSocket.PongWait,
		WriteWait:          cfg.WebSocket.WriteWait,
		MaxMessageSize:     cfg.WebSocket.MaxMessageSize,
	}, logger)

	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	// 6. Initialize Rate Limiter
	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
	}

	// 7. Dependency Injection (Wiring the Hexagon)

	// Repositories (Secondary Adapters)
	txManager := postgres.NewTransactionManager(pool)
	userRepo := postgres.NewUserRepository(pool)
	contentRepo := postgres.NewContentRepository(pool)
	followRepo := postgres.NewFollowRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)

	// Services (Core); the hub is their event router
	contentService := services.NewContentService(contentRepo, notificationRepo, txManager, hub, logger)
	followService := services.NewFollowService(userRepo, followRepo, notificationRepo, txManager, hub, logger)
	notificationService := services.NewNotificationService(notificationRepo)
	messageService := services.NewMessageService(userRepo, messageRepo, hub, logger)

	// 8. Setup Router
	deps := httpAdapter.RouterDeps{
		TokenManager:        tokenManager,
		ContentService:      contentService,
		FollowService:       followService,
		NotificationService: notificationService,
		MessageService:      messageService,
		Presence:            hub,
		WebSocket:           httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger),
		Health:              httpAdapter.NewHealthHandler(pool, hub, cfg.App.Version),
		RateLimiter:         rateLimiter,
		AllowedOrigins:      cfg.WebSocket.AllowedOrigins,
		Logger:              logger,
	}
	if realtimeMetrics != nil {
		deps.Metrics = realtimeMetrics.Handler()
		deps.MetricsPath = cfg.Metrics.Path
	}
	r := httpAdapter.NewRouter(deps)

	// 9. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; stopping
	// the hub closes them.
	stopHub()
	select {
	case <-hub.Done():
	case <-shutdownCtx.Done():
		logger.Warn("hub did not stop before shutdown deadline")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
