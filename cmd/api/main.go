// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/classpanel/classpanel/internal/admin"
	"github.com/classpanel/classpanel/internal/auth"
	"github.com/classpanel/classpanel/internal/config"
	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/health"
	"github.com/classpanel/classpanel/internal/middleware"
	"github.com/classpanel/classpanel/internal/profile"
	"github.com/classpanel/classpanel/internal/server"
	"github.com/classpanel/classpanel/internal/subscription"
	"github.com/classpanel/classpanel/internal/tenant"
	"github.com/classpanel/classpanel/internal/user"
)

const (
	drainDelay           = 5 * time.Second
	tokenCleanupInterval = time.Hour
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized", "algorithm", "HS256")

	tenantRepo := tenant.NewRepository(db.DB)
	tenantSvc := tenant.NewService(tenantRepo)
	tenantHandler := tenant.NewHandler(tenantSvc)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	resolver := subscription.NewResolver(
		tenantSvc,
		userSvc,
		subscription.DefaultFeatureTable(),
	)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		userSvc,
		resolver,
		redis.Client,
		cfg.JWT.AccessTokenExpire,
	)
	authHandler := auth.NewHandler(authSvc)

	go runTokenCleanup(ctx, authSvc, logger)

	profileRepo := profile.NewRepository(db.DB)
	profileSvc := profile.NewService(profileRepo, userSvc)
	profileHandler := profile.NewHandler(profileSvc)

	healthHandler := health.NewHandler(db, redis)
	adminHandler := admin.NewHandler(db.DB, redis.Client)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	// Per-user budgets need claims, so the leveled limiter runs inside
	// the authenticator.
	authn := middleware.Authenticator(authSvc)
	leveled := middleware.LeveledRateLimiter(
		redis.Client,
		middleware.DefaultLevelLimits,
	)
	authenticator := func(next http.Handler) http.Handler {
		return authn(leveled(next))
	}

	optionalAuth := middleware.OptionalAuthenticator(authSvc)
	superAdminOnly := middleware.RequireSuperAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator, optionalAuth)
		tenantHandler.RegisterRoutes(r, authenticator, superAdminOnly)
		profileHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, superAdminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// runTokenCleanup purges expired refresh tokens on an hourly tick
// until the context is cancelled.
func runTokenCleanup(
	ctx context.Context,
	authSvc *auth.Service,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := authSvc.CleanupExpiredTokens(ctx)
			if err != nil {
				logger.Warn("refresh token cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("expired refresh tokens removed",
					"count", removed,
				)
			}
		}
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
