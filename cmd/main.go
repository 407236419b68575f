package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog"

	"orgmanager/internal/caching"
	"orgmanager/internal/config"
	"orgmanager/internal/domain"
	"orgmanager/internal/handlers"
	"orgmanager/internal/jobs"
	"orgmanager/internal/jobs/background"
	"orgmanager/internal/middleware"
	"orgmanager/internal/repositories"
	"orgmanager/internal/services"
	"orgmanager/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	dbCfg := database.DefaultConfig(cfg.Database.URL)
	if cfg.Database.MaxConns > 0 {
		dbCfg.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		dbCfg.MinConns = cfg.Database.MinConns
	}
	pool, err := database.NewPool(ctx, dbCfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// JWT configuration
	jwtSecret := cfg.Auth.Secret
	if jwtSecret == "" && cfg.Auth.JWKSURL == "" {
		if !cfg.IsDevelopment() {
			logger.Fatal().Msg("JWT_SECRET or JWKS_URL is required outside development")
		}
		jwtSecret = random.String(32)
		logger.Warn().Msg("using a generated JWT secret; tokens will not survive a restart")
	}
	auth, err := middleware.NewAuthenticator(jwtSecret, cfg.Auth.JWKSURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize authentication")
	}
	defer auth.Close()

	// Redis cache
	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient, cfg.Redis.CacheTTL, logger)

	// MinIO archive storage
	minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize MinIO service")
	}
	if err := minioSvc.EnsureBucketExists(ctx, cfg.Minio.ArchiveBucket); err != nil {
		logger.Warn().Err(err).Str("bucket", cfg.Minio.ArchiveBucket).Msg("archive bucket is not available")
	}
	exporter := services.NewArchiveExporter(minioSvc, cfg.Minio.ArchiveBucket, cfg.Minio.URLExpiry)

	clock := clockwork.NewRealClock()
	orgRepo := repositories.NewOrganizationRepository(pool, domain.WithClock(clock))
	orgSvc := services.NewOrganizationService(orgRepo, cacheSvc, exporter, clock, logger)

	// Background jobs
	expiryJob := jobs.NewSubscriptionExpiryJob(orgSvc, cfg.Jobs.ExpirySweepBatch, time.Minute, logger)
	scheduler, err := background.NewJobScheduler(expiryJob, cfg.Jobs.ExpirySweepInterval, clock, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scheduler.Start()

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(requestLogger(logger))

	handlers.NewHealthHandlers(pool, cacheSvc, minioSvc, cfg.Minio.ArchiveBucket, version).RegisterRoutes(e)

	versions := middleware.NewVersionMiddleware()
	audit := middleware.NewAuditMiddleware(logger)
	v1 := versions.VersionRoute(e, versions.GetCurrentVersion(), auth.Middleware(), audit.AuditRequest())
	handlers.NewOrganizationHandlers(orgSvc, logger).RegisterRoutes(v1)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info().Str("addr", addr).Str("version", version).Msg("orgmanager server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if err := scheduler.Stop(); err != nil {
		logger.Error().Err(err).Msg("scheduler shutdown failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Str("service", "orgmanager").Logger()
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				event = logger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
