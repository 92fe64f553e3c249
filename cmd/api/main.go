// Command api runs the Tamagotchi HTTP server.
//
// Startup order: .env (optional) → config → logging → OpenTelemetry →
// SQLite/GORM → routes → HTTP server. SIGINT/SIGTERM trigger a graceful
// shutdown that drains in-flight requests before closing the database and
// flushing traces.
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
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	_ "github.com/tbourn/go-tamagotchi-backend/docs"
	"github.com/tbourn/go-tamagotchi-backend/internal/config"
	httpapi "github.com/tbourn/go-tamagotchi-backend/internal/http"
	"github.com/tbourn/go-tamagotchi-backend/internal/observability"
	"github.com/tbourn/go-tamagotchi-backend/internal/repo"
	"github.com/tbourn/go-tamagotchi-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=v1.2.3".
var version = "dev"

// @title           Tamagotchi API
// @version         1.0
// @description     REST API for raising virtual pets: create and manage pets, feed them, play with them, scold them, and browse their interaction histories.
// @contact.name    Tamagotchi Backend
// @license.name    MIT
// @BasePath        /api/v1
// @schemes         http https
func main() {
	// .env is optional; deployments normally inject environment variables.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging
	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	logger := log.With().Str("service", cfg.OTEL.ServiceName).Logger()

	gin.SetMode(cfg.GinMode)

	// Tracing
	appVersion := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, appVersion)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup failed")
	}

	// Storage
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("auto-migrate failed")
	}
	if n, err := repo.PurgeExpiredIdempotency(context.Background(), db, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Msg("idempotency purge failed")
	} else if n > 0 {
		logger.Info().Int64("rows", n).Msg("purged expired idempotency records")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			logger.Fatal().Err(err).Msg("gorm tracing plugin failed")
		}
	}

	// Routes
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("version", appVersion).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownOTel(ctx); err != nil {
		logger.Error().Err(err).Msg("otel shutdown")
	}
	logger.Info().Msg("server stopped")
}
