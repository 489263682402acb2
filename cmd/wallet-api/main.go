// Command wallet-api serves the wallet read API.
//
//	@title                      Wallet API
//	@version                    1.0
//	@description                Accounts, goals, loans, balances, quick payees and transactions. Every failure is returned as a uniform error envelope carrying the request trace id.
//	@BasePath                   /v1
//	@securityDefinitions.apikey BearerAuth
//	@in                         header
//	@name                       Authorization
//	@description                "Bearer <token>"
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
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/docs"
	"github.com/tbourn/go-wallet-backend/internal/config"
	httpapi "github.com/tbourn/go-wallet-backend/internal/http"
	"github.com/tbourn/go-wallet-backend/internal/observability"
	"github.com/tbourn/go-wallet-backend/internal/repo"
	"github.com/tbourn/go-wallet-backend/internal/services"
	"github.com/tbourn/go-wallet-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	appVersion := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL, appVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		if err := observability.ShutdownWithin(shutdownOTel, 5*time.Second); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	if sysutil.IsTruthy(os.Getenv("SEED_DEMO")) {
		seedDemo(ctx, cfg, db)
	}

	gin.SetMode(cfg.GinMode)
	docs.SwaggerInfo.BasePath = cfg.APIBasePath
	docs.SwaggerInfo.Version = appVersion

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
		log.Info().Str("addr", srv.Addr).Str("base", cfg.APIBasePath).Str("version", appVersion).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// seedDemo loads the demo wallet and logs a fresh bearer token for it.
func seedDemo(ctx context.Context, cfg config.Config, db *gorm.DB) {
	userID := sysutil.FirstNonEmpty(os.Getenv("DEMO_USER_ID"), "demo-user")
	if err := repo.SeedDemo(ctx, db, userID, time.Now()); err != nil {
		log.Fatal().Err(err).Msg("seed demo wallet")
	}
	auth := services.NewAuthService(db)
	auth.TTL = cfg.SessionTTL
	token, err := auth.Issue(ctx, userID)
	if err != nil {
		log.Fatal().Err(err).Msg("issue demo token")
	}
	log.Info().Str("user_id", userID).Str("token", token).Dur("ttl", cfg.SessionTTL).Msg("demo wallet ready")
}
