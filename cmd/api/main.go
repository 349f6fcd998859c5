// @title                       Sunflower API
// @version                     1.0
// @description                 Account registration, login and email verification.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunflower/sunflower-api/internal/api"
	"github.com/sunflower/sunflower-api/internal/api/handler"
	"github.com/sunflower/sunflower-api/internal/api/middleware"
	"github.com/sunflower/sunflower-api/internal/core/service"
	mongodb "github.com/sunflower/sunflower-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sunflower/sunflower-api/internal/infrastructure/db/redis"
	"github.com/sunflower/sunflower-api/internal/infrastructure/mail"
	"github.com/sunflower/sunflower-api/internal/infrastructure/queue"
	"github.com/sunflower/sunflower-api/internal/pkg/config"
	"github.com/sunflower/sunflower-api/internal/pkg/security"
	"github.com/sunflower/sunflower-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "sunflower-api"})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "sunflower-api",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	audit := mongodb.NewAuditRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := audit.EnsureIndexes(ctx); err != nil {
		return err
	}

	// --- Notification ---
	mailer, err := mail.NewMailer(mail.Config{
		Host:       cfg.SMTP.Host,
		User:       cfg.SMTP.User,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		SkipVerify: cfg.SMTP.SkipVerify,
	}, log.With().Str("component", "mailer").Logger())
	if err != nil {
		return err
	}
	dispatcher := queue.NewDispatcher(cfg.Notifier.Workers, cfg.Notifier.Buffer, mailer,
		log.With().Str("component", "notifier").Logger())
	dispatcher.Start(ctx)
	log.Info().Bool("smtp_enabled", mailer.IsEnabled()).Int("workers", cfg.Notifier.Workers).Msg("notifier started")

	// --- Security ---
	tokens, err := security.NewTokenCodec(security.TokenConfig{
		Secret:         cfg.Auth.JWTSecret,
		Algorithm:      cfg.Auth.JWTAlgorithm,
		AccessTTL:      cfg.Auth.AccessTokenTTL,
		EmailVerifyTTL: cfg.Auth.EmailVerifyTokenTTL,
	})
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	// --- Services ---
	authService, err := service.NewAuthService(users, audit, hasher, tokens, dispatcher, cfg.FrontendURL,
		log.With().Str("component", "auth").Logger())
	if err != nil {
		return err
	}
	adminService := service.NewAdminAuthService(authService, cfg.AdminSignupEnabled)

	e := api.NewRouter(api.Dependencies{
		Log:          log,
		AuthService:  authService,
		AdminService: adminService,
		Gate:         middleware.NewGate(tokens, users),
		RateLimiter:  redisdb.NewRateLimiter(rdb),
		HealthChecks: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		ResendCooldown: cfg.Auth.ResendVerificationCooldown,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
