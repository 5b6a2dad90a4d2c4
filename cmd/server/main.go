package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/authhub/identity-service/internal/api"
	"github.com/authhub/identity-service/internal/core/service"
	"github.com/authhub/identity-service/internal/core/token"
	"github.com/authhub/identity-service/internal/infrastructure/config"
	mongodb "github.com/authhub/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/authhub/identity-service/internal/infrastructure/db/redis"
	"github.com/authhub/identity-service/internal/infrastructure/mail"
	"github.com/authhub/identity-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Connections ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories and stores ---
	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure user indexes")
	}
	sessions := redisdb.NewSessionStore(rdb)

	// --- Mail delivery (background workers) ---
	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	dispatcher := mail.NewDispatcher(cfg.SMTP.Workers, sender, log)
	dispatcher.Start(ctx)

	// --- Core services ---
	codec, err := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token codec")
	}
	authService := service.NewAuthService(users, sessions, codec, dispatcher, service.Config{
		AccessTokenTTL:      cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL:     cfg.Auth.RefreshTokenTTL,
		ConfirmTokenTTL:     cfg.Auth.ConfirmTokenTTL,
		ConfirmationEnabled: cfg.Auth.EmailConfirmationEnabled,
		PublicURL:           cfg.PublicURL,
		ConfirmRedirectURL:  cfg.Auth.ConfirmRedirectURL,
	}, log)

	// --- HTTP ---
	e := api.NewRouter(api.RouterDeps{
		AuthService: authService,
		Users:       users,
		Codec:       codec,
		CookieName:  cfg.Auth.AccessCookieName,
		Mongo:       db,
		Redis:       rdb,
		Log:         log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("identity service started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}
