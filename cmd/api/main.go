package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"funding-platform/config"
	httpHandler "funding-platform/internal/adapter/http/handler"
	pgStorage "funding-platform/internal/adapter/storage/postgres"
	redisStorage "funding-platform/internal/adapter/storage/redis"
	"funding-platform/internal/adapter/telegram"
	"funding-platform/internal/core/ports"
	"funding-platform/internal/service"
	"funding-platform/pkg/logger"

	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting funding platform")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	lotRepo := pgStorage.NewLotRepo(pool)
	donationRepo := pgStorage.NewDonationRepo(pool)
	participationRepo := pgStorage.NewParticipationRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)

	// Initialize Redis stores
	cooldownStore := redisStorage.NewCooldownStore(rdb)

	// Initialize core services
	verifier := service.NewInitDataVerifier(cfg.Bot.Token)
	identitySvc := service.NewIdentityService(userRepo, balanceRepo, log)
	txSvc := service.NewTransactionService(
		userRepo,
		balanceRepo,
		lotRepo,
		donationRepo,
		participationRepo,
		ledgerRepo,
		decimal.NewFromFloat(cfg.Platform.FeeRate),
		cfg.Bot.AdminSet(),
		log,
	)
	feedSvc := service.NewLotsFeedService(lotRepo, participationRepo, log)

	notifier := telegram.NewClient(cfg.Bot.APIBaseURL, cfg.Bot.Token, &http.Client{Timeout: 10 * time.Second}, log)
	botSvc := service.NewBotService(identitySvc, balanceRepo, notifier, cooldownStore, cfg.Bot.Cooldown, cfg.Bot.WebAppURL, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Verifier:       verifier,
		IdentitySvc:    identitySvc,
		TxSvc:          txSvc,
		FeedSvc:        feedSvc,
		BotSvc:         botSvc,
		BalanceRepo:    balanceRepo,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
