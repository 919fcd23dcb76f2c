package handler

import (
	"time"

	"funding-platform/internal/adapter/http/middleware"
	"funding-platform/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Verifier       ports.InitDataVerifier
	IdentitySvc    ports.IdentityService
	TxSvc          ports.TransactionService
	FeedSvc        ports.LotsFeedService
	BotSvc         ports.BotService
	BalanceRepo    ports.BalanceRepository
	HealthCheckers []ports.HealthChecker
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	r.Use(middleware.RequestTimeout(deps.RequestTimeout))

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Relay webhook: always acknowledged, never authenticated by initData.
	webhookHandler := NewWebhookHandler(deps.BotSvc, deps.Logger)
	r.POST("/webhook", webhookHandler.Receive)

	api := r.Group("/api")

	// --- Public routes (no auth) ---
	lotsHandler := NewLotsHandler(deps.FeedSvc)
	api.GET("/lots", lotsHandler.ListActive)

	// --- initData-authenticated routes (mini-app API) ---
	auth := middleware.InitDataAuth(deps.Verifier, deps.IdentitySvc, deps.Logger)
	accountHandler := NewAccountHandler(deps.TxSvc, deps.BalanceRepo)
	txHandler := NewTransactionHandler(deps.TxSvc)

	authed := api.Group("", auth)
	{
		authed.POST("/me", accountHandler.Me)
		authed.POST("/me/donations", accountHandler.Donations)
		authed.POST("/me/participations", accountHandler.Participations)
		authed.POST("/donate", txHandler.Donate)
		authed.POST("/participate", txHandler.Participate)
		authed.POST("/admin/topup", txHandler.AdminTopup)
	}

	return r
}
