package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/server/http/handlers"
	"github.com/polkiloo/digistore/internal/server/http/middleware"
)

const (
	maxMultipartMemory = 8 << 20
	maxDecodedBody     = 32 << 20
)

// Params lists the router dependencies.
type Params struct {
	fx.In

	Facade   handlers.StoreFacade
	Gatherer prometheus.Gatherer
	Config   *config.Config
	Logger   *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.MaxMultipartMemory = maxMultipartMemory

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest(maxDecodedBody))
	// Files are streamed as stored; only API responses are compressed.
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`^/download/`, `/receipt$`})))

	authHandler := handlers.NewAuthHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade, p.Logger)
	adminHandler := handlers.NewAdminHandler(p.Facade)
	inventoryHandler := handlers.NewInventoryHandler(p.Facade)
	downloadHandler := handlers.NewDownloadHandler(p.Facade)
	webhookHandler := handlers.NewWebhookHandler(p.Facade, p.Config.TelegramWebhookSecret, p.Logger)
	healthHandler := handlers.NewHealthHandler(p.Facade, p.Logger)

	engine.GET("/health", healthHandler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))
	engine.GET("/download/:token", downloadHandler.Download)
	engine.POST("/webhook/telegram", webhookHandler.Telegram)

	api := engine.Group("/api")
	api.POST("/orders", orderHandler.Submit)
	api.GET("/orders/:id", orderHandler.Status)

	admin := api.Group("/admin")
	admin.POST("/login", authHandler.Login)
	admin.POST("/logout", authHandler.Logout)

	adminAuth := admin.Group("")
	adminAuth.Use(middleware.AdminRequired(p.Facade))
	adminAuth.GET("/orders", adminHandler.List)
	adminAuth.GET("/orders/:id", adminHandler.Get)
	adminAuth.GET("/orders/:id/audit", adminHandler.Audit)
	adminAuth.GET("/orders/:id/receipt", adminHandler.Receipt)
	adminAuth.POST("/orders/:id/confirm", adminHandler.Confirm)
	adminAuth.POST("/orders/:id/reject", adminHandler.Reject)
	adminAuth.POST("/orders/:id/redeliver", adminHandler.Redeliver)
	adminAuth.POST("/products/:id/keys", inventoryHandler.ImportKeys)
	adminAuth.DELETE("/keys/:id", inventoryHandler.DeleteKey)
	adminAuth.GET("/tokens", inventoryHandler.Tokens)

	return engine
}
