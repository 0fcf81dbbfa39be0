package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/tradegate/gateway-api/internal/auth"
	"github.com/tradegate/gateway-api/internal/config"
	"github.com/tradegate/gateway-api/internal/database"
	"github.com/tradegate/gateway-api/internal/engine"
	"github.com/tradegate/gateway-api/internal/marketdata"
	"github.com/tradegate/gateway-api/internal/realtime"
	"github.com/tradegate/gateway-api/internal/stream"
	"github.com/tradegate/gateway-api/internal/trading"
	"github.com/tradegate/gateway-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	// Configure pretty logging for development
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the gateway with graceful shutdown support.
// It wires the history store, the hot-state cache and (when configured) the
// trading engine client, then exposes the HTTP and websocket surface.
func main() {
	cfg := config.Load()

	// Initialize history store
	db, err := database.NewDatabase(cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize history store")
	}

	// Initialize hot-state cache
	rdb, err := realtime.NewClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to connect to cache")
	}
	realtimeService := realtime.NewService(rdb, cfg.MarketDataChannel)

	// Initialize services and handlers
	authService := auth.NewService(cfg.JWTSecret)
	authHandlers := auth.NewGinHandlers(authService)
	// Register test credentials
	authService.RegisterAPICredentials(auth.TestAPIKey, auth.TestAPISecret)

	marketDataService := marketdata.NewService(marketdata.NewDatabase(db), realtimeService)
	marketDataHandlers := marketdata.NewGinHandlers(marketDataService)

	// Select the order strategy: authoritative engine when configured,
	// local-only otherwise.
	orderStore := trading.NewDatabase(db)
	cacheBalances := trading.NewCacheBalanceSource(realtimeService)

	var (
		strategy     trading.OrderStrategy
		balances     trading.BalanceSource
		engineClient *engine.GRPCClient
	)
	if cfg.EngineAddr != "" {
		pool := engine.NewPool(cfg.EnginePoolSize)
		engineClient, err = engine.NewGRPCClient(cfg.EngineAddr, pool, cfg.EngineCallTimeout)
		if err != nil {
			zlog.Fatal().Err(err).Msg("Failed to dial trading engine")
		}
		strategy = trading.NewEngineStrategy(engineClient)
		balances = trading.NewFallbackBalanceSource(trading.NewEngineBalanceSource(engineClient), cacheBalances)
		zlog.Info().Str("addr", cfg.EngineAddr).Int("pool_size", cfg.EnginePoolSize).
			Msg("Using authoritative trading engine")
	} else {
		strategy = trading.NewLocalStrategy(orderStore)
		balances = cacheBalances
		zlog.Warn().Msg("No trading engine configured, running in local-only mode")
	}

	tradingService := trading.NewService(strategy, balances, orderStore)
	tradingHandlers := trading.NewGinHandlers(tradingService)

	streamer := stream.NewStreamer(realtimeService)

	// Initialize router
	router := gin.Default()

	// Setup middleware
	router.Use(middleware.RateLimit())
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	// Setup API routes
	setupRoutes(router, cfg, authHandlers, tradingHandlers, marketDataHandlers, streamer)

	// Create server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if engineClient != nil {
		_ = engineClient.Close()
	}
	_ = rdb.Close()

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints and their handlers
// It groups routes by functionality and applies appropriate middleware:
// - Auth routes: Public endpoints for authentication
// - Order routes: Protected by JWT authentication
// - Market-data and balance routes: Public read endpoints
// - Websocket route: Live market-data feed
func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandlers *auth.GinHandlers,
	tradingHandlers *trading.GinHandlers,
	marketDataHandlers *marketdata.GinHandlers,
	streamer *stream.Streamer,
) {
	api := router.Group("/api")
	{
		// Auth routes
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/token", authHandlers.GenerateTokenHandler())
		}

		// Balance route
		api.GET("/balance/:currency", tradingHandlers.BalanceHandler())

		// Market-data routes
		marketData := api.Group("/market-data")
		{
			marketData.GET("/ticks/:symbol", marketDataHandlers.RecentTicksHandler())
			marketData.GET("/ticks/:symbol/range", marketDataHandlers.HistoricalTicksHandler())
			marketData.GET("/ohlcv/:symbol", marketDataHandlers.CandlesHandler())
			marketData.GET("/latest/:symbol", marketDataHandlers.LatestPriceHandler())
		}

		// Order routes
		orders := api.Group("/orders")
		orders.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			orders.POST("", tradingHandlers.PlaceOrderHandler())
			orders.DELETE("/:order_id", tradingHandlers.CancelOrderHandler())
			orders.GET("/:order_id/status", tradingHandlers.OrderStatusHandler())
			orders.GET("/history", tradingHandlers.OrderHistoryHandler())
			orders.GET("/history/range", tradingHandlers.OrdersByRangeHandler())
			orders.GET("/status/:status", tradingHandlers.OrdersByStatusHandler())
		}
	}

	// Live market-data feed
	router.GET("/ws/market-data", streamer.Handler())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
