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

	"auction-board/internal/api/handlers"
	"auction-board/internal/config"
	"auction-board/internal/domain"
	"auction-board/internal/infrastructure/mysql"
	"auction-board/internal/infrastructure/redis"
	"auction-board/internal/infrastructure/websocket"
	"auction-board/internal/services"
	"auction-board/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New().Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	log.Info("Starting auction board", "config", cfg.GetConfigString())

	// Open the catalog
	store, err := services.BuildStore(cfg.Board.Catalog, time.Now())
	if err != nil {
		log.Error("Failed to build catalog", "error", err)
		os.Exit(1)
	}
	engine := services.NewEngine(store, services.ProgressWindowFor(cfg.Board))

	// Redis is optional; without it events and the board cache go nowhere
	var eventPublisher domain.EventPublisher = services.NopPublisher{}
	var boardCache domain.BoardCache = services.NopBoardCache{}
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		log.Info("Connected to Redis", "address", cfg.Redis.Address)

		eventPublisher = redis.NewRedisEventPublisher(rdb)
		boardCache = redis.NewRedisBoardCache(rdb)
	}

	// MySQL is optional; it only backs the archived history route
	var bidArchive domain.BidRepository
	if cfg.MySQL.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		db, err := mysql.Open(ctx, cfg.MySQL)
		if err != nil {
			cancel()
			log.Error("Failed to connect to MySQL", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		bidRepo := mysql.NewMySQLBidRepository(db)
		err = bidRepo.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Error("Failed to create bid_history table", "error", err)
			os.Exit(1)
		}
		bidArchive = bidRepo
		log.Info("Connected to MySQL bid archive")
	}

	quickBids, err := services.QuickBidIncrements(cfg.Bidding)
	if err != nil {
		log.Error("Invalid quick bid increments", "error", err)
		os.Exit(1)
	}

	// Initialize connection manager and notifier
	connManager := websocket.NewConnectionManager(log)
	broadcaster := websocket.NewWebSocketNotifier(connManager)

	// Initialize bid service
	bidService := services.NewBidService(
		store,
		services.NewBidValidator(cfg.Bidding.EnforceMinIncrement),
		eventPublisher,
		broadcaster,
		log,
	)
	bidService.SetQuickBidIncrements(quickBids)

	// Initialize scheduler
	scheduler := services.NewCronRefreshScheduler(engine, cfg.Board.TickInterval, broadcaster,
		boardCache, eventPublisher, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","method":"${method}","uri":"${uri}","status":${status},"error":"${error}","latency_human":"${latency_human}"}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
		MaxAge: 86400,
	}))

	// Initialize handlers
	boardHandler := handlers.NewBoardHandler(bidService, engine, log)
	if bidArchive != nil {
		boardHandler.SetArchive(bidArchive)
	}
	wsHandlers := handlers.NewWebSocketHandlers(bidService, engine, connManager, log)

	// API routes
	boardHandler.Register(e.Group("/api/v1"))

	// WebSocket routes
	e.GET("/ws/board", wsHandlers.Echo())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "auction-board",
			"instance":  cfg.Instance.ID,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Start background services
	if err := scheduler.Start(context.Background()); err != nil {
		log.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting auction board server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction board...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := scheduler.Stop(); err != nil {
		log.Error("Failed to stop scheduler", "error", err)
	}
	if err := connManager.CloseAll(); err != nil {
		log.Error("Failed to close board connections", "error", err)
	}
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Auction board stopped")
}
