package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-board/internal/config"
	"auction-board/internal/infrastructure/leader"
	"auction-board/internal/infrastructure/mysql"
	"auction-board/internal/infrastructure/redis"
	"auction-board/internal/services"
	"auction-board/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New().Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Initialize Redis
	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Initialize MySQL
	db, err := mysql.Open(ctx, cfg.MySQL)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	bidRepo := mysql.NewMySQLBidRepository(db)
	if err := bidRepo.EnsureSchema(ctx); err != nil {
		log.Error("Failed to create bid_history table", "error", err)
		os.Exit(1)
	}

	// Initialize services
	eventSubscriber := redis.NewRedisEventSubscriber(rdb, log)
	archiver := services.NewBidArchiver(bidRepo, log)
	election := leader.NewRedisLeaderElection(rdb, cfg.Archiver.LeaderKey, cfg.Archiver.LeaderTTL, log)

	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})

	// Start service
	go func() {
		defer close(done)
		err := archiver.RunAsLeader(runCtx, election, cfg.Instance.ID, cfg.Archiver.RetryInterval, eventSubscriber)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Bid archiver failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down bid archiver...")
	stop()
	<-done
	log.Info("Bid archiver stopped")
}
