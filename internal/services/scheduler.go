package services

import (
	"context"
	"fmt"
	"time"

	"auction-board/internal/domain"
	"auction-board/pkg/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// CronRefreshScheduler ticks the board on a fixed cadence and pushes the
// result to viewers, the board cache and the event stream.
type CronRefreshScheduler struct {
	cron        *cron.Cron
	engine      *Engine
	interval    time.Duration
	broadcaster domain.BoardBroadcaster
	boardCache  domain.BoardCache
	eventPub    domain.EventPublisher
	now         func() time.Time
	log         logger.Logger
}

func NewCronRefreshScheduler(engine *Engine, interval time.Duration, broadcaster domain.BoardBroadcaster,
	boardCache domain.BoardCache, eventPub domain.EventPublisher, log logger.Logger) *CronRefreshScheduler {
	return &CronRefreshScheduler{
		cron:        cron.New(cron.WithSeconds()),
		engine:      engine,
		interval:    interval,
		broadcaster: broadcaster,
		boardCache:  boardCache,
		eventPub:    eventPub,
		now:         time.Now,
		log:         log,
	}
}

func (s *CronRefreshScheduler) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CronRefreshScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting refresh scheduler", "interval", s.interval.String())

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		s.refresh(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *CronRefreshScheduler) Stop() error {
	s.log.Info("Stopping refresh scheduler")
	<-s.cron.Stop().Done()
	return nil
}

func (s *CronRefreshScheduler) refresh(ctx context.Context) *domain.TickResult {
	now := s.now()
	result := s.engine.Tick(now)

	for _, name := range result.Closed {
		display := result.Items[name]
		s.log.Info("Auction ended", "item", name, "winner", display.HighestBidder,
			"final_price", display.CurrentPrice.String())

		if err := s.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
			ID:        uuid.NewString(),
			Type:      domain.EventAuctionEnded,
			ItemName:  name,
			Bidder:    display.HighestBidder,
			Amount:    display.CurrentPrice,
			Timestamp: now,
		}); err != nil {
			s.log.Error("Failed to publish auction ended event", "item", name, "error", err)
		}
	}

	if err := s.broadcaster.BroadcastToBoard(ctx, BoardUpdateMessage(result)); err != nil {
		s.log.Error("Failed to broadcast board", "error", err)
	}

	if err := s.boardCache.SaveBoard(ctx, result); err != nil {
		s.log.Error("Failed to cache board", "error", err)
	}

	return result
}
