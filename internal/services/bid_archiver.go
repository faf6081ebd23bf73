package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-board/internal/domain"
	"auction-board/pkg/logger"
)

// BidArchiver copies accepted bids from the event stream into long-term storage.
type BidArchiver struct {
	bidRepo domain.BidRepository
	log     logger.Logger
}

func NewBidArchiver(bidRepo domain.BidRepository, log logger.Logger) *BidArchiver {
	return &BidArchiver{
		bidRepo: bidRepo,
		log:     log,
	}
}

var errNotLeader = errors.New("archiver is no longer the leader")

func (a *BidArchiver) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	return a.consume(ctx, subscriber, nil)
}

// RunAsLeader archives only while instanceID holds the archiver lease. Redis
// delivers every event to every subscriber, so only the leader may write.
// When the lease is lost it steps down and campaigns again until ctx ends.
func (a *BidArchiver) RunAsLeader(ctx context.Context, election domain.LeaderElection, instanceID string,
	retry time.Duration, subscriber domain.EventSubscriber) error {
	for {
		leaderCtx, err := a.campaign(ctx, election, instanceID, retry)
		if err != nil {
			return err
		}

		steppedDown, err := a.lead(leaderCtx, election, instanceID, subscriber)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !steppedDown {
			return err
		}
		a.log.Warn("Stepped down as archiver leader", "instance_id", instanceID)
	}
}

func (a *BidArchiver) campaign(ctx context.Context, election domain.LeaderElection, instanceID string,
	retry time.Duration) (context.Context, error) {
	ticker := time.NewTicker(retry)
	defer ticker.Stop()

	for {
		leaderCtx, became, err := election.BecomeLeader(ctx, instanceID)
		if err != nil {
			a.log.Error("Failed to attempt leadership", "instance_id", instanceID, "error", err)
		} else if became {
			a.log.Info("Became archiver leader", "instance_id", instanceID)
			return leaderCtx, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// lead archives until leaderCtx ends, the lease check before a write fails,
// or the subscriber returns. It always releases the lease.
func (a *BidArchiver) lead(leaderCtx context.Context, election domain.LeaderElection, instanceID string,
	subscriber domain.EventSubscriber) (bool, error) {
	runCtx, stop := context.WithCancel(leaderCtx)
	defer stop()
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := election.ReleaseLeadership(releaseCtx, instanceID); err != nil {
			a.log.Error("Failed to release leadership", "instance_id", instanceID, "error", err)
		}
	}()

	err := a.consume(runCtx, subscriber, func(ctx context.Context) error {
		isLeader, err := election.IsLeader(ctx, instanceID)
		if err == nil && isLeader {
			return nil
		}
		a.log.Warn("Lease check failed before write", "instance_id", instanceID, "error", err)
		stop()
		return errNotLeader
	})

	return runCtx.Err() != nil, err
}

// consume feeds events to handleBidEvent. beforeWrite, when set, runs before
// every bid is stored and vetoes the write by returning an error.
func (a *BidArchiver) consume(ctx context.Context, subscriber domain.EventSubscriber,
	beforeWrite func(ctx context.Context) error) error {
	a.log.Info("Starting bid archiver")
	return subscriber.SubscribeToBidEvents(ctx, func(event *domain.BidEvent) error {
		if beforeWrite != nil && event.Type == domain.EventBidAccepted {
			if err := beforeWrite(ctx); err != nil {
				return err
			}
		}
		return a.handleBidEvent(ctx, event)
	})
}

func (a *BidArchiver) handleBidEvent(ctx context.Context, event *domain.BidEvent) error {
	switch event.Type {
	case domain.EventBidAccepted:
		a.log.Info("Storing bid event", "item", event.ItemName, "bidder", event.Bidder, "amount", event.Amount.String())
		return a.bidRepo.SaveBidEvent(ctx, event)
	case domain.EventAuctionEnded:
		a.log.Info("Auction ended", "item", event.ItemName, "winner", event.Bidder, "final_price", event.Amount.String())
		return nil
	}

	return fmt.Errorf("unknown event type %q for item %q", event.Type, event.ItemName)
}
