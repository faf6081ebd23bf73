package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auction-board/internal/domain"
	"auction-board/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BidService struct {
	store       *ItemStore
	validator   *BidValidator
	eventPub    domain.EventPublisher
	broadcaster domain.BoardBroadcaster
	quickBids   []decimal.Decimal
	now         func() time.Time
	log         logger.Logger
}

// QuickBid is one quick bid button: the increment and the bid it places.
type QuickBid struct {
	Increment decimal.Decimal `json:"increment"`
	Amount    decimal.Decimal `json:"amount"`
}

func NewBidService(
	store *ItemStore,
	validator *BidValidator,
	eventPub domain.EventPublisher,
	broadcaster domain.BoardBroadcaster,
	log logger.Logger,
) *BidService {
	return &BidService{
		store:       store,
		validator:   validator,
		eventPub:    eventPub,
		broadcaster: broadcaster,
		now:         time.Now,
		log:         log,
	}
}

func (s *BidService) SetClock(now func() time.Time) {
	s.now = now
}

// SetQuickBidIncrements restricts SuggestBid to the given increments.
func (s *BidService) SetQuickBidIncrements(increments []decimal.Decimal) {
	s.quickBids = increments
}

func (s *BidService) ListItems() []domain.AuctionItem {
	return s.store.ListItems()
}

func (s *BidService) GetItem(itemName string) (domain.AuctionItem, error) {
	return s.store.GetItem(itemName)
}

func (s *BidService) GetHistory(itemName string) ([]domain.Bid, error) {
	return s.store.GetHistory(itemName)
}

// SubmitBid validates a bid from raw form input and, when it is accepted,
// makes it the item's highest bid.
func (s *BidService) SubmitBid(ctx context.Context, itemName, bidder, amountText string) (*domain.BidAccepted, error) {
	s.log.Info("Placing bid", "item", itemName, "bidder", bidder, "amount", amountText)

	amount, err := s.validator.ParseRequest(itemName, bidder, amountText)
	if err != nil {
		s.log.Info("Bid rejected", "item", itemName, "bidder", bidder, "error", err)
		return nil, err
	}

	bidder = strings.TrimSpace(bidder)
	now := s.now()

	var accepted *domain.BidAccepted
	err = s.store.update(itemName, func(item *domain.AuctionItem) error {
		if err := s.validator.Check(item, amount, now); err != nil {
			return err
		}

		bid := domain.Bid{
			ID:     uuid.NewString(),
			Bidder: bidder,
			Amount: amount,
			Time:   now,
		}
		accepted = &domain.BidAccepted{
			ItemName:       item.Name,
			Bid:            bid,
			PreviousPrice:  item.CurrentPrice,
			PreviousBidder: item.HighestBidder,
		}

		item.BidHistory = append(item.BidHistory, bid)
		item.CurrentPrice = amount
		item.HighestBidder = bidder
		accepted.HistoryLength = len(item.BidHistory)
		return nil
	})
	if err != nil {
		s.log.Info("Bid rejected", "item", itemName, "bidder", bidder, "error", err)
		return nil, err
	}

	s.log.Info("Bid accepted", "item", itemName, "bidder", bidder, "amount", amount.String())
	s.announce(ctx, accepted)

	return accepted, nil
}

// announce tells the rest of the system about an accepted bid. The store is
// the source of truth, so failures here are only logged.
func (s *BidService) announce(ctx context.Context, accepted *domain.BidAccepted) {
	event := &domain.BidEvent{
		ID:            uuid.NewString(),
		Type:          domain.EventBidAccepted,
		ItemName:      accepted.ItemName,
		Bidder:        accepted.Bid.Bidder,
		Amount:        accepted.Bid.Amount,
		PreviousPrice: accepted.PreviousPrice,
		Timestamp:     accepted.Bid.Time,
	}
	if err := s.eventPub.PublishBidEvent(ctx, event); err != nil {
		s.log.Error("Failed to publish bid event", "item", accepted.ItemName, "error", err)
	}

	if err := s.broadcaster.BroadcastToBoard(ctx, map[string]interface{}{
		"type":           "bid_accepted",
		"item":           accepted.ItemName,
		"current_bid":    accepted.Bid.Amount,
		"current_winner": accepted.Bid.Bidder,
		"timestamp":      accepted.Bid.Time,
	}); err != nil {
		s.log.Error("Failed to broadcast bid", "item", accepted.ItemName, "error", err)
	}
}

// SuggestBid is the quick bid: the item's current price plus increment.
// The increment must be positive and, when quick bid increments are
// configured, one of them.
func (s *BidService) SuggestBid(itemName string, increment decimal.Decimal) (decimal.Decimal, error) {
	if !increment.IsPositive() {
		return decimalZero, fmt.Errorf("%w: got %s", domain.ErrInvalidIncrement, increment)
	}
	if len(s.quickBids) > 0 && !containsDecimal(s.quickBids, increment) {
		return decimalZero, fmt.Errorf("%w: %s is not offered", domain.ErrInvalidIncrement, increment)
	}

	item, err := s.store.GetItem(itemName)
	if err != nil {
		return decimalZero, err
	}
	return item.CurrentPrice.Add(increment), nil
}

// QuickBids lists the amount each configured increment would bid on item.
func (s *BidService) QuickBids(item *domain.AuctionItem) []QuickBid {
	bids := make([]QuickBid, 0, len(s.quickBids))
	for _, increment := range s.quickBids {
		bids = append(bids, QuickBid{
			Increment: increment,
			Amount:    item.CurrentPrice.Add(increment),
		})
	}
	return bids
}

// MinimumBid is the lowest amount SubmitBid would accept for item.
func (s *BidService) MinimumBid(item *domain.AuctionItem) decimal.Decimal {
	return s.validator.MinimumBid(item)
}

func containsDecimal(values []decimal.Decimal, v decimal.Decimal) bool {
	for _, candidate := range values {
		if candidate.Equal(v) {
			return true
		}
	}
	return false
}
