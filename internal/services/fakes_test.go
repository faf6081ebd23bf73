package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auction-board/internal/domain"
	"auction-board/pkg/logger"

	"github.com/peterldowns/testy/assert"
	"github.com/shopspring/decimal"
)

var (
	testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	errBroken = errors.New("broken collaborator")
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.BidEvent
	err    error
}

func (p *recordingPublisher) PublishBidEvent(_ context.Context, event *domain.BidEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []*domain.BidEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*domain.BidEvent(nil), p.events...)
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	err      error
}

func (b *recordingBroadcaster) BroadcastToBoard(_ context.Context, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
	return b.err
}

func (b *recordingBroadcaster) Messages() []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]interface{}(nil), b.messages...)
}

type recordingBoardCache struct {
	saved []*domain.TickResult
	err   error
}

func (c *recordingBoardCache) SaveBoard(_ context.Context, result *domain.TickResult) error {
	c.saved = append(c.saved, result)
	return c.err
}

type recordingBidRepository struct {
	saved []*domain.BidEvent
	err   error
}

func (r *recordingBidRepository) SaveBidEvent(_ context.Context, event *domain.BidEvent) error {
	r.saved = append(r.saved, event)
	return r.err
}

func (r *recordingBidRepository) GetBidHistory(_ context.Context, itemName string) ([]*domain.BidEvent, error) {
	var out []*domain.BidEvent
	for _, e := range r.saved {
		if e.ItemName == itemName {
			out = append(out, e)
		}
	}
	return out, nil
}

// sliceSubscriber delivers a fixed list of events and returns.
type sliceSubscriber struct {
	events     []*domain.BidEvent
	handlerErr []error
}

func (s *sliceSubscriber) SubscribeToBidEvents(_ context.Context, handler domain.EventHandler) error {
	for _, e := range s.events {
		s.handlerErr = append(s.handlerErr, handler(e))
	}
	return nil
}

func newTestItem(name string, startingPrice int64, duration time.Duration) *domain.AuctionItem {
	return domain.NewAuctionItem(name, "", decimal.NewFromInt(startingPrice), duration, testStart)
}

func newTestStore(t testing.TB) *ItemStore {
	store, err := NewItemStore(
		newTestItem("Vintage Rolex Submariner", 1000, 60*time.Minute),
		newTestItem("Ming Dynasty Vase", 2500, 45*time.Minute),
		newTestItem("Monet Original Sketch", 5000, 30*time.Minute),
	)
	assert.NoError(t, err)
	return store
}

type testHarness struct {
	store       *ItemStore
	service     *BidService
	publisher   *recordingPublisher
	broadcaster *recordingBroadcaster
	now         time.Time
}

func newHarness(t testing.TB, enforceMinIncrement bool) *testHarness {
	h := &testHarness{
		store:       newTestStore(t),
		publisher:   &recordingPublisher{},
		broadcaster: &recordingBroadcaster{},
		now:         testStart.Add(time.Minute),
	}
	h.service = NewBidService(h.store, NewBidValidator(enforceMinIncrement), h.publisher, h.broadcaster, logger.NewNop())
	h.service.SetClock(func() time.Time { return h.now })
	return h
}
