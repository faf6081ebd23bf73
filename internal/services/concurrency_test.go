package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"auction-board/internal/domain"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

// Bids, ticks and readers run against one store. Run with -race.
func TestBoard_ConcurrentBidsTicksAndReads(t *testing.T) {
	h := newHarness(t, false)
	engine := NewEngine(h.store, nil)

	var clock atomic.Int64
	clock.Store(testStart.UnixNano())
	h.service.SetClock(func() time.Time { return time.Unix(0, clock.Load()).UTC() })

	names := []string{rolex, "Ming Dynasty Vase", "Monet Original Sketch"}
	stop := make(chan struct{})
	var accepted atomic.Int64
	var wg sync.WaitGroup

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for n := 0; ; n++ {
				select {
				case <-stop:
					return
				default:
				}
				amount := fmt.Sprintf("%d", 5000+n*4+g+1)
				if _, err := h.service.SubmitBid(context.Background(), names[n%len(names)], fmt.Sprintf("bidder-%d", g), amount); err == nil {
					accepted.Add(1)
				}
			}
		}(g)
	}

	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			previous := map[string]decimal.Decimal{}
			for {
				select {
				case <-stop:
					return
				default:
				}

				for _, item := range h.service.ListItems() {
					if len(item.BidHistory) == 0 {
						check.Equal(t, domain.NoBidsYet, item.HighestBidder)
						continue
					}
					last := item.BidHistory[len(item.BidHistory)-1]
					check.Equal(t, last.Amount.String(), item.CurrentPrice.String())
					check.Equal(t, last.Bidder, item.HighestBidder)
				}

				snapshot := engine.Snapshot(time.Unix(0, clock.Load()).UTC())
				for _, name := range names {
					price := snapshot.Items[name].CurrentPrice
					check.False(t, price.LessThan(previous[name]))
					previous[name] = price
				}
			}
		}()
	}

	historyAtClose := map[string]int{}
	closedAt := map[string]time.Time{}
	for step := 0; step <= 65; step++ {
		now := testStart.Add(time.Duration(step) * time.Minute)
		clock.Store(now.UnixNano())

		result := engine.Tick(now)
		for _, name := range result.Closed {
			item, err := h.service.GetItem(name)
			assert.NoError(t, err)
			historyAtClose[name] = len(item.BidHistory)
			closedAt[name] = now
		}
		for name := range closedAt {
			check.False(t, result.Items[name].Active)
		}
		time.Sleep(200 * time.Microsecond)
	}

	// Keep bidding against the closed items for a little longer.
	time.Sleep(5 * time.Millisecond)
	close(stop)
	wg.Wait()

	assert.Equal(t, len(names), len(closedAt))
	total := 0
	for _, name := range names {
		item, err := h.service.GetItem(name)
		assert.NoError(t, err)
		check.False(t, item.Active)
		check.Equal(t, historyAtClose[name], len(item.BidHistory))
		for _, bid := range item.BidHistory {
			check.True(t, bid.Time.Before(item.EndTime))
			check.True(t, bid.Time.Before(closedAt[name]))
		}
		total += len(item.BidHistory)
	}
	check.Equal(t, int64(total), accepted.Load())
	check.Equal(t, total, len(h.publisher.Events()))
}
