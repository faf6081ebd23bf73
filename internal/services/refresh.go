package services

import (
	"time"

	"auction-board/internal/domain"
)

// DefaultProgressWindow is the countdown span a full progress bar stands for.
const DefaultProgressWindow = 60 * time.Minute

// ProgressWindow returns the span that maps to a progress fraction of 1.
type ProgressWindow func(item *domain.AuctionItem) time.Duration

// FixedWindow uses the same span for every item.
func FixedWindow(d time.Duration) ProgressWindow {
	return func(*domain.AuctionItem) time.Duration {
		return d
	}
}

// ItemDurationWindow uses each item's own configured duration.
func ItemDurationWindow(item *domain.AuctionItem) time.Duration {
	return item.Duration()
}

// DeriveDisplay computes what the board shows for item at now. It does not
// modify item.
func DeriveDisplay(item *domain.AuctionItem, now time.Time, window ProgressWindow) domain.ItemDisplay {
	remaining := item.EndTime.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	active := item.Active && remaining > 0
	progress := 0.0
	if !active {
		remaining = 0
	} else if total := window(item); total > 0 {
		progress = clamp(remaining.Seconds()/total.Seconds(), 0, 1)
	}

	return domain.ItemDisplay{
		Name:                 item.Name,
		TimeRemainingSeconds: int64(remaining / time.Second),
		ProgressFraction:     progress,
		CurrentPrice:         item.CurrentPrice,
		HighestBidder:        item.HighestBidder,
		Active:               active,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Engine applies the countdown to the store. Closing is one way: an item
// that tick marks inactive never becomes active again.
type Engine struct {
	store  *ItemStore
	window ProgressWindow
}

func NewEngine(store *ItemStore, window ProgressWindow) *Engine {
	if window == nil {
		window = FixedWindow(DefaultProgressWindow)
	}
	return &Engine{
		store:  store,
		window: window,
	}
}

func (e *Engine) Tick(now time.Time) *domain.TickResult {
	return e.store.tick(now, func(item *domain.AuctionItem) domain.ItemDisplay {
		return DeriveDisplay(item, now, e.window)
	})
}

// Snapshot derives the board at now without closing anything, for readers
// that must not race the scheduler for the closing transition.
func (e *Engine) Snapshot(now time.Time) *domain.TickResult {
	items := e.store.ListItems()
	result := &domain.TickResult{
		Items: make(map[string]domain.ItemDisplay, len(items)),
		Order: make([]string, 0, len(items)),
	}
	for i := range items {
		result.Items[items[i].Name] = DeriveDisplay(&items[i], now, e.window)
		result.Order = append(result.Order, items[i].Name)
	}
	return result
}
