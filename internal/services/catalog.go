package services

import (
	"fmt"
	"time"

	"auction-board/internal/config"
	"auction-board/internal/domain"

	"github.com/shopspring/decimal"
)

// BuildStore opens every catalog item at now.
func BuildStore(catalog []config.CatalogItem, now time.Time) (*ItemStore, error) {
	items := make([]*domain.AuctionItem, 0, len(catalog))
	for i, entry := range catalog {
		if entry.StartingPrice <= 0 {
			return nil, fmt.Errorf("catalog item %d (%q): starting price must be positive", i, entry.Name)
		}
		if entry.Duration <= 0 {
			return nil, fmt.Errorf("catalog item %d (%q): duration must be positive", i, entry.Name)
		}
		items = append(items, domain.NewAuctionItem(
			entry.Name,
			entry.Description,
			decimal.NewFromFloat(entry.StartingPrice),
			entry.Duration,
			now,
		))
	}
	return NewItemStore(items...)
}

// ProgressWindowFor picks the progress window the board config asks for.
func ProgressWindowFor(cfg config.BoardConfig) ProgressWindow {
	if cfg.ProgressPerItem {
		return ItemDurationWindow
	}
	return FixedWindow(cfg.ProgressWindow)
}

// QuickBidIncrements converts the configured quick bid buttons to decimals.
func QuickBidIncrements(cfg config.BiddingConfig) ([]decimal.Decimal, error) {
	increments := make([]decimal.Decimal, 0, len(cfg.QuickBidIncrements))
	for _, f := range cfg.QuickBidIncrements {
		if f <= 0 {
			return nil, fmt.Errorf("quick bid increment must be positive, got %v", f)
		}
		increments = append(increments, decimal.NewFromFloat(f))
	}
	return increments, nil
}
