package services

import (
	"time"

	"auction-board/internal/domain"
	"auction-board/pkg/format"

	"github.com/shopspring/decimal"
)

// ItemDisplayView is an ItemDisplay plus the text a viewer renders.
type ItemDisplayView struct {
	domain.ItemDisplay
	TimeRemaining    string `json:"time_remaining"`
	CurrentPriceText string `json:"current_price_text"`
}

func NewItemDisplayView(display domain.ItemDisplay) ItemDisplayView {
	return ItemDisplayView{
		ItemDisplay:      display,
		TimeRemaining:    format.Remaining(display.TimeRemainingSeconds, display.Active),
		CurrentPriceText: format.Price(display.CurrentPrice),
	}
}

// BoardViews lists the displays of result in catalog order.
func BoardViews(result *domain.TickResult) []ItemDisplayView {
	views := make([]ItemDisplayView, 0, len(result.Order))
	for _, name := range result.Order {
		views = append(views, NewItemDisplayView(result.Items[name]))
	}
	return views
}

func BoardUpdateMessage(result *domain.TickResult) map[string]interface{} {
	return map[string]interface{}{
		"type":   "board_update",
		"items":  BoardViews(result),
		"closed": result.Closed,
	}
}

// ItemView is the detail panel for one item.
type ItemView struct {
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	StartingPrice    decimal.Decimal `json:"starting_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	CurrentPriceText string          `json:"current_price_text"`
	MinIncrement     decimal.Decimal `json:"min_increment"`
	MinimumBid       decimal.Decimal `json:"minimum_bid"`
	MinimumBidText   string          `json:"minimum_bid_text"`
	QuickBids        []QuickBid      `json:"quick_bids"`
	HighestBidder    string          `json:"highest_bidder"`
	EndTime          time.Time       `json:"end_time"`
	Active           bool            `json:"active"`
	BidCount         int             `json:"bid_count"`
}

// NewItemView builds the detail panel, taking the bidding rules from s.
func (s *BidService) NewItemView(item domain.AuctionItem) ItemView {
	minimum := s.MinimumBid(&item)
	return ItemView{
		Name:             item.Name,
		Description:      item.Description,
		StartingPrice:    item.StartingPrice,
		CurrentPrice:     item.CurrentPrice,
		CurrentPriceText: format.Price(item.CurrentPrice),
		MinIncrement:     item.MinIncrement,
		MinimumBid:       minimum,
		MinimumBidText:   format.Price(minimum),
		QuickBids:        s.QuickBids(&item),
		HighestBidder:    item.HighestBidder,
		EndTime:          item.EndTime,
		Active:           item.Active,
		BidCount:         len(item.BidHistory),
	}
}
