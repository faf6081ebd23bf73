package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoBidsYet is the highest bidder label of an item nobody has bid on.
const NoBidsYet = "No bids yet"

var minIncrementRate = decimal.New(5, -2)

type AuctionItem struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	MinIncrement  decimal.Decimal `json:"min_increment"`
	HighestBidder string          `json:"highest_bidder"`
	CreatedAt     time.Time       `json:"created_at"`
	EndTime       time.Time       `json:"end_time"`
	Active        bool            `json:"active"`
	BidHistory    []Bid           `json:"bid_history"`
}

// NewAuctionItem opens an item at now that closes after duration.
func NewAuctionItem(name, description string, startingPrice decimal.Decimal, duration time.Duration, now time.Time) *AuctionItem {
	return &AuctionItem{
		Name:          name,
		Description:   description,
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		MinIncrement:  startingPrice.Mul(minIncrementRate),
		HighestBidder: NoBidsYet,
		CreatedAt:     now,
		EndTime:       now.Add(duration),
		Active:        true,
		BidHistory:    []Bid{},
	}
}

// Duration is the configured length of the auction.
func (i *AuctionItem) Duration() time.Duration {
	return i.EndTime.Sub(i.CreatedAt)
}

// Clone returns a copy that shares no history storage with i.
func (i *AuctionItem) Clone() AuctionItem {
	c := *i
	c.BidHistory = make([]Bid, len(i.BidHistory))
	copy(c.BidHistory, i.BidHistory)
	return c
}

type Bid struct {
	ID     string          `json:"id"`
	Bidder string          `json:"bidder"`
	Amount decimal.Decimal `json:"amount"`
	Time   time.Time       `json:"time"`
}

// BidAccepted describes a bid that became the item's highest.
type BidAccepted struct {
	ItemName       string          `json:"item_name"`
	Bid            Bid             `json:"bid"`
	PreviousPrice  decimal.Decimal `json:"previous_price"`
	PreviousBidder string          `json:"previous_bidder"`
	HistoryLength  int             `json:"history_length"`
}

// ItemDisplay is what the board shows for one item at a given instant.
type ItemDisplay struct {
	Name                 string          `json:"name"`
	TimeRemainingSeconds int64           `json:"time_remaining_seconds"`
	ProgressFraction     float64         `json:"progress_fraction"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	HighestBidder        string          `json:"highest_bidder"`
	Active               bool            `json:"active"`
}

type TickResult struct {
	Items map[string]ItemDisplay `json:"items"`
	// Order lists item names in catalog order.
	Order []string `json:"order"`
	// Closed lists items whose auction ended during this tick.
	Closed []string `json:"closed,omitempty"`
}

type BidEvent struct {
	ID            string          `json:"id"`
	Type          BidEventType    `json:"type"`
	ItemName      string          `json:"item_name"`
	Bidder        string          `json:"bidder,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PreviousPrice decimal.Decimal `json:"previous_price"`
	Timestamp     time.Time       `json:"timestamp"`
}

type BidEventType string

const (
	EventBidAccepted  BidEventType = "bid_accepted"
	EventAuctionEnded BidEventType = "auction_ended"
)
