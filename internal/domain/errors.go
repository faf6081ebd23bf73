package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type RejectReason string

const (
	MissingField  RejectReason = "missing_field"
	NotANumber    RejectReason = "not_a_number"
	InvalidItem   RejectReason = "invalid_item"
	AuctionClosed RejectReason = "auction_closed"
	BidTooLow     RejectReason = "bid_too_low"
)

// BidRejectedError is returned for every bid that fails validation.
// errors.Is matches it against the Err* sentinels by reason.
type BidRejectedError struct {
	Reason       RejectReason
	Message      string
	CurrentPrice decimal.Decimal
}

func (e *BidRejectedError) Error() string {
	return fmt.Sprintf("bid rejected (%s): %s", e.Reason, e.Message)
}

func (e *BidRejectedError) Is(target error) bool {
	t, ok := target.(*BidRejectedError)
	return ok && t.Reason == e.Reason
}

var (
	ErrMissingField  = &BidRejectedError{Reason: MissingField, Message: "please fill in all fields"}
	ErrNotANumber    = &BidRejectedError{Reason: NotANumber, Message: "bid amount must be a number"}
	ErrInvalidItem   = &BidRejectedError{Reason: InvalidItem, Message: "please select a valid item"}
	ErrAuctionClosed = &BidRejectedError{Reason: AuctionClosed, Message: "this auction has ended"}
	ErrBidTooLow     = &BidRejectedError{Reason: BidTooLow, Message: "bid must be higher than current price"}
)

// Reject builds a rejection for reason with a custom message.
func Reject(reason RejectReason, currentPrice decimal.Decimal, format string, args ...interface{}) *BidRejectedError {
	return &BidRejectedError{
		Reason:       reason,
		Message:      fmt.Sprintf(format, args...),
		CurrentPrice: currentPrice,
	}
}

// ErrInvalidIncrement rejects a quick bid increment. It is not a bid
// rejection: nothing is placed.
var ErrInvalidIncrement = errors.New("invalid quick bid increment")
