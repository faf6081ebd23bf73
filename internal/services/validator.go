package services

import (
	"regexp"
	"strings"
	"time"

	"auction-board/internal/domain"
	"auction-board/pkg/format"

	"github.com/shopspring/decimal"
)

var decimalZero = decimal.Zero

// An amount is plain dollars and cents. Exponents are refused before any
// arithmetic, and the integer part fits the archive's DECIMAL(18,2).
var (
	amountPattern   = regexp.MustCompile(`^-?(\d+(\.\d{0,2})?|\.\d{1,2})$`)
	maxAmountDigits = 16
	cent            = decimal.New(1, -2)
)

type BidValidator struct {
	enforceMinIncrement bool
}

func NewBidValidator(enforceMinIncrement bool) *BidValidator {
	return &BidValidator{enforceMinIncrement: enforceMinIncrement}
}

// ParseRequest checks the raw form fields and returns the parsed amount.
func (v *BidValidator) ParseRequest(itemName, bidder, amountText string) (decimal.Decimal, error) {
	amountText = strings.TrimSpace(amountText)
	if strings.TrimSpace(itemName) == "" || strings.TrimSpace(bidder) == "" || amountText == "" {
		return decimalZero, domain.ErrMissingField
	}

	return ParseAmount(amountText)
}

// ParseAmount reads a dollars and cents amount such as "1050" or "1050.25".
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if !amountPattern.MatchString(text) {
		return decimalZero, domain.Reject(domain.NotANumber, decimalZero,
			"amount must be a number with at most two decimals, got %q", text)
	}
	whole, _, _ := strings.Cut(strings.TrimPrefix(text, "-"), ".")
	if len(strings.TrimLeft(whole, "0")) > maxAmountDigits {
		return decimalZero, domain.Reject(domain.NotANumber, decimalZero,
			"amount must have at most %d digits before the decimal point", maxAmountDigits)
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimalZero, domain.Reject(domain.NotANumber, decimalZero, "amount must be a number, got %q", text)
	}
	return amount, nil
}

// Check decides whether amount may be placed on item at now.
func (v *BidValidator) Check(item *domain.AuctionItem, amount decimal.Decimal, now time.Time) error {
	if !item.Active || !now.Before(item.EndTime) {
		return domain.Reject(domain.AuctionClosed, item.CurrentPrice, "the auction for %q has ended", item.Name)
	}

	if amount.LessThanOrEqual(item.CurrentPrice) {
		return domain.Reject(domain.BidTooLow, item.CurrentPrice,
			"bid must be higher than current price (%s)", format.Price(item.CurrentPrice))
	}

	if v.enforceMinIncrement {
		minimum := v.MinimumBid(item)
		if amount.LessThan(minimum) {
			return domain.Reject(domain.BidTooLow, item.CurrentPrice,
				"bid must be at least %s", format.Price(minimum))
		}
	}

	return nil
}

// MinimumBid is the lowest amount Check accepts for item: one cent over the
// current price, or a full MinIncrement over it when that is enforced. It is
// rounded up to whole cents so that it is always a placeable amount.
func (v *BidValidator) MinimumBid(item *domain.AuctionItem) decimal.Decimal {
	if v.enforceMinIncrement {
		return item.CurrentPrice.Add(item.MinIncrement).RoundCeil(2)
	}
	return item.CurrentPrice.Add(cent)
}
