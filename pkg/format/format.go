// Package format renders board values the way viewers read them.
package format

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const EndedLabel = "Auction Ended"

var printer = message.NewPrinter(language.English)

// Price renders an amount as dollars with thousands separators, e.g. $1,050.00.
func Price(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return printer.Sprintf("$%.2f", f)
}

// Remaining renders seconds as H:MM:SS, or EndedLabel once the auction is over.
func Remaining(seconds int64, active bool) string {
	if !active {
		return EndedLabel
	}
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
