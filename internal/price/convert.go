package price

import (
	"coingecko-telegram-bot/internal/coin"
	"coingecko-telegram-bot/lib/helpers"
	"fmt"
)

// Convert renders amount of from expressed in to, given the price of one unit
// of from in to. from and to may be tickers or identifiers.
func Convert(amount float64, from, to string, unitPrice float64) string {
	result := amount * unitPrice

	var amountFormatted, resultFormatted string
	switch {
	case coin.Resolve(to) == "idr":
		resultFormatted = "Rp" + helpers.FormatGrouped(result, 0)
		amountFormatted = helpers.FormatGrouped(amount, 4)
	case result < 1:
		resultFormatted = FormatSignificant(result, 6)
		amountFormatted = helpers.FormatGrouped(amount, 4)
	default:
		resultFormatted = helpers.FormatGrouped(result, 2)
		amountFormatted = helpers.FormatGrouped(amount, 2)
	}

	return fmt.Sprintf("%s %s is equal to:\n%s %s",
		amountFormatted, coin.Symbol(from), resultFormatted, coin.Symbol(to))
}
