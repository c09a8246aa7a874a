// Package coin maps user typed tickers to market data identifiers.
package coin

import "strings"

// aliases holds the tickers whose identifier differs from the ticker itself.
var aliases = map[string]string{
	"idr":  "idr",
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"usdt": "tether",
}

var symbols = func() map[string]string {
	m := make(map[string]string, len(aliases))
	for ticker, id := range aliases {
		m[id] = strings.ToUpper(ticker)
	}
	return m
}()

// Resolve returns the identifier for ticker. Unknown tickers pass through
// lower-cased; whether they exist upstream is for the provider to report.
func Resolve(ticker string) string {
	t := strings.ToLower(ticker)
	if id, ok := aliases[t]; ok {
		return id
	}
	return t
}

// Symbol is the display form of a ticker or identifier: "bitcoin" and "btc"
// both render as "BTC".
func Symbol(s string) string {
	if sym, ok := symbols[strings.ToLower(s)]; ok {
		return sym
	}
	return strings.ToUpper(s)
}
