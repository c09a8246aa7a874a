package price

import (
	"coingecko-telegram-bot/lib/helpers"
	"fmt"
	"strconv"
	"strings"
)

const notAvailable = "N/A"

// Sentiment picks the emoji shown next to a percent change.
func Sentiment(pct *float64) string {
	if pct == nil {
		return ""
	}
	switch p := *pct; {
	case p >= 5:
		return "🍻"
	case p > 0:
		return "😀"
	case p < 0:
		return "😔"
	}
	return ""
}

// FormatReport renders the /p reply for ticker.
func FormatReport(ticker string, s Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", strings.ToUpper(ticker))
	fmt.Fprintf(&b, "$%s\n", optionalSignificant(s.USD, 4))
	fmt.Fprintf(&b, "₿: %s\n", optionalSignificant(s.BTC, 8))
	fmt.Fprintf(&b, "Ξ: %s\n", optionalSignificant(s.ETH, 8))
	fmt.Fprintf(&b, "H|L: $%s|$%s\n", FormatSignificant(s.High24h, 4), FormatSignificant(s.Low24h, 4))
	fmt.Fprintf(&b, "1h: %s%% %s\n", percent(s.Change1h), Sentiment(s.Change1h))
	fmt.Fprintf(&b, "24h: %s%% %s\n", percent(s.Change24h), Sentiment(s.Change24h))
	fmt.Fprintf(&b, "7d: %s%% %s\n", percent(s.Change7d), Sentiment(s.Change7d))
	fmt.Fprintf(&b, "Cap: #%s | $%s\n", rank(s.Rank), helpers.FormatGrouped(s.MarketCap, 0))
	fmt.Fprintf(&b, "FDV: $%s\n", helpers.FormatGrouped(s.FullyDilutedValuation, 0))
	fmt.Fprintf(&b, "Vol: $%s", helpers.FormatGrouped(s.TotalVolume, 0))

	return b.String()
}

func optionalSignificant(v *float64, sig int) string {
	if v == nil {
		return notAvailable
	}
	return FormatSignificant(*v, sig)
}

// percent leaves absent changes blank rather than N/A.
func percent(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func rank(r *int) string {
	if r == nil {
		return notAvailable
	}
	return strconv.Itoa(*r)
}
