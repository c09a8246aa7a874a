package commands

import (
	"coingecko-telegram-bot/internal/chart"
	"coingecko-telegram-bot/internal/coin"
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/price"
	"coingecko-telegram-bot/lib/translation"
	"context"
	"fmt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strconv"
	"strings"
	"time"
)

const (
	defaultChartDays = 7
	maxChartDays     = 365
	chartCacheTTL    = 5 * time.Minute
)

// CommandChart answers /c <ticker> [days]. A nil image with a caption means
// the caption is the whole reply.
func CommandChart(ctx context.Context, p market.Provider, argument string) ([]byte, string, error) {
	log.Debugf("processing command /c with argument :%s", argument)

	args := strings.Fields(argument)
	if len(args) == 0 {
		return nil, translation.Translate("Format: /c [crypto ticker] [days, 1-365]. Example: /c BTC 30"), nil
	}

	ticker := strings.ToUpper(args[0])
	days := defaultChartDays
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > maxChartDays {
			return nil, translation.Translate("Format: /c [crypto ticker] [days, 1-365]. Example: /c BTC 30"), nil
		}
		days = n
	}

	id := coin.Resolve(ticker)
	key := fmt.Sprintf("%s|%s|%d", p.Name(), id, days)
	if cachedItem, found := charts.get(key); found {
		log.Debugf("returning cached chart for %s", key)
		return cachedItem.ChartData, cachedItem.Caption, nil
	}

	points, err := p.History(ctx, id, days)
	if errors.Is(err, market.ErrNotFound) {
		return nil, translation.Translate("❌ Coin with ticker '%s' was not found.", ticker), nil
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "command /c")
	}

	title := fmt.Sprintf("%s %dd price chart (USD)", coin.Symbol(ticker), days)
	chartData, err := chart.RenderPNG(title, points)
	if errors.Is(err, chart.ErrNotEnoughData) {
		return nil, translation.Translate("Not enough price history to draw a chart for %s.", ticker), nil
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "command /c")
	}

	last := points[len(points)-1]
	caption := fmt.Sprintf("%s %dd | $%s", coin.Symbol(ticker), days, price.FormatSignificant(last.Price, 4))
	charts.set(key, chartData, caption, chartCacheTTL)

	return chartData, caption, nil
}
