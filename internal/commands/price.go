package commands

import (
	"coingecko-telegram-bot/internal/coin"
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/price"
	"coingecko-telegram-bot/lib/translation"
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strings"
)

// CommandPrice answers /p <ticker>. Expected conditions such as an unknown
// coin come back as reply text; only transient failures return an error.
func CommandPrice(ctx context.Context, p market.Provider, argument string) (string, error) {
	log.Debugf("processing command /p with argument :%s", argument)

	args := strings.Fields(argument)
	if len(args) == 0 {
		return translation.Translate("Format: /p [crypto ticker]. Example: /p BTC"), nil
	}

	ticker := strings.ToUpper(args[0])
	snapshot, err := p.Snapshot(ctx, coin.Resolve(ticker))
	if errors.Is(err, market.ErrNotFound) {
		return translation.Translate("❌ Coin with ticker '%s' was not found.", ticker), nil
	}
	if err != nil {
		return "", errors.Wrap(err, "command /p")
	}

	return price.FormatReport(ticker, snapshot), nil
}
