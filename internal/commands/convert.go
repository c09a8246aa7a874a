package commands

import (
	"coingecko-telegram-bot/internal/coin"
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/price"
	"coingecko-telegram-bot/lib/translation"
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"math"
	"strconv"
	"strings"
)

const defaultConvertTarget = "idr"

// CommandConvert answers /cv <amount> <from> [to]; to defaults to IDR.
func CommandConvert(ctx context.Context, p market.Provider, argument string) (string, error) {
	log.Debugf("processing command /cv with argument :%s", argument)

	args := strings.Fields(argument)
	if len(args) < 2 {
		return translation.Translate("Format: /cv [amount] [from coin] [to coin (optional, default: IDR)]\n" +
			"Example: /cv 1 btc idr or /cv 1 btc usdt"), nil
	}

	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return translation.Translate("Amount must be a number."), nil
	}

	from := strings.ToLower(args[1])
	to := defaultConvertTarget
	if len(args) > 2 {
		to = strings.ToLower(args[2])
	}

	unitPrice, err := p.UnitPrice(ctx, coin.Resolve(from), coin.Resolve(to))
	if errors.Is(err, market.ErrNoPrice) || errors.Is(err, market.ErrNotFound) {
		return translation.Translate("❌ Cannot convert %s to %s. Make sure both tickers are valid.",
			strings.ToUpper(from), strings.ToUpper(to)), nil
	}
	if err != nil {
		return "", errors.Wrap(err, "command /cv")
	}

	return price.Convert(amount, from, to, unitPrice), nil
}
