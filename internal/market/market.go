// Package market defines what the bot needs from a market data provider.
package market

import (
	"coingecko-telegram-bot/internal/price"
	"context"
	"github.com/pkg/errors"
	"time"
)

var (
	// ErrNotFound means the provider has no coin under the identifier.
	ErrNotFound = errors.New("coin not found")
	// ErrNoPrice means the provider knows no price for the currency pair.
	ErrNoPrice = errors.New("no price for pair")
)

// PricePoint is one sample of a price history.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// Provider looks up market data by coin identifier. Errors other than
// ErrNotFound and ErrNoPrice are transient.
type Provider interface {
	Name() string
	Snapshot(ctx context.Context, id string) (price.Snapshot, error)
	UnitPrice(ctx context.Context, fromID, toID string) (float64, error)
	History(ctx context.Context, id string, days int) ([]PricePoint, error)
}
