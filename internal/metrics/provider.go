package metrics

import (
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/price"
	"context"
	"github.com/pkg/errors"
)

const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeNoPrice  = "no_price"
	outcomeError    = "error"
)

type instrumentedProvider struct {
	market.Provider
	m *BotMetrics
}

// InstrumentProvider counts every request p serves in ProviderRequests.
func InstrumentProvider(p market.Provider, m *BotMetrics) market.Provider {
	return &instrumentedProvider{Provider: p, m: m}
}

func (p *instrumentedProvider) Snapshot(ctx context.Context, id string) (price.Snapshot, error) {
	s, err := p.Provider.Snapshot(ctx, id)
	p.observe(err)
	return s, err
}

func (p *instrumentedProvider) UnitPrice(ctx context.Context, fromID, toID string) (float64, error) {
	v, err := p.Provider.UnitPrice(ctx, fromID, toID)
	p.observe(err)
	return v, err
}

func (p *instrumentedProvider) History(ctx context.Context, id string, days int) ([]market.PricePoint, error) {
	points, err := p.Provider.History(ctx, id, days)
	p.observe(err)
	return points, err
}

func (p *instrumentedProvider) observe(err error) {
	p.m.ProviderRequests.WithLabelValues(p.Name(), outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, market.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, market.ErrNoPrice):
		return outcomeNoPrice
	}
	return outcomeError
}
