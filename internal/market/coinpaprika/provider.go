// Package coinpaprika serves market data from CoinPaprika as an alternative
// to CoinGecko.
package coinpaprika

import (
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/price"
	"context"
	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strings"
	"time"
)

// fiat lists the quote currencies CoinPaprika prices tickers in directly.
var fiat = map[string]bool{
	"usd": true, "eur": true, "gbp": true, "jpy": true, "idr": true, "sgd": true,
	"myr": true, "php": true, "thb": true, "krw": true, "inr": true, "aud": true,
}

type Provider struct {
	client *coinpaprika.Client
	now    func() time.Time
}

type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient replaces http.DefaultClient for every API call.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

func NewProvider(apiProKey string, opts ...Option) *Provider {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var clientOpts []coinpaprika.ClientOptions
	if apiProKey != "" {
		clientOpts = append(clientOpts, coinpaprika.WithAPIKey(apiProKey))
	}
	return &Provider{
		client: coinpaprika.NewClient(o.httpClient, clientOpts...),
		now:    time.Now,
	}
}

func (p *Provider) Name() string {
	return "coinpaprika"
}

func (p *Provider) Snapshot(ctx context.Context, id string) (price.Snapshot, error) {
	ticker, err := p.ticker(ctx, id, "USD,BTC,ETH")
	if err != nil {
		return price.Snapshot{}, err
	}

	usd := ticker.Quotes["USD"]
	s := price.Snapshot{
		USD:                   usd.Price,
		BTC:                   ticker.Quotes["BTC"].Price,
		ETH:                   ticker.Quotes["ETH"].Price,
		Change1h:              usd.PercentChange1h,
		Change24h:             usd.PercentChange24h,
		Change7d:              usd.PercentChange7d,
		MarketCap:             deref(usd.MarketCap),
		FullyDilutedValuation: dilutedValuation(ticker, usd.Price),
		TotalVolume:           deref(usd.Volume24h),
	}
	if ticker.Rank != nil && *ticker.Rank > 0 {
		s.Rank = price.Int(int(*ticker.Rank))
	}
	return s, nil
}

// dilutedValuation prices the max supply, or the total supply for uncapped
// coins. CoinPaprika reports 0 for an unknown supply.
func dilutedValuation(t *coinpaprika.Ticker, usd *float64) float64 {
	if usd == nil {
		return 0
	}
	supply := t.MaxSupply
	if supply == nil || *supply <= 0 {
		supply = t.TotalSupply
	}
	if supply == nil || *supply <= 0 {
		return 0
	}
	return float64(*supply) * *usd
}

func (p *Provider) UnitPrice(ctx context.Context, fromID, toID string) (float64, error) {
	if fiat[toID] {
		quote := strings.ToUpper(toID)
		ticker, err := p.ticker(ctx, fromID, quote)
		if err != nil {
			return 0, noPriceOr(err, fromID, toID)
		}
		if q, ok := ticker.Quotes[quote]; ok && q.Price != nil {
			return *q.Price, nil
		}
		return 0, errors.Wrapf(market.ErrNoPrice, "%s/%s", fromID, toID)
	}

	from, err := p.ticker(ctx, fromID, "USD")
	if err != nil {
		return 0, noPriceOr(err, fromID, toID)
	}
	to, err := p.ticker(ctx, toID, "USD")
	if err != nil {
		return 0, noPriceOr(err, fromID, toID)
	}
	fromUSD, toUSD := from.Quotes["USD"].Price, to.Quotes["USD"].Price
	if fromUSD == nil || toUSD == nil || *toUSD == 0 {
		return 0, errors.Wrapf(market.ErrNoPrice, "%s/%s", fromID, toID)
	}
	return *fromUSD / *toUSD, nil
}

func (p *Provider) History(ctx context.Context, id string, days int) ([]market.PricePoint, error) {
	c, err := p.searchCoin(ctx, id)
	if err != nil {
		return nil, err
	}

	interval := "1h"
	if days > 7 {
		interval = "1d"
	}
	tickers, err := p.client.Tickers.GetHistoricalTickersByID(*c.ID, &coinpaprika.TickersHistoricalOptions{
		Quote:    "USD",
		Limit:    1000,
		Interval: interval,
		Start:    p.now().AddDate(0, 0, -days),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "history %s", *c.ID)
	}

	points := make([]market.PricePoint, 0, len(tickers))
	for _, t := range tickers {
		if t.Timestamp == nil || t.Price == nil {
			continue
		}
		points = append(points, market.PricePoint{Time: *t.Timestamp, Price: *t.Price})
	}
	return points, nil
}

func (p *Provider) ticker(ctx context.Context, id, quotes string) (*coinpaprika.Ticker, error) {
	c, err := p.searchCoin(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ticker, err := p.client.Tickers.GetByID(*c.ID, &coinpaprika.TickersOptions{Quotes: quotes})
	if err != nil {
		return nil, errors.Wrapf(err, "ticker %s", *c.ID)
	}
	if ticker.Quotes == nil {
		return nil, errors.Wrapf(market.ErrNotFound, "%s is not actively traded", *c.ID)
	}
	return ticker, nil
}

// searchCoin prefers an exact symbol hit and falls back to a name search.
func (p *Provider) searchCoin(ctx context.Context, query string) (*coinpaprika.Coin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	searchOpts := &coinpaprika.SearchOptions{
		Query:      query,
		Categories: "currencies",
		Modifier:   "symbol_search",
	}
	result, err := p.client.Search.Search(searchOpts)
	if err != nil || len(result.Currencies) == 0 {
		log.Debugf("No results for symbol search, trying name search for '%s'", query)
		searchOpts = &coinpaprika.SearchOptions{Query: query, Categories: "currencies"}
		result, err = p.client.Search.Search(searchOpts)
		if err != nil {
			return nil, errors.Wrapf(err, "search %s", query)
		}
		if len(result.Currencies) == 0 {
			return nil, errors.Wrapf(market.ErrNotFound, "invalid coin name, ticker, or symbol: %s", query)
		}
	}

	return result.Currencies[0], nil
}

// noPriceOr turns an unknown coin into an unknown pair; other errors pass.
func noPriceOr(err error, fromID, toID string) error {
	if errors.Is(err, market.ErrNotFound) {
		return errors.Wrapf(market.ErrNoPrice, "%s/%s", fromID, toID)
	}
	return err
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
