// Package coingecko reads market data from the CoinGecko public API.
package coingecko

import (
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/price"
	"context"
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	defaultTimeout = 10 * time.Second
)

var errEmptyMarkets = errors.New("markets endpoint returned no items")

// StatusError is returned for any non-200 answer from the API.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("coingecko %s: unexpected status %d", e.Path, e.Code)
}

// Client talks to CoinGecko. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

// WithAPIKey sends key as the demo API key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout replaces the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: transport,
	}
}

func (c *Client) Name() string {
	return "coingecko"
}

// Snapshot tries the markets endpoint first and falls back to the full coin
// document when it fails or comes back empty.
func (c *Client) Snapshot(ctx context.Context, id string) (price.Snapshot, error) {
	s, err := c.snapshotFromMarkets(ctx, id)
	if err == nil {
		return s, nil
	}
	log.Debugf("falling back to coin endpoint for %s: %v", id, err)

	return c.snapshotFromCoin(ctx, id)
}

func (c *Client) snapshotFromMarkets(ctx context.Context, id string) (price.Snapshot, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("ids", id)
	params.Set("price_change_percentage", "1h,24h,7d")

	var items []marketItem
	if err := c.get(ctx, "/coins/markets", params, &items); err != nil {
		return price.Snapshot{}, err
	}
	if len(items) == 0 {
		return price.Snapshot{}, errEmptyMarkets
	}

	item := items[0]
	s := price.Snapshot{
		USD:                   item.CurrentPrice,
		Change1h:              item.Change1hInCurrency,
		Change24h:             item.Change24h,
		Change7d:              item.Change7dInCurrency,
		High24h:               orZero(item.High24h),
		Low24h:                orZero(item.Low24h),
		MarketCap:             orZero(item.MarketCap),
		FullyDilutedValuation: orZero(item.FullyDilutedValuation),
		TotalVolume:           orZero(item.TotalVolume),
		Rank:                  item.MarketCapRank,
	}

	// markets only quotes one currency; BTC and ETH stay absent if this fails
	sp, err := c.simplePrice(ctx, []string{id}, []string{"btc", "eth", "usd"})
	if err != nil {
		log.Debugf("simple price for %s unavailable: %v", id, err)
		return s, nil
	}
	s.BTC = sp[id].get("btc")
	s.ETH = sp[id].get("eth")

	return s, nil
}

func (c *Client) snapshotFromCoin(ctx context.Context, id string) (price.Snapshot, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")
	params.Set("sparkline", "false")

	var detail coinDetail
	if err := c.get(ctx, "/coins/"+url.PathEscape(id), params, &detail); err != nil {
		if isNotFound(err) {
			return price.Snapshot{}, errors.Wrapf(market.ErrNotFound, "coin %s", id)
		}
		return price.Snapshot{}, errors.Wrapf(err, "coin %s", id)
	}

	md := detail.MarketData
	return price.Snapshot{
		USD:                   md.CurrentPrice.get("usd"),
		BTC:                   md.CurrentPrice.get("btc"),
		ETH:                   md.CurrentPrice.get("eth"),
		Change1h:              md.Change1hInCurrency.get("usd"),
		Change24h:             md.Change24h,
		Change7d:              md.Change7d,
		High24h:               orZero(md.High24h.get("usd")),
		Low24h:                orZero(md.Low24h.get("usd")),
		MarketCap:             orZero(md.MarketCap.get("usd")),
		FullyDilutedValuation: orZero(md.FullyDilutedValuation.get("usd")),
		TotalVolume:           orZero(md.TotalVolume.get("usd")),
		Rank:                  md.MarketCapRank,
	}, nil
}

// UnitPrice returns the price of one fromID in toID. When toID is not a
// currency CoinGecko quotes against, the rate is crossed through USD.
func (c *Client) UnitPrice(ctx context.Context, fromID, toID string) (float64, error) {
	sp, err := c.simplePrice(ctx, []string{fromID}, []string{toID})
	if err != nil {
		return 0, errors.Wrapf(err, "price %s/%s", fromID, toID)
	}
	if p := sp[fromID].get(toID); p != nil {
		return *p, nil
	}

	sp, err = c.simplePrice(ctx, []string{fromID, toID}, []string{"usd"})
	if err != nil {
		return 0, errors.Wrapf(err, "price %s/%s via usd", fromID, toID)
	}
	from, to := sp[fromID].get("usd"), sp[toID].get("usd")
	if from == nil || to == nil || *to == 0 {
		return 0, errors.Wrapf(market.ErrNoPrice, "%s/%s", fromID, toID)
	}
	return *from / *to, nil
}

// History returns USD prices over the last days days.
func (c *Client) History(ctx context.Context, id string, days int) ([]market.PricePoint, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", strconv.Itoa(days))

	var chart marketChart
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", params, &chart); err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(market.ErrNotFound, "coin %s", id)
		}
		return nil, errors.Wrapf(err, "history %s", id)
	}

	points := make([]market.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		points = append(points, market.PricePoint{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Price: p[1],
		})
	}
	return points, nil
}

func (c *Client) simplePrice(ctx context.Context, ids, vsCurrencies []string) (simplePrice, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", strings.Join(vsCurrencies, ","))

	var sp simplePrice
	if err := c.get(ctx, "/simple/price", params, &sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrapf(err, "build request %s", path)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, Path: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
