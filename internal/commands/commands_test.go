package commands

import (
	"bytes"
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/price"
	"context"
	"github.com/pkg/errors"
	"strings"
	"testing"
	"time"
)

type fakeProvider struct {
	snapshot    price.Snapshot
	snapshotErr error
	unitPrice   float64
	priceErr    error
	history     []market.PricePoint
	historyErr  error

	snapshotIDs  []string
	pairs        [][2]string
	historyCalls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Snapshot(_ context.Context, id string) (price.Snapshot, error) {
	f.snapshotIDs = append(f.snapshotIDs, id)
	return f.snapshot, f.snapshotErr
}

func (f *fakeProvider) UnitPrice(_ context.Context, fromID, toID string) (float64, error) {
	f.pairs = append(f.pairs, [2]string{fromID, toID})
	return f.unitPrice, f.priceErr
}

func (f *fakeProvider) History(_ context.Context, id string, days int) ([]market.PricePoint, error) {
	f.historyCalls++
	return f.history, f.historyErr
}

func TestCommandPrice(t *testing.T) {
	p := &fakeProvider{snapshot: price.Snapshot{USD: price.Float(65000), Rank: price.Int(1)}}

	text, err := CommandPrice(context.Background(), p, "btc")
	if err != nil {
		t.Fatalf("CommandPrice: %v", err)
	}
	if len(p.snapshotIDs) != 1 || p.snapshotIDs[0] != "bitcoin" {
		t.Fatalf("provider asked for %v, want [bitcoin]", p.snapshotIDs)
	}
	if !strings.HasPrefix(text, "BTC\n$65,000\n") {
		t.Fatalf("unexpected report %q", text)
	}
	if !strings.Contains(text, "Cap: #1 | $0") {
		t.Fatalf("unexpected report %q", text)
	}
}

func TestCommandPriceUsage(t *testing.T) {
	p := &fakeProvider{}
	text, err := CommandPrice(context.Background(), p, "   ")
	if err != nil {
		t.Fatalf("CommandPrice: %v", err)
	}
	if !strings.HasPrefix(text, "Format: /p") {
		t.Fatalf("expected usage, got %q", text)
	}
	if len(p.snapshotIDs) != 0 {
		t.Fatal("provider must not be called without a ticker")
	}
}

func TestCommandPriceNotFound(t *testing.T) {
	p := &fakeProvider{snapshotErr: errors.Wrap(market.ErrNotFound, "coin xyz")}
	text, err := CommandPrice(context.Background(), p, "xyz")
	if err != nil {
		t.Fatalf("not found should be a reply, got error %v", err)
	}
	if !strings.Contains(text, "'XYZ'") {
		t.Fatalf("unexpected reply %q", text)
	}
}

func TestCommandPriceTransient(t *testing.T) {
	p := &fakeProvider{snapshotErr: errors.New("timeout")}
	if _, err := CommandPrice(context.Background(), p, "btc"); err == nil {
		t.Fatal("expected transient error")
	}
}

func TestCommandConvert(t *testing.T) {
	cases := []struct {
		name     string
		args     string
		price    float64
		wantPair [2]string
		want     string
	}{
		{"default target", "1 btc", 1_000_000_000, [2]string{"bitcoin", "idr"}, "1.0000 BTC is equal to:\nRp1,000,000,000 IDR"},
		{"explicit target", "2.5 ETH USDT", 3000, [2]string{"ethereum", "tether"}, "2.50 ETH is equal to:\n7,500.00 USDT"},
		{"unknown ticker passes through", "10 doge usdt", 0.08, [2]string{"doge", "tether"}, "10.0000 DOGE is equal to:\n0.800000 USDT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{unitPrice: tc.price}
			got, err := CommandConvert(context.Background(), p, tc.args)
			if err != nil {
				t.Fatalf("CommandConvert: %v", err)
			}
			if len(p.pairs) != 1 || p.pairs[0] != tc.wantPair {
				t.Fatalf("pairs = %v, want %v", p.pairs, tc.wantPair)
			}
			if got != tc.want {
				t.Fatalf("CommandConvert(%q) = %q, want %q", tc.args, got, tc.want)
			}
		})
	}
}

func TestCommandConvertBadInput(t *testing.T) {
	cases := []struct {
		name string
		args string
		want string
	}{
		{"missing args", "1", "Format: /cv"},
		{"not a number", "abc btc", "Amount must be a number."},
		{"nan", "NaN btc", "Amount must be a number."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{}
			got, err := CommandConvert(context.Background(), p, tc.args)
			if err != nil {
				t.Fatalf("CommandConvert: %v", err)
			}
			if !strings.HasPrefix(got, tc.want) {
				t.Fatalf("got %q, want prefix %q", got, tc.want)
			}
			if len(p.pairs) != 0 {
				t.Fatal("provider must not be called on bad input")
			}
		})
	}
}

func TestCommandConvertNoPrice(t *testing.T) {
	p := &fakeProvider{priceErr: errors.Wrap(market.ErrNoPrice, "bitcoin/xyz")}
	got, err := CommandConvert(context.Background(), p, "1 btc xyz")
	if err != nil {
		t.Fatalf("CommandConvert: %v", err)
	}
	if !strings.Contains(got, "Cannot convert BTC to XYZ") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestCommandConvertTransient(t *testing.T) {
	p := &fakeProvider{priceErr: errors.New("connection refused")}
	if _, err := CommandConvert(context.Background(), p, "1 btc"); err == nil {
		t.Fatal("expected transient error")
	}
}

func TestCommandChart(t *testing.T) {
	charts = newChartCache()
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := &fakeProvider{history: []market.PricePoint{
		{Time: start, Price: 60000},
		{Time: start.Add(24 * time.Hour), Price: 61000},
		{Time: start.Add(48 * time.Hour), Price: 60500},
	}}

	data, caption, err := CommandChart(context.Background(), p, "btc 3")
	if err != nil {
		t.Fatalf("CommandChart: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatal("expected PNG data")
	}
	if caption != "BTC 3d | $60,500" {
		t.Fatalf("caption = %q", caption)
	}

	if _, _, err := CommandChart(context.Background(), p, "BTC 3"); err != nil {
		t.Fatalf("cached CommandChart: %v", err)
	}
	if p.historyCalls != 1 {
		t.Fatalf("history fetched %d times, want 1", p.historyCalls)
	}
}

func TestCommandChartArguments(t *testing.T) {
	charts = newChartCache()
	p := &fakeProvider{}
	for _, args := range []string{"", "btc 0", "btc 400", "btc week"} {
		data, caption, err := CommandChart(context.Background(), p, args)
		if err != nil || data != nil || !strings.HasPrefix(caption, "Format: /c") {
			t.Fatalf("CommandChart(%q) = %v, %q, %v", args, data != nil, caption, err)
		}
	}
	if p.historyCalls != 0 {
		t.Fatal("provider must not be called on bad arguments")
	}
}

func TestCommandChartNotEnoughData(t *testing.T) {
	charts = newChartCache()
	p := &fakeProvider{history: []market.PricePoint{{Time: time.Now(), Price: 1}}}
	data, caption, err := CommandChart(context.Background(), p, "newcoin")
	if err != nil || data != nil {
		t.Fatalf("expected caption-only reply, got data=%v err=%v", data != nil, err)
	}
	if !strings.Contains(caption, "NEWCOIN") {
		t.Fatalf("caption = %q", caption)
	}
}

func TestChartCacheExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newChartCache()
	c.now = func() time.Time { return now }

	c.set("k", []byte{1}, "caption", time.Minute)
	if _, ok := c.get("k"); !ok {
		t.Fatal("expected fresh item")
	}

	now = now.Add(time.Minute)
	if _, ok := c.get("k"); ok {
		t.Fatal("expected expired item")
	}

	c.set("other", nil, "", time.Minute)
	if _, ok := c.items["k"]; ok {
		t.Fatal("expired item should be pruned on set")
	}
}
