package commands

import (
	"sync"
	"time"
)

type CacheItem struct {
	ChartData  []byte
	Caption    string
	Expiration time.Time
}

type chartCache struct {
	mu    sync.Mutex
	items map[string]*CacheItem
	now   func() time.Time
}

var charts = newChartCache()

func newChartCache() *chartCache {
	return &chartCache{
		items: make(map[string]*CacheItem),
		now:   time.Now,
	}
}

func (c *chartCache) get(key string) (*CacheItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, found := c.items[key]; found && c.now().Before(item.Expiration) {
		return item, true
	}
	return nil, false
}

func (c *chartCache) set(key string, chartData []byte, caption string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, item := range c.items {
		if !now.Before(item.Expiration) {
			delete(c.items, k)
		}
	}
	c.items[key] = &CacheItem{
		ChartData:  chartData,
		Caption:    caption,
		Expiration: now.Add(duration),
	}
}
