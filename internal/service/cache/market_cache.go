package cache

import (
	"sync"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
)

// MarketCache is the concurrency-safe store of the latest order-book snapshot
// and the most recent candle series per instrument. Writers replace entries
// wholesale; readers never observe a torn snapshot.
type MarketCache struct {
	mu      sync.RWMutex
	books   map[string]*models.OrderBookSnapshot
	candles map[string][]models.Candle
}

// NewMarketCache creates an empty market cache.
func NewMarketCache() *MarketCache {
	return &MarketCache{
		books:   make(map[string]*models.OrderBookSnapshot),
		candles: make(map[string][]models.Candle),
	}
}

// SetOrderBook replaces the stored snapshot for an instrument.
func (c *MarketCache) SetOrderBook(snapshot *models.OrderBookSnapshot) {
	if snapshot == nil || snapshot.FIGI == "" {
		return
	}
	c.mu.Lock()
	c.books[snapshot.FIGI] = snapshot
	c.mu.Unlock()
}

// OrderBook returns the latest snapshot for an instrument, if any.
func (c *MarketCache) OrderBook(figi string) (*models.OrderBookSnapshot, bool) {
	c.mu.RLock()
	snap, ok := c.books[figi]
	c.mu.RUnlock()
	return snap, ok
}

// SetCandles replaces the recent candle series for an instrument and interval.
func (c *MarketCache) SetCandles(figi string, interval drepo.Interval, candles []models.Candle) {
	cp := make([]models.Candle, len(candles))
	copy(cp, candles)
	c.mu.Lock()
	c.candles[candleKey(figi, interval)] = cp
	c.mu.Unlock()
}

// Candles returns the recent candle series for an instrument and interval.
func (c *MarketCache) Candles(figi string, interval drepo.Interval) ([]models.Candle, bool) {
	c.mu.RLock()
	cs, ok := c.candles[candleKey(figi, interval)]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	cp := make([]models.Candle, len(cs))
	copy(cp, cs)
	return cp, true
}

// Len returns the number of cached order books.
func (c *MarketCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}

func candleKey(figi string, interval drepo.Interval) string {
	return figi + "|" + string(interval)
}

var _ drepo.OrderBookSink = (*MarketCache)(nil)
