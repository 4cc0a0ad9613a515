package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	pkgcache "MarketPulse/pkg/cache"
)

func snapshot(figi string, levels int) *models.OrderBookSnapshot {
	snap := &models.OrderBookSnapshot{FIGI: figi, ObservedAt: time.Now()}
	for i := 0; i < levels; i++ {
		snap.Bids = append(snap.Bids, models.OrderBookLevel{
			Price:    decimal.NewFromInt(int64(100 - i)),
			Quantity: int64(10 * (i + 1)),
		})
		snap.Asks = append(snap.Asks, models.OrderBookLevel{
			Price:    decimal.NewFromInt(int64(101 + i)),
			Quantity: int64(10 * (i + 1)),
		})
	}
	return snap
}

func TestMarketCacheSetAndGet(t *testing.T) {
	c := NewMarketCache()

	c.SetOrderBook(snapshot("F1", 3))
	got, ok := c.OrderBook("F1")
	if !ok {
		t.Fatal("expected a snapshot")
	}
	if got.FIGI != "F1" || len(got.Bids) != 3 || len(got.Asks) != 3 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	if _, ok := c.OrderBook("F2"); ok {
		t.Fatal("expected a miss for unknown instrument")
	}
}

func TestMarketCacheIgnoresEmptySnapshots(t *testing.T) {
	c := NewMarketCache()
	c.SetOrderBook(nil)
	c.SetOrderBook(&models.OrderBookSnapshot{})
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Len())
	}
}

// Concurrent writers replace whole snapshots; a reader must never observe a
// snapshot whose sides come from different writes.
func TestMarketCacheNoTornSnapshots(t *testing.T) {
	c := NewMarketCache()

	const writers = 8
	const iterations = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(levels int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				c.SetOrderBook(snapshot("F1", levels))
			}
		}(w + 1)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < writers*iterations; i++ {
			snap, ok := c.OrderBook("F1")
			if !ok {
				continue
			}
			if len(snap.Bids) != len(snap.Asks) {
				t.Errorf("torn snapshot: %d bids vs %d asks", len(snap.Bids), len(snap.Asks))
				return
			}
		}
	}()

	wg.Wait()
	<-done
}

func TestMarketCacheCandleCopies(t *testing.T) {
	c := NewMarketCache()
	series := []models.Candle{{Close: decimal.NewFromInt(100), Volume: 10}}

	c.SetCandles("F1", drepo.Interval5Min, series)
	series[0].Volume = 999

	got, ok := c.Candles("F1", drepo.Interval5Min)
	if !ok {
		t.Fatal("expected cached candles")
	}
	if got[0].Volume != 10 {
		t.Fatalf("cache shares storage with caller: volume %d", got[0].Volume)
	}

	// The returned slice is also a copy.
	got[0].Volume = 555
	again, _ := c.Candles("F1", drepo.Interval5Min)
	if again[0].Volume != 10 {
		t.Fatalf("reader mutated cached candles: volume %d", again[0].Volume)
	}

	if _, ok := c.Candles("F1", drepo.IntervalHour); ok {
		t.Fatal("intervals must be cached independently")
	}
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSource) GetCandles(_ context.Context, figi string, _ int, _ drepo.Interval) ([]models.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []models.Candle{{
		OpenTime: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		Open:     decimal.NewFromInt(100),
		High:     decimal.NewFromInt(101),
		Low:      decimal.NewFromInt(99),
		Close:    decimal.NewFromInt(100),
		Volume:   1000,
	}}, nil
}

func TestCachedCandleSourceHitsCacheOnRepeat(t *testing.T) {
	source := &countingSource{}
	mem := pkgcache.NewMemoryCache()
	defer mem.Close()

	cached := NewCachedCandleSource(source, mem, time.Minute, nil)

	for i := 0; i < 3; i++ {
		candles, err := cached.GetCandles(context.Background(), "F1", 2, drepo.Interval5Min)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if len(candles) != 1 {
			t.Fatalf("get %d: expected 1 candle, got %d", i, len(candles))
		}
	}

	if source.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", source.calls)
	}
}

func TestCachedCandleSourceKeysByRequest(t *testing.T) {
	source := &countingSource{}
	mem := pkgcache.NewMemoryCache()
	defer mem.Close()

	cached := NewCachedCandleSource(source, mem, time.Minute, nil)

	ctx := context.Background()
	if _, err := cached.GetCandles(ctx, "F1", 2, drepo.Interval5Min); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := cached.GetCandles(ctx, "F1", 2, drepo.IntervalHour); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := cached.GetCandles(ctx, "F2", 2, drepo.Interval5Min); err != nil {
		t.Fatalf("get: %v", err)
	}

	if source.calls != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", source.calls)
	}
}

func TestCachedCandleSourcePropagatesErrors(t *testing.T) {
	source := &countingSource{err: fmt.Errorf("upstream: %w", models.ErrDataUnavailable)}
	mem := pkgcache.NewMemoryCache()
	defer mem.Close()

	cached := NewCachedCandleSource(source, mem, time.Minute, nil)

	if _, err := cached.GetCandles(context.Background(), "F1", 2, drepo.Interval5Min); err == nil {
		t.Fatal("expected upstream error")
	}
}

func TestCachedCandleSourceMirrorsIntoMarketCache(t *testing.T) {
	source := &countingSource{}
	mem := pkgcache.NewMemoryCache()
	defer mem.Close()
	market := NewMarketCache()

	cached := NewCachedCandleSource(source, mem, time.Minute, market)

	if _, err := cached.GetCandles(context.Background(), "F1", 2, drepo.Interval5Min); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := market.Candles("F1", drepo.Interval5Min); !ok {
		t.Fatal("expected candles mirrored into the market cache")
	}
}
