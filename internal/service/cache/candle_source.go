package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	pkgcache "MarketPulse/pkg/cache"
)

// CachedCandleSource decorates a CandleSource with a TTL cache so repeated
// analysis of the same instrument does not hammer the historical endpoint.
type CachedCandleSource struct {
	source drepo.CandleSource
	cache  pkgcache.Service
	ttl    time.Duration
	sink   *MarketCache
}

// NewCachedCandleSource creates a caching candle source. sink may be nil; when
// set, fetched series are also mirrored into the market cache.
func NewCachedCandleSource(source drepo.CandleSource, cache pkgcache.Service, ttl time.Duration, sink *MarketCache) *CachedCandleSource {
	return &CachedCandleSource{source: source, cache: cache, ttl: ttl, sink: sink}
}

func (s *CachedCandleSource) GetCandles(ctx context.Context, figi string, lookbackDays int, interval drepo.Interval) ([]models.Candle, error) {
	key := pkgcache.GenerateKeyWithParams("candles", figi, lookbackDays, string(interval))

	if b, err := s.cache.Get(ctx, key); err == nil {
		var candles []models.Candle
		if err := json.Unmarshal(b, &candles); err == nil {
			return candles, nil
		}
		// A corrupt entry is dropped and refetched.
		_ = s.cache.Delete(ctx, key)
	} else if !errors.Is(err, pkgcache.ErrCacheMiss) {
		// Cache backend trouble is not a request failure; fall through to the source.
		_ = err
	}

	candles, err := s.source.GetCandles(ctx, figi, lookbackDays, interval)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(candles); err == nil {
		_ = s.cache.Set(ctx, key, b, s.ttl)
	}
	if s.sink != nil {
		s.sink.SetCandles(figi, interval, candles)
	}

	return candles, nil
}

var _ drepo.CandleSource = (*CachedCandleSource)(nil)
