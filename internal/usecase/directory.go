package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

// DirectoryConfig controls universe refresh and top-volume probing.
type DirectoryConfig struct {
	ReloadInterval time.Duration
	// VolumeProbe caps how many instruments get a daily-candle volume fetch
	// when ranking by traded volume.
	VolumeProbe int
}

// Directory keeps an in-memory copy of the tradable universe and resolves
// user-facing tickers to exchange identifiers. The universe reloads lazily
// after ReloadInterval; between reloads every lookup is a map read.
type Directory struct {
	source  repository.InstrumentSource
	candles repository.CandleSource
	cfg     DirectoryConfig
	log     *logger.Logger

	mu       sync.RWMutex
	byTicker map[string]models.Instrument
	all      []models.Instrument
	loadedAt time.Time
}

// NewDirectory creates an empty directory; the universe loads on first use.
func NewDirectory(
	source repository.InstrumentSource,
	candles repository.CandleSource,
	cfg DirectoryConfig,
	log *logger.Logger,
) *Directory {
	if cfg.ReloadInterval <= 0 {
		cfg.ReloadInterval = time.Hour
	}
	if cfg.VolumeProbe <= 0 {
		cfg.VolumeProbe = 25
	}
	return &Directory{
		source:   source,
		candles:  candles,
		cfg:      cfg,
		log:      log.With("directory"),
		byTicker: map[string]models.Instrument{},
	}
}

// ResolveTicker maps a ticker to its instrument, case-insensitively. Unknown
// tickers fail with models.ErrNotFound.
func (d *Directory) ResolveTicker(ctx context.Context, ticker string) (models.Instrument, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return models.Instrument{}, err
	}

	d.mu.RLock()
	inst, ok := d.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	d.mu.RUnlock()

	if !ok {
		return models.Instrument{}, fmt.Errorf("ticker %q: %w", ticker, models.ErrNotFound)
	}
	return inst, nil
}

// Instruments returns a copy of the current universe.
func (d *Directory) Instruments(ctx context.Context) ([]models.Instrument, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	d.mu.RLock()
	out := make([]models.Instrument, len(d.all))
	copy(out, d.all)
	d.mu.RUnlock()
	return out, nil
}

// Sample returns up to n instruments from the top of the universe. Used to
// pick the training set.
func (d *Directory) Sample(ctx context.Context, n int) ([]models.Instrument, error) {
	all, err := d.Instruments(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

// TopInstruments ranks instruments by their latest daily traded volume. At
// most VolumeProbe instruments are probed; instruments whose candles cannot
// be fetched are skipped.
func (d *Directory) TopInstruments(ctx context.Context, n int) ([]models.TopInstrument, error) {
	all, err := d.Instruments(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > d.cfg.VolumeProbe {
		all = all[:d.cfg.VolumeProbe]
	}

	ranked := make([]models.TopInstrument, 0, len(all))
	for _, inst := range all {
		candles, err := d.candles.GetCandles(ctx, inst.FIGI, 1, repository.IntervalDay)
		if err != nil || len(candles) == 0 {
			d.log.Debug("volume probe skipped", logger.String("ticker", inst.Ticker), logger.Error(err))
			continue
		}
		ranked = append(ranked, models.TopInstrument{
			Ticker: inst.Ticker,
			Name:   inst.Name,
			Volume: candles[len(candles)-1].Volume,
		})
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Volume > ranked[j].Volume })
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func (d *Directory) ensureLoaded(ctx context.Context) error {
	d.mu.RLock()
	fresh := !d.loadedAt.IsZero() && time.Since(d.loadedAt) < d.cfg.ReloadInterval
	d.mu.RUnlock()
	if fresh {
		return nil
	}

	instruments, err := d.source.ListInstruments(ctx)
	if err != nil {
		d.mu.RLock()
		stale := len(d.all) > 0
		d.mu.RUnlock()
		if stale {
			// Serve the stale universe rather than failing lookups.
			d.log.Warn("universe reload failed, keeping stale copy", logger.Error(err))
			return nil
		}
		return fmt.Errorf("load instrument universe: %w", err)
	}

	byTicker := make(map[string]models.Instrument, len(instruments))
	for _, inst := range instruments {
		byTicker[strings.ToUpper(inst.Ticker)] = inst
	}

	d.mu.Lock()
	d.byTicker = byTicker
	d.all = instruments
	d.loadedAt = time.Now()
	d.mu.Unlock()

	d.log.Info("instrument universe loaded", logger.Int("count", len(instruments)))
	return nil
}
