// Package di assembles the application object graph with wire.
package di

import (
	"fmt"

	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/domain/service"
	"MarketPulse/internal/handler/api"
	cachesvc "MarketPulse/internal/service/cache"
	"MarketPulse/internal/service/invest"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/services/features"
	"MarketPulse/internal/services/model"
	"MarketPulse/internal/session"
	"MarketPulse/internal/usecase"
	pkgcache "MarketPulse/pkg/cache"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/metrics"
	"MarketPulse/pkg/server"
)

func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideCache selects layered memory+Redis caching when Redis is configured,
// plain in-memory otherwise.
func ProvideCache(cfg *config.Config, log *logger.Logger) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}

	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("connect redis cache: %w", err)
	}
	log.Info("redis cache connected", logger.String("host", cfg.Cache.Redis.Host))
	return pkgcache.NewLayeredCache(redisCache), nil
}

func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Exchange.RequestTimeout),
		xhttp.WithRateLimit(cfg.Exchange.RateLimitRPS),
		xhttp.WithRetryMaxElapsed(cfg.Exchange.RetryMaxElapsed),
	)
}

func ProvideInvestClient(cfg *config.Config, httpClient *xhttp.Client, log *logger.Logger) *invest.Client {
	return invest.NewClient(cfg.Exchange.RESTURL, cfg.Exchange.Token, httpClient, log)
}

func ProvideDialer(cfg *config.Config) *invest.Dialer {
	return invest.NewDialer(cfg.Exchange.WebSocketURL, cfg.Exchange.Token)
}

func ProvideMarketCache() *cachesvc.MarketCache {
	return cachesvc.NewMarketCache()
}

func ProvideCandleSource(
	client *invest.Client,
	cache pkgcache.Service,
	marketCache *cachesvc.MarketCache,
	cfg *config.Config,
) repository.CandleSource {
	return cachesvc.NewCachedCandleSource(client, cache, cfg.Cache.CandleTTL, marketCache)
}

func ProvideDirectory(
	client *invest.Client,
	candles repository.CandleSource,
	cfg *config.Config,
	log *logger.Logger,
) *usecase.Directory {
	return usecase.NewDirectory(client, candles, usecase.DirectoryConfig{
		ReloadInterval: cfg.Directory.ReloadInterval,
		VolumeProbe:    cfg.Directory.VolumeProbe,
	}, log)
}

func ProvideIngestor(
	dialer *invest.Dialer,
	marketCache *cachesvc.MarketCache,
	cfg *config.Config,
	log *logger.Logger,
	rec *metrics.Recorder,
) *usecase.StreamIngestor {
	return usecase.NewStreamIngestor(dialer, marketCache, usecase.IngestorConfig{
		Depth:            cfg.Exchange.Depth,
		MaxSubscriptions: cfg.Exchange.MaxSubscriptions,
		ReconnectTimeout: cfg.Exchange.ReconnectTimeout,
	}, log, rec)
}

func ProvideModelManager(
	directory *usecase.Directory,
	candles repository.CandleSource,
	cfg *config.Config,
	log *logger.Logger,
	rec *metrics.Recorder,
) *model.Manager {
	profile := cfg.Strategies[cfg.DefaultMode]
	return model.NewManager(directory, candles,
		func() service.Classifier { return model.NewLogistic() },
		model.Config{
			RetrainInterval: cfg.Model.RetrainInterval,
			TrainingDays:    cfg.Model.TrainingDays,
			Interval:        repository.NormalizeInterval(cfg.Model.TrainingInterval),
			SampleSize:      cfg.Model.SampleSize,
			Params: features.Params{
				EMALength: profile.EMALength,
				RSILength: profile.RSILength,
				ATRLength: profile.ATRLength,
			},
		}, log, rec)
}

func ProvideAnalyzer(
	directory *usecase.Directory,
	candles repository.CandleSource,
	manager *model.Manager,
	ingestor *usecase.StreamIngestor,
	cfg *config.Config,
	log *logger.Logger,
	rec *metrics.Recorder,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(directory, candles, manager, ingestor,
		cfg.Strategies, cfg.DefaultMode, log, rec)
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
}

func ProvideSessions() *session.Store {
	return session.NewStore(0)
}

func ProvideRootHandler(
	analyzer *usecase.Analyzer,
	directory *usecase.Directory,
	limiter *ratelimit.Limiter,
	sessions *session.Store,
	log *logger.Logger,
) *api.Root {
	analysis := api.NewAnalysisHandler(analyzer, directory, limiter, log)
	dialogue := api.NewDialogueHandler(analyzer, sessions, log)
	return api.NewRoot(analysis, dialogue)
}

func ProvideHTTPServer(root *api.Root, cfg *config.Config) *xhttp.Server {
	return xhttp.NewServer(root,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
}

func ProvideApp(
	httpServer *xhttp.Server,
	ingestor *usecase.StreamIngestor,
	manager *model.Manager,
	cache pkgcache.Service,
	cfg *config.Config,
	log *logger.Logger,
) *server.App {
	workers := []server.Worker{ingestor, manager}
	return server.NewApp(httpServer, workers, cache, log, cfg.Server.ShutdownTimeout)
}
