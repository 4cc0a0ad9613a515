//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"MarketPulse/pkg/config"
	"MarketPulse/pkg/server"
)

// InitializeApp builds the full application from configuration.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,
		ProvideHTTPClient,
		ProvideInvestClient,
		ProvideDialer,
		ProvideMarketCache,
		ProvideCandleSource,
		ProvideDirectory,
		ProvideIngestor,
		ProvideModelManager,
		ProvideAnalyzer,
		ProvideLimiter,
		ProvideSessions,
		ProvideRootHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil
}
