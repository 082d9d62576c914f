//go:build wireinject
// +build wireinject

package di

import (
	"AlphaPull/pkg/config"
	"AlphaPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideKafkaProducer,

		// Repositories
		ProvidePriceStore,
		ProvideTickStorage,
		ProvideInsightPublisher,
		ProvideMarketStream,

		// Models
		ProvideCalcEngine,
		ProvideCompositeModel,

		// Use cases
		ProvideInsightCycle,
		ProvideTickIngestor,
		ProvideRiskReporter,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
