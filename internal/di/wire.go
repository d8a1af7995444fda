//go:build wireinject
// +build wireinject

package di

import (
	"VoltWatch/pkg/config"
	"VoltWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,

		// Repositories
		ProvideReadingSource,

		// Use cases
		ProvideQualityCollector,
		ProvideWindowFetcher,
		ProvideCachedWindowFetcher,

		// Handlers
		ProvideDashboardHandler,
		ProvideLiveHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
