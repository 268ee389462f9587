//go:build wireinject
// +build wireinject

package di

import (
	"RegimeWatch/pkg/config"
	"RegimeWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCacheService,
		ProvideClickHouseClient,

		// Stores and sources
		ProvideSnapshotStore,
		ProvideSubscriberStore,
		ProvideCandleSource,
		ProvideClassifier,
		ProvideAlertPublisher,
		ProvideTransport,

		// Use cases
		ProvideFanout,
		ProvideMonitor,

		// Surfaces
		ProvideHTTPHandler,
		ProvideBot,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
