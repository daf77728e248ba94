//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"medhistory/internal"
	"medhistory/internal/controllers"
	"medhistory/internal/providers"
	"medhistory/internal/scheduler"
	"medhistory/internal/services"
	"medhistory/internal/storage"
	"medhistory/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewZstdCompressor,
		storage.NewUserStore,
		storage.NewFileManager,
		storage.NewImageStore,
		storage.NewArchive,
		storage.NewLockTable,
		services.NewHistoryService,
		scheduler.NewScheduler,
		controllers.NewHistoryController,
		controllers.NewUploadsController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
