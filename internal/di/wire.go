//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"TrendLab/pkg/app"
	"TrendLab/pkg/config"
)

// InitializeApp wires the one-shot training process.
func InitializeApp(cfg *config.Config) (*app.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideClickHouseClient,
		ProvideCache,
		ProvideMetrics,
		ProvideBarStore,
		ProvideFeatureStore,
		ProvideArtifactStore,
		ProvideTrainingPipeline,
		ProvideMonitorHandler,
		ProvideTrainApp,
	)
	return nil, nil
}

// InitializeIngestApp wires the long-running ingestion process.
func InitializeIngestApp(cfg *config.Config) (*app.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideClickHouseClient,
		ProvideCache,
		ProvideMetrics,
		ProvideBarStore,
		ProvideKafkaConsumer,
		ProvideIngestHandler,
		ProvideMonitorHandler,
		ProvideIngestApp,
	)
	return nil, nil
}
