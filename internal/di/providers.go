package di

import (
	"fmt"

	domainrepo "TrendLab/internal/domain/repository"
	"TrendLab/internal/handler"
	"TrendLab/internal/repository"
	"TrendLab/internal/usecase"
	"TrendLab/pkg/app"
	"TrendLab/pkg/cache"
	"TrendLab/pkg/clickhouse"
	"TrendLab/pkg/config"
	"TrendLab/pkg/kafka"
	"TrendLab/pkg/logger"
	"TrendLab/pkg/metrics"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

// ProvideClickHouseClient creates the ClickHouse connection pool.
func ProvideClickHouseClient(cfg *config.Config) (*clickhouse.Client, error) {
	client, err := clickhouse.NewClient(
		clickhouse.WithHost(cfg.ClickHouse.Host),
		clickhouse.WithPort(cfg.ClickHouse.Port),
		clickhouse.WithDatabase(cfg.ClickHouse.Database),
		clickhouse.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		clickhouse.WithMaxConnections(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns),
		clickhouse.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		clickhouse.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("create clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCache creates the cache service, falling back to the in-process
// cache when Redis is disabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithPassword(cfg.Redis.Password),
		cache.WithDB(cfg.Redis.DB),
		cache.WithPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("create redis cache: %w", err)
	}
	return c, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() domainrepo.Metrics {
	return metrics.New()
}

func ProvideBarStore(client *clickhouse.Client, log *logger.Logger) domainrepo.BarStore {
	return repository.NewCHBarStore(client, log)
}

func ProvideFeatureStore(client *clickhouse.Client, log *logger.Logger) domainrepo.FeatureStore {
	return repository.NewCHFeatureStore(client, log)
}

func ProvideArtifactStore(cfg *config.Config, log *logger.Logger) domainrepo.ArtifactStore {
	return repository.NewFileArtifactStore(cfg.Artifact.Dir, cfg.Artifact.Name, log)
}

func ProvideTrainingPipeline(
	cfg *config.Config,
	log *logger.Logger,
	bars domainrepo.BarStore,
	features domainrepo.FeatureStore,
	artifacts domainrepo.ArtifactStore,
	cacheSvc cache.Service,
	m domainrepo.Metrics,
) (*usecase.TrainingPipeline, error) {
	p, err := usecase.NewTrainingPipeline(cfg, log, bars, features, artifacts, cacheSvc, m)
	if err != nil {
		return nil, fmt.Errorf("create training pipeline: %w", err)
	}
	return p, nil
}

// ProvideKafkaConsumer creates the bar ingestion consumer.
func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger) (*kafka.Consumer, error) {
	c, err := kafka.NewConsumer(log,
		kafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		kafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		kafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		kafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		kafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		kafka.WithConsumerDLQ(cfg.Kafka.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return c, nil
}

func ProvideIngestHandler(cfg *config.Config, bars domainrepo.BarStore, log *logger.Logger, m domainrepo.Metrics) *usecase.BarIngestHandler {
	return usecase.NewBarIngestHandler(cfg.Kafka.BarsTopic, bars, log, m)
}

func ProvideMonitorHandler(log *logger.Logger, bars domainrepo.BarStore, cacheSvc cache.Service) *handler.Monitor {
	return handler.NewMonitor(log, bars, cacheSvc)
}

// ProvideTrainApp assembles the one-shot training process.
func ProvideTrainApp(
	cfg *config.Config,
	log *logger.Logger,
	monitor *handler.Monitor,
	chClient *clickhouse.Client,
	trainer *usecase.TrainingPipeline,
) *app.App {
	return app.New(cfg, log, monitor, chClient, app.WithTrainer(trainer))
}

// ProvideIngestApp assembles the long-running ingestion process.
func ProvideIngestApp(
	cfg *config.Config,
	log *logger.Logger,
	monitor *handler.Monitor,
	chClient *clickhouse.Client,
	consumer *kafka.Consumer,
	ingest *usecase.BarIngestHandler,
) *app.App {
	return app.New(cfg, log, monitor, chClient, app.WithConsumer(consumer, ingest))
}
