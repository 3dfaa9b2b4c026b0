package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"TrendLab/internal/usecase"
	pkgch "TrendLab/pkg/clickhouse"
	"TrendLab/pkg/config"
	xhttp "TrendLab/pkg/http"
	pkgkafka "TrendLab/pkg/kafka"
	"TrendLab/pkg/logger"
)

// App owns the process lifecycle: the monitor HTTP server, an optional
// Kafka consumer, and an optional one-shot training run. When only a
// training run is configured the process exits after it completes;
// otherwise it blocks until interrupted.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	httpServer *xhttp.Server
	chClient   *pkgch.Client
	consumer   *pkgkafka.Consumer
	ingest     pkgkafka.MessageHandler
	trainer    *usecase.TrainingPipeline
}

type Option func(*App)

// WithConsumer attaches a Kafka consumer and its message handler.
func WithConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = c
		a.ingest = h
	}
}

// WithTrainer attaches a one-shot training run.
func WithTrainer(t *usecase.TrainingPipeline) Option {
	return func(a *App) {
		a.trainer = t
	}
}

func New(cfg *config.Config, log *logger.Logger, handler xhttp.Handler, chClient *pkgch.Client, opts ...Option) *App {
	a := &App{
		cfg:      cfg,
		log:      log,
		chClient: chClient,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithHost(cfg.Monitor.Host),
		xhttp.WithPort(cfg.Monitor.Port),
		xhttp.WithTimeouts(cfg.Monitor.ReadTimeout, cfg.Monitor.WriteTimeout, cfg.Monitor.ShutdownTimeout),
	)
	return a
}

// Run starts everything and blocks until done or interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("start monitor server: %w", err)
	}
	a.log.Info("monitor server started", logger.Int("port", a.cfg.Monitor.Port))

	if a.consumer != nil && a.ingest != nil {
		a.consumer.RegisterHandler(a.ingest)
		if err := a.consumer.Start(); err != nil {
			_ = a.shutdown(ctx)
			return fmt.Errorf("start consumer: %w", err)
		}
	}

	var runErr error
	if a.trainer != nil {
		eval, err := a.trainer.Run(ctx)
		if err != nil {
			a.log.Error("training run failed", logger.Error(err))
			runErr = err
		} else {
			// The report goes to stdout in full; summaries are in the logs.
			fmt.Println(eval.String())
		}
		if a.consumer == nil {
			if err := a.shutdown(ctx); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		}
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown(context.Background())
}

func (a *App) shutdown(ctx context.Context) error {
	if a.consumer != nil {
		stopCtx, cancel := context.WithTimeout(ctx, a.cfg.Monitor.ShutdownTimeout)
		if err := a.consumer.Stop(stopCtx); err != nil {
			a.log.Warn("consumer stop", logger.Error(err))
		}
		cancel()
	}

	stopCtx, cancel := context.WithTimeout(ctx, a.cfg.Monitor.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(stopCtx); err != nil {
		a.log.Warn("http shutdown", logger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close", logger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
