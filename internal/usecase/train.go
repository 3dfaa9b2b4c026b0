package usecase

import (
	"context"
	"fmt"
	"time"

	"TrendLab/internal/domain/models"
	domainrepo "TrendLab/internal/domain/repository"
	"TrendLab/internal/indicator"
	"TrendLab/internal/ml"
	"TrendLab/internal/pipeline"
	"TrendLab/pkg/cache"
	"TrendLab/pkg/config"
	"TrendLab/pkg/logger"
)

const (
	trainLockKey = "train:lock"

	// ReportCacheKey is where the latest evaluation report is published
	// for the monitor endpoint and other consumers.
	ReportCacheKey = "train:last_report"
)

// TrainingPipeline runs one full training pass: merge fresh bars into
// the feature table, split chronologically, fit the scaler on the
// training side, search the hyperparameter grid, evaluate the winner on
// held-out rows, and persist the model artifact.
type TrainingPipeline struct {
	cfg       *config.Config
	log       *logger.Logger
	bars      domainrepo.BarStore
	features  domainrepo.FeatureStore
	artifacts domainrepo.ArtifactStore
	cache     cache.Service
	metrics   domainrepo.Metrics
	engine    *indicator.Engine
	merger    *pipeline.Merger
	splitter  *pipeline.Splitter
}

func NewTrainingPipeline(
	cfg *config.Config,
	log *logger.Logger,
	bars domainrepo.BarStore,
	features domainrepo.FeatureStore,
	artifacts domainrepo.ArtifactStore,
	cacheSvc cache.Service,
	metrics domainrepo.Metrics,
) (*TrainingPipeline, error) {
	engine, err := indicator.NewEngine(cfg.Pipeline.Indicators)
	if err != nil {
		return nil, err
	}
	splitter, err := pipeline.NewSplitter(cfg.Pipeline.TrainFraction)
	if err != nil {
		return nil, err
	}
	return &TrainingPipeline{
		cfg:       cfg,
		log:       log,
		bars:      bars,
		features:  features,
		artifacts: artifacts,
		cache:     cacheSvc,
		metrics:   metrics,
		engine:    engine,
		merger:    pipeline.NewMerger(engine),
		splitter:  splitter,
	}, nil
}

// Run executes the pipeline once. Only one run may be active at a time;
// concurrent invocations fail fast instead of queueing.
func (p *TrainingPipeline) Run(ctx context.Context) (*models.Evaluation, error) {
	locked, err := p.cache.TryLock(ctx, trainLockKey, p.cfg.Redis.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another training run holds the lock")
	}
	defer func() {
		if err := p.cache.Unlock(context.WithoutCancel(ctx), trainLockKey); err != nil {
			p.log.Warn("release run lock", logger.Error(err))
		}
	}()

	if err := p.bars.Init(ctx); err != nil {
		return nil, fmt.Errorf("init bar store: %w", err)
	}
	if err := p.features.Init(ctx); err != nil {
		return nil, fmt.Errorf("init feature store: %w", err)
	}

	table, err := p.mergeStage(ctx)
	if err != nil {
		return nil, err
	}

	eval, err := p.trainStage(ctx, table)
	if err != nil {
		p.metrics.RecordError("train")
		return nil, err
	}

	if err := p.cache.Set(ctx, ReportCacheKey, eval, p.cfg.Pipeline.ReportTTL); err != nil {
		p.log.Warn("publish report", logger.Error(err))
	}
	return eval, nil
}

// mergeStage folds fresh raw bars into the persisted feature table and
// upserts only the newly derived rows.
func (p *TrainingPipeline) mergeStage(ctx context.Context) (models.Table, error) {
	start := time.Now()

	bars, err := p.bars.Bars(ctx)
	if err != nil {
		p.metrics.RecordError("load_bars")
		return models.Table{}, fmt.Errorf("load bars: %w", err)
	}
	existingRows, err := p.features.Rows(ctx)
	if err != nil {
		p.metrics.RecordError("load_features")
		return models.Table{}, fmt.Errorf("load feature rows: %w", err)
	}
	existing := models.NewTable(existingRows)

	merged, stats, err := p.merger.Merge(existing, bars)
	if err != nil {
		p.metrics.RecordError("merge")
		return models.Table{}, fmt.Errorf("merge bars: %w", err)
	}

	p.metrics.RecordRowsMerged(stats.NewRows)
	for _, ticker := range stats.SkippedTickers {
		p.metrics.RecordTickerSkipped(ticker)
	}

	if stats.NewRows > 0 {
		known := make(map[string]bool, existing.Len())
		for _, r := range existing.Rows {
			known[r.Key()] = true
		}
		delta := make([]models.FeatureRow, 0, stats.NewRows)
		for _, r := range merged.Rows {
			if !known[r.Key()] {
				delta = append(delta, r)
			}
		}
		if err := p.features.Upsert(ctx, delta); err != nil {
			p.metrics.RecordError("upsert_features")
			return models.Table{}, fmt.Errorf("persist feature rows: %w", err)
		}
	}

	p.metrics.RecordStageDuration("merge", time.Since(start).Seconds())
	p.log.Info("merge complete",
		logger.Int("total_rows", merged.Len()),
		logger.Int("new_rows", stats.NewRows),
		logger.Int("tickers_touched", stats.TickersTouched),
		logger.Strings("tickers_skipped", stats.SkippedTickers))
	return merged, nil
}

// trainStage runs split, scaling, balancing, grid search, final fit,
// evaluation, and artifact persistence.
func (p *TrainingPipeline) trainStage(ctx context.Context, table models.Table) (*models.Evaluation, error) {
	if table.Len() == 0 {
		return nil, fmt.Errorf("feature table is empty, nothing to train on")
	}

	train, test, err := p.splitter.Split(table)
	if err != nil {
		return nil, fmt.Errorf("temporal split: %w", err)
	}
	p.log.Info("temporal split",
		logger.Int("train_rows", train.Len()),
		logger.Int("test_rows", test.Len()),
		logger.String("train_max", train.Rows[train.Len()-1].Date.Format("2006-01-02")),
		logger.String("test_min", test.Rows[0].Date.Format("2006-01-02")))

	scaler, err := pipeline.FitScaler(train, p.engine.FeatureNames())
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	xTrain, err := scaler.Transform(train.Rows)
	if err != nil {
		return nil, fmt.Errorf("transform train: %w", err)
	}
	xTest, err := scaler.Transform(test.Rows)
	if err != nil {
		return nil, fmt.Errorf("transform test: %w", err)
	}
	yTrain := pipeline.Labels(train.Rows)
	yTest := pipeline.Labels(test.Rows)

	posWeight, err := pipeline.PosWeight(train)
	if err != nil {
		return nil, fmt.Errorf("class balance: %w", err)
	}
	p.log.Info("class balance", logger.Float64("scale_pos_weight", posWeight))

	searchStart := time.Now()
	search := ml.NewSearch(ml.GridSpec{
		LearningRates: p.cfg.Pipeline.Grid.LearningRates,
		MaxDepths:     p.cfg.Pipeline.Grid.MaxDepths,
		Estimators:    p.cfg.Pipeline.Grid.Estimators,
		Subsamples:    p.cfg.Pipeline.Grid.Subsamples,
	},
		ml.WithFolds(p.cfg.Pipeline.CVFolds),
		ml.WithWorkers(p.cfg.Pipeline.Workers),
		ml.WithScoring(p.cfg.Pipeline.Scoring),
		ml.WithSeed(p.cfg.Pipeline.Seed),
		ml.WithSearchLogger(p.log),
	)
	best, bestScore, results, err := search.Run(ctx, xTrain, yTrain, posWeight, p.cfg.Pipeline.Threshold)
	for _, r := range results {
		if r.Err != nil {
			p.metrics.RecordGridPoint("failed")
		} else {
			p.metrics.RecordGridPoint("ok")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("hyperparameter search: %w", err)
	}
	p.metrics.RecordBestScore(p.cfg.Pipeline.Scoring, bestScore)
	p.metrics.RecordStageDuration("search", time.Since(searchStart).Seconds())

	fitStart := time.Now()
	model, err := ml.TrainGBDT(xTrain, yTrain, best, p.cfg.Pipeline.Seed)
	if err != nil {
		return nil, fmt.Errorf("final fit: %w", err)
	}
	p.metrics.RecordStageDuration("fit", time.Since(fitStart).Seconds())

	eval := ml.Evaluate(model, xTest, yTest, p.cfg.Pipeline.Threshold)
	p.log.Info("evaluation complete",
		logger.Float64("accuracy", eval.Accuracy),
		logger.Float64("roc_auc", eval.ROCAUC),
		logger.Float64("up_precision", eval.PerClass[1].Precision),
		logger.Int("test_rows", eval.Total))

	encoded, err := model.Encode()
	if err != nil {
		return nil, err
	}
	artifact := &models.ModelArtifact{
		Hyper:     best,
		Model:     encoded,
		Scaler:    scaler.State(),
		CreatedAt: time.Now().UTC(),
	}
	if err := p.artifacts.Save(ctx, artifact); err != nil {
		p.metrics.RecordError("save_artifact")
		return nil, fmt.Errorf("save artifact: %w", err)
	}
	return &eval, nil
}
