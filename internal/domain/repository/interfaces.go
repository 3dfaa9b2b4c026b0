package repository

import (
	"context"
	"errors"

	"TrendLab/internal/domain/models"
)

var (
	// ErrArtifactNotFound is returned when no model artifact has been
	// written yet. Distinct from corruption: callers may train fresh.
	ErrArtifactNotFound = errors.New("model artifact not found")

	// ErrArtifactCorrupt is returned when an artifact exists but cannot
	// be decoded. Never retried automatically.
	ErrArtifactCorrupt = errors.New("model artifact corrupt")
)

// BarStore is the append-only raw bar table fed by the acquisition side.
type BarStore interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, bars []models.PriceBar) error
	Bars(ctx context.Context) ([]models.PriceBar, error)
	Health(ctx context.Context) error
}

// FeatureStore persists the processed feature table between runs so
// feature engineering can be re-run incrementally.
type FeatureStore interface {
	Init(ctx context.Context) error
	Rows(ctx context.Context) ([]models.FeatureRow, error)
	Upsert(ctx context.Context, rows []models.FeatureRow) error
}

// ArtifactStore owns the model/scaler artifact pair. Save replaces the
// artifact atomically; Load distinguishes absence from corruption via
// ErrArtifactNotFound and ErrArtifactCorrupt.
type ArtifactStore interface {
	Save(ctx context.Context, a *models.ModelArtifact) error
	Load(ctx context.Context) (*models.ModelArtifact, error)
}

// Metrics records pipeline observability signals.
type Metrics interface {
	RecordRowsMerged(n int)
	RecordTickerSkipped(ticker string)
	RecordStageDuration(stage string, seconds float64)
	RecordGridPoint(result string)
	RecordBestScore(metric string, score float64)
	RecordError(kind string)
}
