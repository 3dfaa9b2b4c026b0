package repository

import (
	"context"
	"fmt"
	"time"

	"TrendLab/internal/domain/models"
	"TrendLab/pkg/clickhouse"
	"TrendLab/pkg/logger"
)

const (
	createDatabaseDDL = `CREATE DATABASE IF NOT EXISTS trendlab`

	createRawBarsDDL = `
CREATE TABLE IF NOT EXISTS trendlab.raw_bars (
    ticker LowCardinality(String),
    date   Date,
    open   Float64,
    high   Float64,
    low    Float64,
    close  Float64,
    volume UInt64
) ENGINE = MergeTree()
ORDER BY (ticker, date)`

	createFeatureRowsDDL = `
CREATE TABLE IF NOT EXISTS trendlab.feature_rows (
    ticker     LowCardinality(String),
    date       Date,
    open       Float64,
    high       Float64,
    low        Float64,
    close      Float64,
    volume     UInt64,
    features   Map(String, Float64),
    label      UInt8,
    updated_at DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(updated_at)
ORDER BY (ticker, date)`
)

// CHBarStore persists raw OHLCV bars in ClickHouse.
type CHBarStore struct {
	client *clickhouse.Client
	log    *logger.Logger
}

func NewCHBarStore(client *clickhouse.Client, log *logger.Logger) *CHBarStore {
	return &CHBarStore{client: client, log: log}
}

func (s *CHBarStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, []string{createDatabaseDDL, createRawBarsDDL})
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// Append inserts bars. The table key is (ticker, date); duplicates are
// tolerated upstream because the merge stage dedupes by key.
func (s *CHBarStore) Append(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trendlab.raw_bars (ticker, date, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare append: %w", err)
	}
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Ticker, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append bar %s/%s: %w", b.Ticker, b.Date.Format("2006-01-02"), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	s.log.Debug("bars appended", logger.Int("count", len(bars)))
	return nil
}

func (s *CHBarStore) Bars(ctx context.Context) ([]models.PriceBar, error) {
	rows, err := s.client.DB().QueryContext(ctx,
		`SELECT ticker, date, open, high, low, close, volume
		 FROM trendlab.raw_bars
		 ORDER BY ticker, date`)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var out []models.PriceBar
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Ticker, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Date = models.Day(b.Date)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return out, nil
}

// CHFeatureStore persists the processed feature table. The table is a
// ReplacingMergeTree keyed on (ticker, date): re-upserting a key leaves
// the latest version, which keeps replayed merges harmless.
type CHFeatureStore struct {
	client *clickhouse.Client
	log    *logger.Logger
}

func NewCHFeatureStore(client *clickhouse.Client, log *logger.Logger) *CHFeatureStore {
	return &CHFeatureStore{client: client, log: log}
}

func (s *CHFeatureStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, []string{createDatabaseDDL, createFeatureRowsDDL})
}

func (s *CHFeatureStore) Rows(ctx context.Context) ([]models.FeatureRow, error) {
	rows, err := s.client.DB().QueryContext(ctx,
		`SELECT ticker, date, open, high, low, close, volume, features, label
		 FROM trendlab.feature_rows FINAL
		 ORDER BY date, ticker`)
	if err != nil {
		return nil, fmt.Errorf("query feature rows: %w", err)
	}
	defer rows.Close()

	var out []models.FeatureRow
	for rows.Next() {
		var r models.FeatureRow
		var label uint8
		if err := rows.Scan(&r.Ticker, &r.Date, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume, &r.Features, &label); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		r.Date = models.Day(r.Date)
		r.Label = int(label)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}
	return out, nil
}

func (s *CHFeatureStore) Upsert(ctx context.Context, rows []models.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trendlab.feature_rows (ticker, date, open, high, low, close, volume, features, label, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.Ticker, r.Date, r.Open, r.High, r.Low, r.Close, r.Volume,
			r.Features, uint8(r.Label), now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert row %s: %w", r.Key(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	s.log.Debug("feature rows upserted", logger.Int("count", len(rows)))
	return nil
}
