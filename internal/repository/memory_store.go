package repository

import (
	"context"
	"sync"

	"TrendLab/internal/domain/models"
)

// MemoryBarStore is an in-memory BarStore for tests and local runs.
type MemoryBarStore struct {
	mu   sync.Mutex
	bars []models.PriceBar
}

func NewMemoryBarStore() *MemoryBarStore { return &MemoryBarStore{} }

func (s *MemoryBarStore) Init(context.Context) error   { return nil }
func (s *MemoryBarStore) Health(context.Context) error { return nil }

func (s *MemoryBarStore) Append(_ context.Context, bars []models.PriceBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bars = append(s.bars, bars...)
	return nil
}

func (s *MemoryBarStore) Bars(context.Context) ([]models.PriceBar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PriceBar, len(s.bars))
	copy(out, s.bars)
	return out, nil
}

// MemoryFeatureStore is an in-memory FeatureStore keyed by (ticker, date).
type MemoryFeatureStore struct {
	mu   sync.Mutex
	rows map[string]models.FeatureRow
}

func NewMemoryFeatureStore() *MemoryFeatureStore {
	return &MemoryFeatureStore{rows: make(map[string]models.FeatureRow)}
}

func (s *MemoryFeatureStore) Init(context.Context) error { return nil }

func (s *MemoryFeatureStore) Rows(context.Context) ([]models.FeatureRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FeatureRow, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryFeatureStore) Upsert(_ context.Context, rows []models.FeatureRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.rows[r.Key()] = r
	}
	return nil
}
