package indicator

import (
	"errors"
	"fmt"
	"sort"

	"TrendLab/internal/domain/models"
)

// Engine turns a per-ticker bar history into labeled feature rows by
// running a configured set of indicators over it.
//
// A row is emitted for bar i only when every indicator has its full
// lookback available and the next day's close exists to derive the label.
// The final bar of a history therefore never produces a row.
type Engine struct {
	indicators  []Indicator
	names       []string
	maxLookback int
}

// NewEngine builds an engine from indicator identifiers such as
// ["sma_10", "ema_20", "rsi_14", "macd"].
func NewEngine(names []string) (*Engine, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no indicators configured")
	}
	e := &Engine{}
	seen := make(map[string]bool)
	for _, name := range names {
		ind, err := Parse(name)
		if err != nil {
			return nil, fmt.Errorf("configure indicators: %w", err)
		}
		e.indicators = append(e.indicators, ind)
		if lb := ind.Lookback(); lb > e.maxLookback {
			e.maxLookback = lb
		}
		for _, col := range ind.Names() {
			if seen[col] {
				return nil, fmt.Errorf("duplicate feature column %q", col)
			}
			seen[col] = true
			e.names = append(e.names, col)
		}
	}
	sort.Strings(e.names)
	return e, nil
}

// FeatureNames returns the emitted feature columns in sorted order.
func (e *Engine) FeatureNames() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// MaxLookback is the largest lookback across configured indicators.
func (e *Engine) MaxLookback() int { return e.maxLookback }

// ComputeTicker computes feature rows for one ticker's history, which must
// be sorted by date ascending. It returns models.ErrInsufficientHistory
// when the history is too short to label a single row.
func (e *Engine) ComputeTicker(bars []models.PriceBar) ([]models.FeatureRow, error) {
	// maxLookback bars of warm-up, one bar to label, one bar to label with.
	if len(bars) < e.maxLookback+2 {
		return nil, fmt.Errorf("%s: %d bars, need %d: %w",
			tickerOf(bars), len(bars), e.maxLookback+2, models.ErrInsufficientHistory)
	}
	rows := make([]models.FeatureRow, 0, len(bars)-e.maxLookback-1)
	for i := e.maxLookback; i < len(bars); i++ {
		label, err := Label(bars, i)
		if errors.Is(err, models.ErrLabelUndefined) {
			break
		}
		feats := make(map[string]float64, len(e.names))
		for _, ind := range e.indicators {
			for k, v := range ind.Compute(bars, i) {
				feats[k] = v
			}
		}
		rows = append(rows, models.FeatureRow{
			PriceBar: bars[i],
			Features: feats,
			Label:    label,
		})
	}
	return rows, nil
}

// Label derives the direction label for bar i: 1 when the next day's
// close is strictly higher, 0 otherwise. The final bar has no next close
// and returns models.ErrLabelUndefined instead of a default label.
func Label(bars []models.PriceBar, i int) (int, error) {
	if i >= len(bars)-1 {
		return 0, fmt.Errorf("%s %s: %w",
			bars[i].Ticker, bars[i].Date.Format("2006-01-02"), models.ErrLabelUndefined)
	}
	if bars[i+1].Close > bars[i].Close {
		return 1, nil
	}
	return 0, nil
}

func tickerOf(bars []models.PriceBar) string {
	if len(bars) == 0 {
		return "?"
	}
	return bars[0].Ticker
}
