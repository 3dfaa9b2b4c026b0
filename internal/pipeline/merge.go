package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/indicator"
)

// MergeStats summarizes one incremental merge pass.
type MergeStats struct {
	NewRows        int
	TickersTouched int
	SkippedTickers []string
}

// Merger folds freshly fetched bars into an existing feature table.
//
// Merging is incremental per ticker: only bars dated after the ticker's
// last processed row are featurized, over a trailing window long enough
// to cover every indicator lookback. Recomputing over that window is
// bit-identical to a full-history pass, so replaying the same batch is a
// no-op and the merge is idempotent. Rows already in the table are never
// modified, only new (ticker, date) keys appear.
type Merger struct {
	engine *indicator.Engine
}

func NewMerger(engine *indicator.Engine) *Merger {
	return &Merger{engine: engine}
}

// Merge returns a new table combining existing rows with rows derived
// from bars. Tickers with insufficient history are skipped and reported
// in the stats; they never fail the merge.
func (m *Merger) Merge(existing models.Table, bars []models.PriceBar) (models.Table, MergeStats, error) {
	var stats MergeStats
	last := existing.LastDates()

	byTicker := make(map[string][]models.PriceBar)
	for _, b := range bars {
		byTicker[b.Ticker] = append(byTicker[b.Ticker], b)
	}
	tickers := make([]string, 0, len(byTicker))
	for t := range byTicker {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	merged := make([]models.FeatureRow, 0, existing.Len())
	merged = append(merged, existing.Rows...)

	for _, ticker := range tickers {
		history := byTicker[ticker]
		sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })

		firstNew := len(history)
		if cutoff, seen := last[ticker]; seen {
			for i, b := range history {
				if b.Date.After(cutoff) {
					firstNew = i
					break
				}
			}
		} else {
			firstNew = 0
		}
		// The final bar can never be labeled, so a batch whose only new
		// bar is the terminal one yields nothing.
		if firstNew >= len(history)-1 {
			stats.SkippedTickers = append(stats.SkippedTickers, ticker)
			continue
		}

		start := firstNew - m.engine.MaxLookback()
		if start < 0 {
			start = 0
		}
		rows, err := m.engine.ComputeTicker(history[start:])
		if err != nil {
			if errors.Is(err, models.ErrInsufficientHistory) {
				stats.SkippedTickers = append(stats.SkippedTickers, ticker)
				continue
			}
			return models.Table{}, MergeStats{}, fmt.Errorf("merge %s: %w", ticker, err)
		}

		added := 0
		cutoff, seen := last[ticker]
		for _, r := range rows {
			if seen && !r.Date.After(cutoff) {
				continue
			}
			merged = append(merged, r)
			added++
		}
		if added > 0 {
			stats.NewRows += added
			stats.TickersTouched++
		} else {
			stats.SkippedTickers = append(stats.SkippedTickers, ticker)
		}
	}

	return models.NewTable(merged), stats, nil
}
