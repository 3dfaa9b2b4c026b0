package pipeline

import (
	"math"
	"testing"
	"time"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/indicator"
)

func dailyBars(t *testing.T, ticker string, closes ...float64) []models.PriceBar {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Ticker: ticker,
			Date:   start.AddDate(0, 0, i),
			Open:   c, High: c, Low: c, Close: c,
			Volume: 100,
		}
	}
	return bars
}

func driftCloses(n int, base float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		// deterministic wobble around an upward drift
		closes[i] = base + 0.5*float64(i) + 3*math.Sin(float64(i)*0.7)
	}
	return closes
}

func newTestMerger(t *testing.T) *Merger {
	t.Helper()
	eng, err := indicator.NewEngine([]string{"sma_3", "ema_5", "rsi_3"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return NewMerger(eng)
}

func requireSameTables(t *testing.T, got, want models.Table) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Fatalf("table length %d, want %d", got.Len(), want.Len())
	}
	for i := range want.Rows {
		g, w := got.Rows[i], want.Rows[i]
		if g.Key() != w.Key() || g.Label != w.Label {
			t.Fatalf("row %d: got %s label=%d, want %s label=%d", i, g.Key(), g.Label, w.Key(), w.Label)
		}
		for name, wv := range w.Features {
			if gv := g.Features[name]; math.Abs(gv-wv) > 1e-9 {
				t.Fatalf("row %s feature %s = %v, want %v", g.Key(), name, gv, wv)
			}
		}
	}
}

func TestMergeIncrementalMatchesFullRecompute(t *testing.T) {
	m := newTestMerger(t)
	bars := dailyBars(t, "AAPL", driftCloses(40, 100)...)

	full, _, err := m.Merge(models.Table{}, bars)
	if err != nil {
		t.Fatalf("full merge: %v", err)
	}

	partial, _, err := m.Merge(models.Table{}, bars[:25])
	if err != nil {
		t.Fatalf("partial merge: %v", err)
	}
	incremental, stats, err := m.Merge(partial, bars)
	if err != nil {
		t.Fatalf("incremental merge: %v", err)
	}
	if stats.NewRows == 0 {
		t.Fatal("incremental merge added no rows")
	}
	requireSameTables(t, incremental, full)
}

func TestMergeIdempotent(t *testing.T) {
	m := newTestMerger(t)
	bars := dailyBars(t, "AAPL", driftCloses(30, 50)...)

	once, _, err := m.Merge(models.Table{}, bars)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	twice, stats, err := m.Merge(once, bars)
	if err != nil {
		t.Fatalf("replay merge: %v", err)
	}
	if stats.NewRows != 0 {
		t.Fatalf("replay added %d rows, want 0", stats.NewRows)
	}
	requireSameTables(t, twice, once)
}

func TestMergeLeavesUntouchedTickersAlone(t *testing.T) {
	m := newTestMerger(t)
	a := dailyBars(t, "AAPL", driftCloses(20, 100)...)
	b := dailyBars(t, "MSFT", driftCloses(20, 200)...)

	base, _, err := m.Merge(models.Table{}, append(append([]models.PriceBar{}, a...), b...))
	if err != nil {
		t.Fatalf("base merge: %v", err)
	}

	moreA := dailyBars(t, "AAPL", driftCloses(26, 100)...)
	updated, stats, err := m.Merge(base, moreA)
	if err != nil {
		t.Fatalf("update merge: %v", err)
	}
	if stats.TickersTouched != 1 {
		t.Fatalf("touched %d tickers, want 1", stats.TickersTouched)
	}
	for i, r := range base.Rows {
		if r.Ticker != "MSFT" {
			continue
		}
		found := false
		for _, u := range updated.Rows {
			if u.Key() == r.Key() {
				found = true
				if u.Label != r.Label {
					t.Fatalf("MSFT row %d label changed", i)
				}
			}
		}
		if !found {
			t.Fatalf("MSFT row %s disappeared", r.Key())
		}
	}
}

func TestMergeSkipsShortHistory(t *testing.T) {
	m := newTestMerger(t)
	good := dailyBars(t, "AAPL", driftCloses(20, 100)...)
	short := dailyBars(t, "IPO", 10, 11, 12)

	table, stats, err := m.Merge(models.Table{}, append(good, short...))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(stats.SkippedTickers) != 1 || stats.SkippedTickers[0] != "IPO" {
		t.Fatalf("skipped = %v, want [IPO]", stats.SkippedTickers)
	}
	for _, r := range table.Rows {
		if r.Ticker == "IPO" {
			t.Fatal("short-history ticker produced rows")
		}
	}
}
