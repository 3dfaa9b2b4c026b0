package indicator

import (
	"errors"
	"testing"

	"TrendLab/internal/domain/models"
)

func TestEngineShortHistory(t *testing.T) {
	eng, err := NewEngine([]string{"sma_10"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	bars := makeBars("TINY", 1, 2, 3, 4, 5)
	if _, err := eng.ComputeTicker(bars); !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("err = %v, want ErrInsufficientHistory", err)
	}
}

func TestEngineDropsWarmupAndFinalBar(t *testing.T) {
	eng, err := NewEngine([]string{"sma_3"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	bars := makeBars("AAPL", 1, 2, 3, 4, 5, 6, 7, 8)
	rows, err := eng.ComputeTicker(bars)
	if err != nil {
		t.Fatalf("ComputeTicker: %v", err)
	}
	// Rows run from index maxLookback to len-2 inclusive.
	if want := len(bars) - eng.MaxLookback() - 1; len(rows) != want {
		t.Fatalf("rows = %d, want %d", len(rows), want)
	}
	if !rows[0].Date.Equal(bars[eng.MaxLookback()].Date) {
		t.Fatalf("first row at %v, want %v", rows[0].Date, bars[eng.MaxLookback()].Date)
	}
	if !rows[len(rows)-1].Date.Equal(bars[len(bars)-2].Date) {
		t.Fatalf("last row at %v, final bar must not be labeled", rows[len(rows)-1].Date)
	}
}

func TestEngineLabels(t *testing.T) {
	eng, err := NewEngine([]string{"sma_2"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	// down, flat, up transitions after the warm-up.
	bars := makeBars("AAPL", 10, 11, 12, 11, 11, 13)
	rows, err := eng.ComputeTicker(bars)
	if err != nil {
		t.Fatalf("ComputeTicker: %v", err)
	}
	want := []int{0, 0, 1}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i, w := range want {
		if rows[i].Label != w {
			t.Fatalf("row %d label = %d, want %d", i, rows[i].Label, w)
		}
	}
}

func TestLabelFinalBarUndefined(t *testing.T) {
	bars := makeBars("AAPL", 10, 12, 11)

	if got, err := Label(bars, 0); err != nil || got != 1 {
		t.Fatalf("Label(0) = %d, %v, want 1, nil", got, err)
	}
	if got, err := Label(bars, 1); err != nil || got != 0 {
		t.Fatalf("Label(1) = %d, %v, want 0, nil", got, err)
	}
	if _, err := Label(bars, len(bars)-1); !errors.Is(err, models.ErrLabelUndefined) {
		t.Fatalf("final bar err = %v, want ErrLabelUndefined", err)
	}
}

func TestEngineFeatureNamesSorted(t *testing.T) {
	eng, err := NewEngine([]string{"macd", "sma_10", "ema_20", "rsi_14"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	want := []string{"ema_20", "macd", "macd_signal", "rsi_14", "sma_10"}
	got := eng.FeatureNames()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
}

func TestEngineRejectsDuplicates(t *testing.T) {
	if _, err := NewEngine([]string{"sma_10", "sma_10"}); err == nil {
		t.Fatal("duplicate indicator accepted")
	}
}
