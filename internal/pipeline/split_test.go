package pipeline

import (
	"testing"
	"time"

	"TrendLab/internal/domain/models"
)

func rowOn(ticker string, day int, label int) models.FeatureRow {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d := start.AddDate(0, 0, day)
	return models.FeatureRow{
		PriceBar: models.PriceBar{Ticker: ticker, Date: d, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		Features: map[string]float64{"f": float64(day)},
		Label:    label,
	}
}

func TestSplitProportionAndOrder(t *testing.T) {
	rows := make([]models.FeatureRow, 0, 100)
	for day := 0; day < 100; day++ {
		rows = append(rows, rowOn("AAPL", day, day%2))
	}
	s, err := NewSplitter(0.75)
	if err != nil {
		t.Fatalf("NewSplitter: %v", err)
	}
	train, test, err := s.Split(models.NewTable(rows))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if train.Len() != 75 || test.Len() != 25 {
		t.Fatalf("split %d/%d, want 75/25", train.Len(), test.Len())
	}
	maxTrain := train.Rows[train.Len()-1].Date
	minTest := test.Rows[0].Date
	if maxTrain.After(minTest) || maxTrain.Equal(minTest) {
		t.Fatalf("train max %v not before test min %v", maxTrain, minTest)
	}
	if train.Len()+test.Len() != 100 {
		t.Fatal("rows lost in split")
	}
}

func TestSplitKeepsBoundaryDateInTrain(t *testing.T) {
	// Two tickers share day 6, placing the cutoff inside that date.
	rows := make([]models.FeatureRow, 0, 10)
	for day := 0; day < 7; day++ {
		rows = append(rows, rowOn("AAPL", day, 1))
	}
	rows = append(rows, rowOn("MSFT", 6, 0))
	rows = append(rows, rowOn("AAPL", 7, 1))
	rows = append(rows, rowOn("AAPL", 8, 0))

	s, err := NewSplitter(0.75)
	if err != nil {
		t.Fatalf("NewSplitter: %v", err)
	}
	train, test, err := s.Split(models.NewTable(rows))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if train.Len() != 8 || test.Len() != 2 {
		t.Fatalf("split %d/%d, want 8/2 with boundary date in train", train.Len(), test.Len())
	}
	boundary := train.Rows[train.Len()-1].Date
	for _, r := range test.Rows {
		if r.Date.Equal(boundary) {
			t.Fatal("boundary date leaked into test side")
		}
	}
}

func TestSplitRejectsBadInput(t *testing.T) {
	if _, err := NewSplitter(0); err == nil {
		t.Fatal("fraction 0 accepted")
	}
	if _, err := NewSplitter(1); err == nil {
		t.Fatal("fraction 1 accepted")
	}
	s, err := NewSplitter(0.75)
	if err != nil {
		t.Fatalf("NewSplitter: %v", err)
	}
	if _, _, err := s.Split(models.NewTable([]models.FeatureRow{rowOn("AAPL", 0, 1)})); err == nil {
		t.Fatal("single-row split accepted")
	}
}
