package ml

import (
	"context"
	"testing"
)

func TestExpandingFoldsLayout(t *testing.T) {
	folds, err := expandingFolds(100, 3)
	if err != nil {
		t.Fatalf("expandingFolds: %v", err)
	}
	want := []fold{{25, 50}, {50, 75}, {75, 100}}
	if len(folds) != len(want) {
		t.Fatalf("folds = %v, want %v", folds, want)
	}
	for i := range want {
		if folds[i] != want[i] {
			t.Fatalf("fold %d = %v, want %v", i, folds[i], want[i])
		}
	}
	// every fold validates strictly after its training rows
	for _, f := range folds {
		if f.valEnd <= f.trainEnd {
			t.Fatalf("fold %v validates before training end", f)
		}
	}
}

func TestExpandingFoldsRejectsBadShape(t *testing.T) {
	if _, err := expandingFolds(100, 1); err == nil {
		t.Fatal("single fold accepted")
	}
	if _, err := expandingFolds(3, 3); err == nil {
		t.Fatal("3 rows over 3 folds accepted")
	}
}

func TestSearchFindsSeparableOptimum(t *testing.T) {
	X, y := separable(80)
	grid := GridSpec{
		LearningRates: []float64{0.3},
		MaxDepths:     []int{2, 3},
		Estimators:    []int{15},
		Subsamples:    []float64{1.0},
	}
	s := NewSearch(grid, WithFolds(3), WithWorkers(2), WithSeed(7))
	best, score, results, err := s.Run(context.Background(), X, y, 1.0, 0.5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if score != 1.0 {
		t.Fatalf("best score = %v, want 1.0 on separable data", score)
	}
	if best.ScalePosWeight != 1.0 {
		t.Fatalf("ScalePosWeight = %v, want 1.0 carried into winner", best.ScalePosWeight)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("point %+v failed: %v", r.Params, r.Err)
		}
	}
}

func TestSearchTieBreakIsFirstEnumerated(t *testing.T) {
	X, y := separable(80)
	// Separable data scores 1.0 everywhere, so the first enumerated
	// point must win.
	grid := GridSpec{
		LearningRates: []float64{0.3, 0.5},
		MaxDepths:     []int{3},
		Estimators:    []int{15},
		Subsamples:    []float64{1.0},
	}
	s := NewSearch(grid, WithFolds(3), WithWorkers(4), WithSeed(7))
	best, _, _, err := s.Run(context.Background(), X, y, 1.0, 0.5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if best.LearningRate != 0.3 {
		t.Fatalf("tie broke to lr=%v, want first enumerated 0.3", best.LearningRate)
	}
}

func TestSearchExcludesFailedPoints(t *testing.T) {
	X, y := separable(80)
	grid := GridSpec{
		LearningRates: []float64{0.3},
		MaxDepths:     []int{3},
		Estimators:    []int{0, 15}, // first point cannot train
		Subsamples:    []float64{1.0},
	}
	s := NewSearch(grid, WithFolds(3), WithSeed(7))
	best, _, results, err := s.Run(context.Background(), X, y, 1.0, 0.5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Err == nil {
		t.Fatal("invalid point did not fail")
	}
	if best.Estimators != 15 {
		t.Fatalf("best estimators = %d, want 15", best.Estimators)
	}
}

func TestSearchFailsWhenAllPointsFail(t *testing.T) {
	X, y := separable(80)
	grid := GridSpec{
		LearningRates: []float64{0.3},
		MaxDepths:     []int{3},
		Estimators:    []int{0},
		Subsamples:    []float64{1.0},
	}
	s := NewSearch(grid, WithFolds(3))
	if _, _, _, err := s.Run(context.Background(), X, y, 1.0, 0.5); err == nil {
		t.Fatal("search succeeded with no trainable points")
	}
}
