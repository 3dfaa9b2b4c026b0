package pipeline

import (
	"math"
	"testing"

	"TrendLab/internal/domain/models"
)

func trainTableOf(rows ...models.FeatureRow) TrainTable {
	return TrainTable{models.Table{Rows: rows}}
}

func featRow(day int, feats map[string]float64, label int) models.FeatureRow {
	r := rowOn("AAPL", day, label)
	r.Features = feats
	return r
}

func TestFitScalerStatistics(t *testing.T) {
	train := trainTableOf(
		featRow(0, map[string]float64{"f": 1}, 0),
		featRow(1, map[string]float64{"f": 2}, 1),
		featRow(2, map[string]float64{"f": 3}, 0),
	)
	s, err := FitScaler(train, []string{"f"})
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	st := s.State()
	if st.Means[0] != 2 {
		t.Fatalf("mean = %v, want 2", st.Means[0])
	}
	wantStd := math.Sqrt(2.0 / 3.0)
	if math.Abs(st.Stddevs[0]-wantStd) > 1e-9 {
		t.Fatalf("std = %v, want %v", st.Stddevs[0], wantStd)
	}

	X, err := s.Transform(train.Rows)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if math.Abs(X[1][0]) > 1e-9 {
		t.Fatalf("mean row transforms to %v, want 0", X[1][0])
	}
	if math.Abs(X[2][0]-(3-2)/wantStd) > 1e-9 {
		t.Fatalf("transform = %v, want %v", X[2][0], (3-2)/wantStd)
	}
}

func TestScalerZeroVarianceColumn(t *testing.T) {
	train := trainTableOf(
		featRow(0, map[string]float64{"flat": 7}, 0),
		featRow(1, map[string]float64{"flat": 7}, 1),
	)
	s, err := FitScaler(train, []string{"flat"})
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	if s.State().Stddevs[0] != 0 {
		t.Fatalf("std = %v, want 0", s.State().Stddevs[0])
	}
	X, err := s.Transform(train.Rows)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for _, row := range X {
		if row[0] != 0 {
			t.Fatalf("zero-variance column transformed to %v, want 0", row[0])
		}
	}
}

func TestScalerMissingFeature(t *testing.T) {
	train := trainTableOf(featRow(0, map[string]float64{"f": 1}, 0))
	if _, err := FitScaler(train, []string{"g"}); err == nil {
		t.Fatal("fit with missing feature accepted")
	}
	s, err := FitScaler(train, []string{"f"})
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	bad := []models.FeatureRow{featRow(1, map[string]float64{"other": 1}, 0)}
	if _, err := s.Transform(bad); err == nil {
		t.Fatal("transform with missing feature accepted")
	}
}

func TestScalerFitIgnoresTestSideMutation(t *testing.T) {
	train := trainTableOf(
		featRow(0, map[string]float64{"f": 1}, 0),
		featRow(1, map[string]float64{"f": 2}, 1),
		featRow(2, map[string]float64{"f": 3}, 0),
	)
	s, err := FitScaler(train, []string{"f"})
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	before := s.State()

	// Held-out rows arrive after fitting; corrupting them must not reach
	// the fitted statistics.
	test := []models.FeatureRow{
		featRow(3, map[string]float64{"f": 100}, 1),
		featRow(4, map[string]float64{"f": -50}, 0),
	}
	if _, err := s.Transform(test); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for _, r := range test {
		r.Features["f"] = 1e9
	}
	if _, err := s.Transform(test); err != nil {
		t.Fatalf("Transform after mutation: %v", err)
	}

	after := s.State()
	if after.Means[0] != before.Means[0] || after.Stddevs[0] != before.Stddevs[0] {
		t.Fatalf("fitted state changed: %+v -> %+v", before, after)
	}
	if after.Means[0] != 2 {
		t.Fatalf("mean = %v, want train-only 2", after.Means[0])
	}
}

func TestScalerRoundTripState(t *testing.T) {
	train := trainTableOf(
		featRow(0, map[string]float64{"f": 1, "g": 10}, 0),
		featRow(1, map[string]float64{"f": 3, "g": 30}, 1),
	)
	s, err := FitScaler(train, []string{"f", "g"})
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	clone := NewScalerFromState(s.State())
	a, err := s.Transform(train.Rows)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	b, err := clone.Transform(train.Rows)
	if err != nil {
		t.Fatalf("clone Transform: %v", err)
	}
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("restored scaler diverges at [%d][%d]", i, j)
			}
		}
	}
}
