package ml

import (
	"testing"

	"TrendLab/internal/domain/models"
)

// separable returns a toy set where the sign of the single feature
// decides the label, interleaved so every temporal fold sees both classes.
func separable(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			X[i] = []float64{1 + float64(i%7)*0.1}
			y[i] = 1
		} else {
			X[i] = []float64{-1 - float64(i%5)*0.1}
			y[i] = 0
		}
	}
	return X, y
}

func testParams() models.HyperParams {
	return models.HyperParams{
		LearningRate: 0.3,
		MaxDepth:     3,
		Estimators:   20,
		Subsample:    1.0,
	}
}

func TestTrainGBDTLearnsSeparableData(t *testing.T) {
	X, y := separable(60)
	m, err := TrainGBDT(X, y, testParams(), 7)
	if err != nil {
		t.Fatalf("TrainGBDT: %v", err)
	}
	for i, x := range X {
		if got := Classify(m.PredictProba(x), 0.5); got != y[i] {
			t.Fatalf("row %d predicted %d, want %d (p=%v)", i, got, y[i], m.PredictProba(x))
		}
	}
}

func TestTrainGBDTDeterministic(t *testing.T) {
	X, y := separable(40)
	hp := testParams()
	hp.Subsample = 0.7
	a, err := TrainGBDT(X, y, hp, 42)
	if err != nil {
		t.Fatalf("TrainGBDT: %v", err)
	}
	b, err := TrainGBDT(X, y, hp, 42)
	if err != nil {
		t.Fatalf("TrainGBDT: %v", err)
	}
	for _, x := range X {
		if a.PredictProba(x) != b.PredictProba(x) {
			t.Fatal("same seed produced different models")
		}
	}
}

func TestModelEncodeDecode(t *testing.T) {
	X, y := separable(40)
	m, err := TrainGBDT(X, y, testParams(), 7)
	if err != nil {
		t.Fatalf("TrainGBDT: %v", err)
	}
	raw, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	restored, err := DecodeModel(raw)
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}
	for _, x := range X {
		if restored.PredictProba(x) != m.PredictProba(x) {
			t.Fatal("decoded model diverges from original")
		}
	}
}

func TestTrainGBDTRejectsBadInput(t *testing.T) {
	X, y := separable(10)
	cases := []models.HyperParams{
		{LearningRate: 0.1, MaxDepth: 3, Estimators: 0, Subsample: 1},
		{LearningRate: 0.1, MaxDepth: 0, Estimators: 10, Subsample: 1},
		{LearningRate: 0, MaxDepth: 3, Estimators: 10, Subsample: 1},
		{LearningRate: 0.1, MaxDepth: 3, Estimators: 10, Subsample: 1.5},
	}
	for i, hp := range cases {
		if _, err := TrainGBDT(X, y, hp, 1); err == nil {
			t.Fatalf("case %d: invalid hyperparameters accepted", i)
		}
	}
	if _, err := TrainGBDT(nil, nil, testParams(), 1); err == nil {
		t.Fatal("empty training set accepted")
	}
}

func TestClassWeightShiftsDecision(t *testing.T) {
	// One ambiguous cluster, mostly negative. Unweighted the model calls
	// it Down; with a heavy positive weight it flips to Up.
	n := 30
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = []float64{0.5}
		if i%5 == 0 {
			y[i] = 1
		}
	}
	hp := testParams()
	plain, err := TrainGBDT(X, y, hp, 1)
	if err != nil {
		t.Fatalf("TrainGBDT: %v", err)
	}
	hp.ScalePosWeight = 50
	weighted, err := TrainGBDT(X, y, hp, 1)
	if err != nil {
		t.Fatalf("TrainGBDT weighted: %v", err)
	}
	if p := plain.PredictProba(X[0]); p >= 0.5 {
		t.Fatalf("unweighted proba = %v, want < 0.5", p)
	}
	if p := weighted.PredictProba(X[0]); p < 0.5 {
		t.Fatalf("weighted proba = %v, want >= 0.5", p)
	}
}
