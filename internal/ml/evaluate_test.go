package ml

import (
	"math"
	"testing"
)

// fixedPredictor replays a scripted probability per row.
type fixedPredictor struct {
	probs []float64
	next  int
}

func (f *fixedPredictor) PredictProba(_ []float64) float64 {
	p := f.probs[f.next]
	f.next++
	return p
}

func TestEvaluateConfusionByHand(t *testing.T) {
	// actual:    0  0  0  1  1  1  1  0
	// predicted: 0  1  0  1  1  0  1  0
	y := []int{0, 0, 0, 1, 1, 1, 1, 0}
	probs := []float64{0.1, 0.9, 0.2, 0.8, 0.7, 0.3, 0.6, 0.4}
	X := make([][]float64, len(y))
	for i := range X {
		X[i] = []float64{0}
	}

	e := Evaluate(&fixedPredictor{probs: probs}, X, y, 0.5)

	if e.Confusion != [2][2]int{{3, 1}, {1, 3}} {
		t.Fatalf("confusion = %v, want [[3 1] [1 3]]", e.Confusion)
	}
	diag := e.Confusion[0][0] + e.Confusion[1][1]
	if got := float64(diag) / float64(e.Total); math.Abs(e.Accuracy-got) > 1e-12 {
		t.Fatalf("accuracy %v != diagonal/total %v", e.Accuracy, got)
	}
	// symmetric confusion: both classes have precision = recall = 0.75
	for c := 0; c < 2; c++ {
		if math.Abs(e.PerClass[c].Precision-0.75) > 1e-12 || math.Abs(e.PerClass[c].Recall-0.75) > 1e-12 {
			t.Fatalf("class %d metrics = %+v, want 0.75/0.75", c, e.PerClass[c])
		}
		if e.PerClass[c].Support != 4 {
			t.Fatalf("class %d support = %d, want 4", c, e.PerClass[c].Support)
		}
	}
	if math.Abs(e.MacroF1-0.75) > 1e-12 || math.Abs(e.WeightedF1-0.75) > 1e-12 {
		t.Fatalf("macro F1 %v, weighted F1 %v, want 0.75", e.MacroF1, e.WeightedF1)
	}
	// 11 of the 16 pos/neg pairs are ranked correctly.
	if math.Abs(e.ROCAUC-11.0/16.0) > 1e-12 {
		t.Fatalf("roc auc = %v, want %v", e.ROCAUC, 11.0/16.0)
	}
}

func TestROCAUCByHand(t *testing.T) {
	cases := []struct {
		name  string
		y     []int
		probs []float64
		want  float64
	}{
		// 3 of 4 pos/neg pairs ranked correctly.
		{"partial order", []int{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 0.75},
		{"perfect ranking", []int{0, 1, 0, 1}, []float64{0.2, 0.9, 0.1, 0.8}, 1},
		{"inverted ranking", []int{1, 0}, []float64{0.1, 0.9}, 0},
		// a tie counts as half a correct pair
		{"all tied", []int{0, 1}, []float64{0.5, 0.5}, 0.5},
		{"tie block", []int{0, 1, 1, 0}, []float64{0.3, 0.3, 0.8, 0.3}, 0.75},
		{"single class", []int{1, 1}, []float64{0.6, 0.7}, 0},
	}
	for _, tc := range cases {
		if got := rocAUC(tc.probs, tc.y); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("%s: roc auc = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEvaluateZeroDivisionReportsZero(t *testing.T) {
	// Model never predicts Up: Up precision has a zero denominator.
	y := []int{0, 1, 1}
	probs := []float64{0.1, 0.2, 0.3}
	X := make([][]float64, len(y))
	for i := range X {
		X[i] = []float64{0}
	}
	e := Evaluate(&fixedPredictor{probs: probs}, X, y, 0.5)
	if up := e.PerClass[1]; up.Precision != 0 || up.Recall != 0 || up.F1 != 0 {
		t.Fatalf("Up metrics = %+v, want zeros", up)
	}
	if e.PerClass[0].Recall != 1 {
		t.Fatalf("Down recall = %v, want 1", e.PerClass[0].Recall)
	}
}

func TestClassifyThreshold(t *testing.T) {
	if Classify(0.5, 0.5) != 1 {
		t.Fatal("probability at threshold must predict Up")
	}
	if Classify(0.49, 0.5) != 0 {
		t.Fatal("probability below threshold must predict Down")
	}
}

func TestScoreFuncs(t *testing.T) {
	yTrue := []int{1, 1, 0, 0, 1}
	yPred := []int{1, 0, 1, 0, 1}
	// tp=2 fp=1 fn=1 tn=1
	cases := map[string]float64{
		"precision": 2.0 / 3.0,
		"recall":    2.0 / 3.0,
		"f1":        2.0 / 3.0,
		"accuracy":  3.0 / 5.0,
	}
	for name, want := range cases {
		fn, err := scoreFunc(name)
		if err != nil {
			t.Fatalf("scoreFunc(%s): %v", name, err)
		}
		if got := fn(yTrue, yPred); math.Abs(got-want) > 1e-12 {
			t.Fatalf("%s = %v, want %v", name, got, want)
		}
	}
	if _, err := scoreFunc("auc"); err == nil {
		t.Fatal("unknown scoring accepted")
	}
}
