package models

import (
	"fmt"
	"strings"
)

// ClassNames are the binary direction classes in confusion-matrix order.
var ClassNames = [2]string{"Down", "Up"}

// ClassMetrics are per-class precision/recall/F1 with support counts.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation is the held-out test report for a trained model.
// Confusion rows are actual classes, columns predicted, ordered [Down, Up].
type Evaluation struct {
	Confusion         [2][2]int       `json:"confusion"`
	PerClass          [2]ClassMetrics `json:"per_class"`
	Accuracy          float64         `json:"accuracy"`
	ROCAUC            float64         `json:"roc_auc"`
	MacroPrecision    float64         `json:"macro_precision"`
	MacroRecall       float64         `json:"macro_recall"`
	MacroF1           float64         `json:"macro_f1"`
	WeightedPrecision float64         `json:"weighted_precision"`
	WeightedRecall    float64         `json:"weighted_recall"`
	WeightedF1        float64         `json:"weighted_f1"`
	Total             int             `json:"total"`
}

// String renders the human-readable classification report.
func (e Evaluation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	for i, name := range ClassNames {
		m := e.PerClass[i]
		fmt.Fprintf(&b, "%-10s %10.4f %10.4f %10.4f %10d\n", name, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&b, "\n%-10s %32.4f %10d\n", "accuracy", e.Accuracy, e.Total)
	fmt.Fprintf(&b, "%-10s %32.4f\n", "roc auc", e.ROCAUC)
	fmt.Fprintf(&b, "%-10s %10.4f %10.4f %10.4f %10d\n", "macro avg", e.MacroPrecision, e.MacroRecall, e.MacroF1, e.Total)
	fmt.Fprintf(&b, "%-10s %10.4f %10.4f %10.4f %10d\n", "weighted", e.WeightedPrecision, e.WeightedRecall, e.WeightedF1, e.Total)
	fmt.Fprintf(&b, "\nconfusion matrix (rows=actual, cols=predicted) [Down Up]:\n")
	fmt.Fprintf(&b, "  Down %6d %6d\n", e.Confusion[0][0], e.Confusion[0][1])
	fmt.Fprintf(&b, "  Up   %6d %6d\n", e.Confusion[1][0], e.Confusion[1][1])
	return b.String()
}
