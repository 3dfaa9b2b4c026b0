package ml

import (
	"fmt"
	"sort"

	"TrendLab/internal/domain/models"
)

// Predictor is anything that scores a feature vector with the
// probability of the positive class.
type Predictor interface {
	PredictProba(x []float64) float64
}

// Classify applies the decision threshold: probability >= threshold
// predicts Up.
func Classify(p, threshold float64) int {
	if p >= threshold {
		return 1
	}
	return 0
}

// Evaluate scores a predictor on held-out rows and builds the full
// classification report. Metrics whose denominator is zero report zero.
func Evaluate(m Predictor, X [][]float64, y []int, threshold float64) models.Evaluation {
	var e models.Evaluation
	e.Total = len(y)
	probs := make([]float64, len(X))
	for i, x := range X {
		probs[i] = m.PredictProba(x)
		e.Confusion[y[i]][Classify(probs[i], threshold)]++
	}
	e.ROCAUC = rocAUC(probs, y)

	for c := 0; c < 2; c++ {
		tp := e.Confusion[c][c]
		predicted := e.Confusion[0][c] + e.Confusion[1][c]
		actual := e.Confusion[c][0] + e.Confusion[c][1]
		e.PerClass[c] = models.ClassMetrics{
			Precision: safeDiv(float64(tp), float64(predicted)),
			Recall:    safeDiv(float64(tp), float64(actual)),
			Support:   actual,
		}
		e.PerClass[c].F1 = harmonic(e.PerClass[c].Precision, e.PerClass[c].Recall)
	}

	correct := e.Confusion[0][0] + e.Confusion[1][1]
	e.Accuracy = safeDiv(float64(correct), float64(e.Total))

	for c := 0; c < 2; c++ {
		m := e.PerClass[c]
		w := safeDiv(float64(m.Support), float64(e.Total))
		e.MacroPrecision += m.Precision / 2
		e.MacroRecall += m.Recall / 2
		e.MacroF1 += m.F1 / 2
		e.WeightedPrecision += m.Precision * w
		e.WeightedRecall += m.Recall * w
		e.WeightedF1 += m.F1 * w
	}
	return e
}

// rocAUC computes the area under the ROC curve from raw probabilities
// via the rank statistic, with tied probabilities sharing their average
// rank. A test set with only one class present reports zero.
func rocAUC(probs []float64, y []int) float64 {
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return probs[order[a]] < probs[order[b]] })

	var rankSum float64
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && probs[order[j]] == probs[order[i]] {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 1-based ranks i+1..j
		for k := i; k < j; k++ {
			if y[order[k]] == 1 {
				rankSum += avgRank
			}
		}
		i = j
	}

	var pos, neg float64
	for _, label := range y {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0
	}
	return (rankSum - pos*(pos+1)/2) / (pos * neg)
}

// scoreFunc maps a scoring name to a metric over predicted labels. The
// positive (Up) class is the scoring target for the class-conditional
// metrics, matching the search's optimization goal.
func scoreFunc(name string) (func(yTrue, yPred []int) float64, error) {
	switch name {
	case "precision":
		return func(yTrue, yPred []int) float64 {
			var tp, fp int
			for i := range yTrue {
				if yPred[i] == 1 {
					if yTrue[i] == 1 {
						tp++
					} else {
						fp++
					}
				}
			}
			return safeDiv(float64(tp), float64(tp+fp))
		}, nil
	case "recall":
		return func(yTrue, yPred []int) float64 {
			var tp, fn int
			for i := range yTrue {
				if yTrue[i] == 1 {
					if yPred[i] == 1 {
						tp++
					} else {
						fn++
					}
				}
			}
			return safeDiv(float64(tp), float64(tp+fn))
		}, nil
	case "f1":
		return func(yTrue, yPred []int) float64 {
			var tp, fp, fn int
			for i := range yTrue {
				switch {
				case yPred[i] == 1 && yTrue[i] == 1:
					tp++
				case yPred[i] == 1:
					fp++
				case yTrue[i] == 1:
					fn++
				}
			}
			p := safeDiv(float64(tp), float64(tp+fp))
			r := safeDiv(float64(tp), float64(tp+fn))
			return harmonic(p, r)
		}, nil
	case "accuracy":
		return func(yTrue, yPred []int) float64 {
			var correct int
			for i := range yTrue {
				if yTrue[i] == yPred[i] {
					correct++
				}
			}
			return safeDiv(float64(correct), float64(len(yTrue)))
		}, nil
	default:
		return nil, fmt.Errorf("unknown scoring %q", name)
	}
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func harmonic(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
