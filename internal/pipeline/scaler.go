package pipeline

import (
	"fmt"
	"math"

	"TrendLab/internal/domain/models"
)

// Scaler standardizes feature columns to zero mean and unit variance.
//
// FitScaler only accepts a TrainTable, so statistics can never be
// computed over test rows. Columns with zero variance transform to zero.
type Scaler struct {
	state models.ScalerState
	index map[string]int
}

// FitScaler computes per-column mean and standard deviation over the
// training rows for the given feature columns, in the given order.
func FitScaler(train TrainTable, featureNames []string) (*Scaler, error) {
	n := train.Len()
	if n == 0 {
		return nil, fmt.Errorf("fit scaler: empty training table")
	}
	means := make([]float64, len(featureNames))
	stds := make([]float64, len(featureNames))
	for j, name := range featureNames {
		sum := 0.0
		for _, r := range train.Rows {
			v, ok := r.Features[name]
			if !ok {
				return nil, fmt.Errorf("fit scaler: row %s missing feature %q", r.Key(), name)
			}
			sum += v
		}
		mean := sum / float64(n)
		variance := 0.0
		for _, r := range train.Rows {
			d := r.Features[name] - mean
			variance += d * d
		}
		means[j] = mean
		stds[j] = math.Sqrt(variance / float64(n))
	}
	return NewScalerFromState(models.ScalerState{
		FeatureNames: append([]string(nil), featureNames...),
		Means:        means,
		Stddevs:      stds,
	}), nil
}

// NewScalerFromState rebuilds a scaler from persisted statistics, e.g.
// when loading a model artifact for inference.
func NewScalerFromState(state models.ScalerState) *Scaler {
	idx := make(map[string]int, len(state.FeatureNames))
	for j, name := range state.FeatureNames {
		idx[name] = j
	}
	return &Scaler{state: state, index: idx}
}

// State returns the fitted statistics for persistence.
func (s *Scaler) State() models.ScalerState { return s.state }

// Transform standardizes rows into a dense matrix with columns in the
// fitted feature order. Zero-variance columns map to zero.
func (s *Scaler) Transform(rows []models.FeatureRow) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		vec := make([]float64, len(s.state.FeatureNames))
		for j, name := range s.state.FeatureNames {
			v, ok := r.Features[name]
			if !ok {
				return nil, fmt.Errorf("transform: row %s missing feature %q", r.Key(), name)
			}
			if std := s.state.Stddevs[j]; std != 0 {
				vec[j] = (v - s.state.Means[j]) / std
			}
		}
		out[i] = vec
	}
	return out, nil
}

// Labels extracts the label column aligned with Transform's row order.
func Labels(rows []models.FeatureRow) []int {
	y := make([]int, len(rows))
	for i, r := range rows {
		y[i] = r.Label
	}
	return y
}
