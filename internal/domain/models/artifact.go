package models

import (
	"encoding/json"
	"time"
)

// HyperParams is one point of the model hyperparameter grid.
type HyperParams struct {
	LearningRate   float64 `json:"learning_rate"`
	MaxDepth       int     `json:"max_depth"`
	Estimators     int     `json:"n_estimators"`
	Subsample      float64 `json:"subsample"`
	ScalePosWeight float64 `json:"scale_pos_weight"`
}

// ScalerState holds the per-feature normalization statistics fitted on the
// training subset. It is immutable after fit and travels with the model so
// inference always uses the exact training-time statistics.
type ScalerState struct {
	FeatureNames []string  `json:"feature_names"`
	Means        []float64 `json:"means"`
	Stddevs      []float64 `json:"stddevs"`
}

// ModelArtifact is the persisted training output: the winning
// hyperparameters, the opaque model state, and the fitted scaler.
// It is written and replaced as one atomic unit.
type ModelArtifact struct {
	Hyper     HyperParams     `json:"hyperparameters"`
	Model     json.RawMessage `json:"model"`
	Scaler    ScalerState     `json:"scaler"`
	CreatedAt time.Time       `json:"created_at"`
}
