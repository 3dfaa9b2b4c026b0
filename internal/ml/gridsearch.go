package ml

import (
	"context"
	"fmt"
	"sync"

	"TrendLab/internal/domain/models"
	"TrendLab/pkg/logger"
)

// GridSpec enumerates the hyperparameter axes of the search. The
// Cartesian product of all axes is evaluated.
type GridSpec struct {
	LearningRates []float64
	MaxDepths     []int
	Estimators    []int
	Subsamples    []float64
}

// Points expands the grid in a fixed enumeration order, which also
// defines the tie-break: the earliest point wins on equal scores.
func (g GridSpec) Points() []models.HyperParams {
	var out []models.HyperParams
	for _, lr := range g.LearningRates {
		for _, depth := range g.MaxDepths {
			for _, est := range g.Estimators {
				for _, sub := range g.Subsamples {
					out = append(out, models.HyperParams{
						LearningRate: lr,
						MaxDepth:     depth,
						Estimators:   est,
						Subsample:    sub,
					})
				}
			}
		}
	}
	return out
}

// PointResult is the cross-validated outcome of one grid point.
type PointResult struct {
	Params models.HyperParams
	Score  float64
	Err    error
}

// Search runs a cross-validated hyperparameter grid search.
//
// Folds are expanding windows over the chronologically ordered training
// rows: fold i trains on the first i+1 chunks and validates on the next,
// so validation data is always strictly later than its fold's training
// data. Grid points run in parallel; results are collected by index so
// the outcome is independent of scheduling.
type Search struct {
	grid    GridSpec
	folds   int
	workers int
	scoring string
	seed    int64
	log     *logger.Logger
}

type SearchOption func(*Search)

func WithFolds(k int) SearchOption {
	return func(s *Search) { s.folds = k }
}

func WithWorkers(n int) SearchOption {
	return func(s *Search) { s.workers = n }
}

func WithScoring(name string) SearchOption {
	return func(s *Search) { s.scoring = name }
}

func WithSeed(seed int64) SearchOption {
	return func(s *Search) { s.seed = seed }
}

func WithSearchLogger(log *logger.Logger) SearchOption {
	return func(s *Search) { s.log = log }
}

func NewSearch(grid GridSpec, opts ...SearchOption) *Search {
	s := &Search{
		grid:    grid,
		folds:   3,
		workers: 4,
		scoring: "precision",
		seed:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run evaluates every grid point over the folds and returns the winning
// hyperparameters with their mean validation score, plus all per-point
// results. Points that fail to train are excluded from selection; the
// search fails only if every point fails or the fold layout is invalid.
func (s *Search) Run(ctx context.Context, X [][]float64, y []int, posWeight, threshold float64) (models.HyperParams, float64, []PointResult, error) {
	points := s.grid.Points()
	if len(points) == 0 {
		return models.HyperParams{}, 0, nil, fmt.Errorf("empty hyperparameter grid")
	}
	score, err := scoreFunc(s.scoring)
	if err != nil {
		return models.HyperParams{}, 0, nil, err
	}
	folds, err := expandingFolds(len(X), s.folds)
	if err != nil {
		return models.HyperParams{}, 0, nil, err
	}

	results := make([]PointResult, len(points))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := s.workers
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = s.evaluatePoint(ctx, idx, points[idx], X, y, posWeight, threshold, folds, score)
			}
		}()
	}
	for idx := range points {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return models.HyperParams{}, 0, results, fmt.Errorf("grid search: %w", err)
	}

	bestIdx := -1
	for idx, r := range results {
		if r.Err != nil {
			if s.log != nil {
				s.log.Warn("grid point failed",
					logger.Any("params", r.Params),
					logger.Error(r.Err))
			}
			continue
		}
		// strictly greater keeps the first-enumerated point on ties
		if bestIdx == -1 || r.Score > results[bestIdx].Score {
			bestIdx = idx
		}
	}
	if bestIdx == -1 {
		return models.HyperParams{}, 0, results, fmt.Errorf("all %d grid points failed", len(points))
	}

	best := results[bestIdx]
	best.Params.ScalePosWeight = posWeight
	if s.log != nil {
		s.log.Info("grid search complete",
			logger.Int("points", len(points)),
			logger.Any("best_params", best.Params),
			logger.String("scoring", s.scoring),
			logger.Float64("best_score", best.Score))
	}
	return best.Params, best.Score, results, nil
}

func (s *Search) evaluatePoint(ctx context.Context, idx int, hp models.HyperParams, X [][]float64, y []int, posWeight, threshold float64, folds []fold, score func([]int, []int) float64) PointResult {
	hp.ScalePosWeight = posWeight
	res := PointResult{Params: hp}
	total := 0.0
	for f, fo := range folds {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		model, err := TrainGBDT(X[:fo.trainEnd], y[:fo.trainEnd], hp, s.seed+int64(idx*1000+f))
		if err != nil {
			res.Err = fmt.Errorf("fold %d: %w", f, err)
			return res
		}
		pred := make([]int, fo.valEnd-fo.trainEnd)
		for i := fo.trainEnd; i < fo.valEnd; i++ {
			pred[i-fo.trainEnd] = Classify(model.PredictProba(X[i]), threshold)
		}
		total += score(y[fo.trainEnd:fo.valEnd], pred)
	}
	res.Score = total / float64(len(folds))
	return res
}

type fold struct {
	trainEnd int
	valEnd   int
}

// expandingFolds lays k folds over n chronologically ordered rows. Rows
// split into k+1 chunks; fold i trains on chunks [0, i] and validates on
// chunk i+1, with the last fold absorbing the remainder.
func expandingFolds(n, k int) ([]fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	chunk := n / (k + 1)
	if chunk < 1 {
		return nil, fmt.Errorf("%d rows cannot support %d folds", n, k)
	}
	folds := make([]fold, k)
	for i := 0; i < k; i++ {
		folds[i] = fold{trainEnd: chunk * (i + 1), valEnd: chunk * (i + 2)}
	}
	folds[k-1].valEnd = n
	return folds, nil
}
