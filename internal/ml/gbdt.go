package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"TrendLab/internal/domain/models"
)

// Model is a gradient boosted tree ensemble for binary classification
// trained with logistic loss. The raw score starts at zero and each tree
// adds a learning-rate-scaled correction; PredictProba applies the
// sigmoid to the accumulated score.
type Model struct {
	Trees []tree `json:"trees"`
}

type tree struct {
	Nodes []treeNode `json:"nodes"`
}

// treeNode is one node of a flat, index-linked decision tree. Leaf nodes
// carry the already learning-rate-scaled output value.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

const lambda = 1.0 // L2 regularization on leaf weights

// TrainGBDT fits an ensemble on standardized features X and binary labels
// y. Positive examples are weighted by hp.ScalePosWeight (a value <= 0
// means unweighted). The seed makes row subsampling reproducible.
func TrainGBDT(X [][]float64, y []int, hp models.HyperParams, seed int64) (*Model, error) {
	n := len(X)
	if n == 0 || len(y) != n {
		return nil, fmt.Errorf("train: %d rows, %d labels", n, len(y))
	}
	if hp.Estimators < 1 || hp.MaxDepth < 1 || hp.LearningRate <= 0 {
		return nil, fmt.Errorf("train: invalid hyperparameters %+v", hp)
	}
	if hp.Subsample <= 0 || hp.Subsample > 1 {
		return nil, fmt.Errorf("train: subsample %v out of (0, 1]", hp.Subsample)
	}

	posW := hp.ScalePosWeight
	if posW <= 0 {
		posW = 1
	}
	weights := make([]float64, n)
	for i, label := range y {
		if label == 1 {
			weights[i] = posW
		} else {
			weights[i] = 1
		}
	}

	scores := make([]float64, n)
	grads := make([]float64, n)
	hess := make([]float64, n)
	m := &Model{Trees: make([]tree, 0, hp.Estimators)}

	sampleSize := int(hp.Subsample * float64(n))
	if sampleSize < 1 {
		sampleSize = 1
	}

	for round := 0; round < hp.Estimators; round++ {
		for i := range scores {
			p := sigmoid(scores[i])
			yv := float64(y[i])
			grads[i] = (p - yv) * weights[i]
			hess[i] = p * (1 - p) * weights[i]
		}

		rng := rand.New(rand.NewSource(seed + int64(round)))
		sample := rng.Perm(n)[:sampleSize]

		tr := buildTree(X, grads, hess, sample, hp.MaxDepth, hp.LearningRate)
		m.Trees = append(m.Trees, tr)

		for i := range scores {
			scores[i] += tr.predict(X[i])
		}
	}
	return m, nil
}

// PredictProba returns the probability of the positive (Up) class.
func (m *Model) PredictProba(x []float64) float64 {
	score := 0.0
	for _, tr := range m.Trees {
		score += tr.predict(x)
	}
	return sigmoid(score)
}

// Encode serializes the ensemble for embedding in a model artifact.
func (m *Model) Encode() (json.RawMessage, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return raw, nil
}

// DecodeModel restores an ensemble from its artifact representation.
func DecodeModel(raw json.RawMessage) (*Model, error) {
	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &m, nil
}

func (t tree) predict(x []float64) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// buildTree grows one regression tree on the sampled rows by greedy exact
// splits over second-order gain, then scales leaf outputs by the
// learning rate so predict needs no extra factor.
func buildTree(X [][]float64, grads, hess []float64, sample []int, maxDepth int, lr float64) tree {
	t := &tree{}
	grow(t, X, grads, hess, sample, maxDepth, lr)
	return *t
}

func grow(t *tree, X [][]float64, grads, hess []float64, rows []int, depth int, lr float64) int {
	var gSum, hSum float64
	for _, i := range rows {
		gSum += grads[i]
		hSum += hess[i]
	}

	if depth == 0 || len(rows) < 2 {
		return leaf(t, gSum, hSum, lr)
	}

	feature, threshold, gain := bestSplit(X, grads, hess, rows, gSum, hSum)
	if gain <= 0 {
		return leaf(t, gSum, hSum, lr)
	}

	var left, right []int
	for _, i := range rows {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Feature: feature, Threshold: threshold})
	l := grow(t, X, grads, hess, left, depth-1, lr)
	r := grow(t, X, grads, hess, right, depth-1, lr)
	t.Nodes[idx].Left = l
	t.Nodes[idx].Right = r
	return idx
}

func leaf(t *tree, gSum, hSum, lr float64) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{
		Leaf:  true,
		Value: -gSum / (hSum + lambda) * lr,
	})
	return idx
}

func bestSplit(X [][]float64, grads, hess []float64, rows []int, gSum, hSum float64) (int, float64, float64) {
	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0
	parent := gSum * gSum / (hSum + lambda)

	nFeatures := len(X[rows[0]])
	order := make([]int, len(rows))
	for f := 0; f < nFeatures; f++ {
		copy(order, rows)
		sortByFeature(order, X, f)

		var gl, hl float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			gl += grads[i]
			hl += hess[i]
			cur, next := X[i][f], X[order[k+1]][f]
			if cur == next {
				continue
			}
			gr, hr := gSum-gl, hSum-hl
			gain := gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parent
			if gain > bestGain {
				bestFeature = f
				bestThreshold = (cur + next) / 2
				bestGain = gain
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func sortByFeature(order []int, X [][]float64, f int) {
	sort.Slice(order, func(a, b int) bool {
		return X[order[a]][f] < X[order[b]][f]
	})
}
