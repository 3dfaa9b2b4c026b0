package pipeline

import (
	"fmt"

	"TrendLab/internal/domain/models"
)

// PosWeight returns the class weight applied to positive (Up) examples:
// the ratio of negative to positive training labels. A training set with
// no positive labels makes the ratio undefined and fails the run.
func PosWeight(train TrainTable) (float64, error) {
	var pos, neg int
	for _, r := range train.Rows {
		if r.Label == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 {
		return 0, fmt.Errorf("%d rows, all negative: %w", train.Len(), models.ErrNoPositives)
	}
	return float64(neg) / float64(pos), nil
}
