package pipeline

import (
	"fmt"

	"TrendLab/internal/domain/models"
)

// TrainTable and TestTable are distinct wrappers around models.Table so
// that the compiler, not convention, keeps test rows out of anything
// fitted on training data.
type TrainTable struct{ models.Table }

type TestTable struct{ models.Table }

// Splitter cuts a feature table chronologically: the oldest fraction of
// rows trains, the rest tests. Rows sharing the cutoff date go wholly to
// the training side so a calendar date never straddles the split.
type Splitter struct {
	fraction float64
}

func NewSplitter(fraction float64) (*Splitter, error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, fmt.Errorf("train fraction %v out of (0, 1)", fraction)
	}
	return &Splitter{fraction: fraction}, nil
}

// Split orders rows by date and cuts at floor(fraction * n), then checks
// the temporal invariant and fails with models.ErrLeakage if any train
// row postdates a test row.
func (s *Splitter) Split(t models.Table) (TrainTable, TestTable, error) {
	sorted := models.NewTable(t.Rows)
	n := sorted.Len()
	cut := int(s.fraction * float64(n))
	if cut < 1 || cut >= n {
		return TrainTable{}, TestTable{}, fmt.Errorf("cannot split %d rows at fraction %v", n, s.fraction)
	}
	for cut < n && sorted.Rows[cut].Date.Equal(sorted.Rows[cut-1].Date) {
		cut++
	}
	if cut >= n {
		return TrainTable{}, TestTable{}, fmt.Errorf("cutoff date spans entire test side, cannot split %d rows", n)
	}

	train := TrainTable{models.Table{Rows: sorted.Rows[:cut]}}
	test := TestTable{models.Table{Rows: sorted.Rows[cut:]}}

	maxTrain := train.Rows[len(train.Rows)-1].Date
	minTest := test.Rows[0].Date
	if maxTrain.After(minTest) {
		return TrainTable{}, TestTable{}, fmt.Errorf("train max %s after test min %s: %w",
			maxTrain.Format("2006-01-02"), minTest.Format("2006-01-02"), models.ErrLeakage)
	}
	return train, test, nil
}
