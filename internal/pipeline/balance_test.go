package pipeline

import (
	"errors"
	"math"
	"testing"

	"TrendLab/internal/domain/models"
)

func labeledTrain(neg, pos int) TrainTable {
	rows := make([]models.FeatureRow, 0, neg+pos)
	day := 0
	for i := 0; i < neg; i++ {
		rows = append(rows, rowOn("AAPL", day, 0))
		day++
	}
	for i := 0; i < pos; i++ {
		rows = append(rows, rowOn("AAPL", day, 1))
		day++
	}
	return TrainTable{models.NewTable(rows)}
}

func TestPosWeightRatio(t *testing.T) {
	w, err := PosWeight(labeledTrain(700, 300))
	if err != nil {
		t.Fatalf("PosWeight: %v", err)
	}
	if math.Abs(w-700.0/300.0) > 1e-9 {
		t.Fatalf("weight = %v, want %v", w, 700.0/300.0)
	}
}

func TestPosWeightNoPositives(t *testing.T) {
	if _, err := PosWeight(labeledTrain(10, 0)); !errors.Is(err, models.ErrNoPositives) {
		t.Fatalf("err = %v, want ErrNoPositives", err)
	}
}

func TestPosWeightAllPositives(t *testing.T) {
	w, err := PosWeight(labeledTrain(0, 10))
	if err != nil {
		t.Fatalf("PosWeight: %v", err)
	}
	if w != 0 {
		t.Fatalf("weight = %v, want 0 with no negatives", w)
	}
}
