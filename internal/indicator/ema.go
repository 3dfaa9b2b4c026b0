package indicator

import (
	"fmt"

	"TrendLab/internal/domain/models"
)

// EMA is the exponential moving average of the closing price.
//
// It is computed from a fixed trailing window: the average of the n closes
// before i seeds the series, then one smoothing step with alpha = 2/(n+1)
// folds in close(i). A fixed window keeps recomputation over a bounded
// lookback identical to a full-history pass, which the incremental merge
// depends on.
type EMA struct {
	period int
	name   string
}

func NewEMA(n int) *EMA {
	return &EMA{period: n, name: fmt.Sprintf("ema_%d", n)}
}

func (e *EMA) Names() []string { return []string{e.name} }

func (e *EMA) Lookback() int { return e.period }

func (e *EMA) Compute(bars []models.PriceBar, i int) map[string]float64 {
	return map[string]float64{e.name: emaAt(bars, i, e.period)}
}

// emaAt is shared with the MACD implementation.
func emaAt(bars []models.PriceBar, i, n int) float64 {
	seed := 0.0
	for j := i - n; j < i; j++ {
		seed += bars[j].Close
	}
	seed /= float64(n)
	alpha := 2.0 / float64(n+1)
	return alpha*bars[i].Close + (1-alpha)*seed
}
