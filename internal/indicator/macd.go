package indicator

import (
	"TrendLab/internal/domain/models"
)

const (
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// MACD emits the moving average convergence/divergence line and its
// signal line with the standard 12/26/9 periods.
type MACD struct{}

func NewMACD() *MACD { return &MACD{} }

func (m *MACD) Names() []string { return []string{"macd", "macd_signal"} }

// Lookback covers the slow EMA window plus the signal seed.
func (m *MACD) Lookback() int { return macdSlow + macdSignal }

func (m *MACD) Compute(bars []models.PriceBar, i int) map[string]float64 {
	line := emaAt(bars, i, macdFast) - emaAt(bars, i, macdSlow)

	// Signal line: seed with the mean of the prior macdSignal line values,
	// then one smoothing step folding in the current value.
	seed := 0.0
	for j := i - macdSignal; j < i; j++ {
		seed += emaAt(bars, j, macdFast) - emaAt(bars, j, macdSlow)
	}
	seed /= float64(macdSignal)
	alpha := 2.0 / float64(macdSignal+1)
	signal := alpha*line + (1-alpha)*seed

	return map[string]float64{"macd": line, "macd_signal": signal}
}
