package indicator

import (
	"fmt"

	"TrendLab/internal/domain/models"
)

// RSI is the relative strength index over n close-to-close changes.
// Average gain and loss are simple means over the window. When the
// average loss is zero the RSI saturates at 100.
type RSI struct {
	period int
	name   string
}

func NewRSI(n int) *RSI {
	return &RSI{period: n, name: fmt.Sprintf("rsi_%d", n)}
}

func (r *RSI) Names() []string { return []string{r.name} }

func (r *RSI) Lookback() int { return r.period }

func (r *RSI) Compute(bars []models.PriceBar, i int) map[string]float64 {
	var gain, loss float64
	for j := i - r.period + 1; j <= i; j++ {
		delta := bars[j].Close - bars[j-1].Close
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	avgGain := gain / float64(r.period)
	avgLoss := loss / float64(r.period)
	if avgLoss == 0 {
		return map[string]float64{r.name: 100}
	}
	rs := avgGain / avgLoss
	return map[string]float64{r.name: 100 - 100/(1+rs)}
}
