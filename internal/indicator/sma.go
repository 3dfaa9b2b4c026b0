package indicator

import (
	"fmt"

	"TrendLab/internal/domain/models"
)

// SMA is the simple moving average of the closing price over n bars.
type SMA struct {
	period int
	name   string
}

func NewSMA(n int) *SMA {
	return &SMA{period: n, name: fmt.Sprintf("sma_%d", n)}
}

func (s *SMA) Names() []string { return []string{s.name} }

func (s *SMA) Lookback() int { return s.period }

func (s *SMA) Compute(bars []models.PriceBar, i int) map[string]float64 {
	sum := 0.0
	for j := i - s.period + 1; j <= i; j++ {
		sum += bars[j].Close
	}
	return map[string]float64{s.name: sum / float64(s.period)}
}
