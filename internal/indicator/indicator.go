package indicator

import (
	"fmt"
	"strconv"
	"strings"

	"TrendLab/internal/domain/models"
)

// Indicator computes one family of technical features at a bar position.
// Compute receives the full per-ticker bar history sorted by date ascending
// and the index i of the bar to compute for; it must only read bars[0..i].
type Indicator interface {
	// Names lists the feature columns this indicator emits.
	Names() []string
	// Lookback is the number of prior bars required before index i.
	Lookback() int
	// Compute returns the feature values at bars[i].
	Compute(bars []models.PriceBar, i int) map[string]float64
}

// Parse resolves an indicator identifier such as "sma_10", "ema_20",
// "rsi_14" or "macd" into its implementation.
func Parse(name string) (Indicator, error) {
	base, arg, hasArg := strings.Cut(name, "_")
	switch base {
	case "sma":
		n, err := parsePeriod(name, arg, hasArg)
		if err != nil {
			return nil, err
		}
		return NewSMA(n), nil
	case "ema":
		n, err := parsePeriod(name, arg, hasArg)
		if err != nil {
			return nil, err
		}
		return NewEMA(n), nil
	case "rsi":
		n, err := parsePeriod(name, arg, hasArg)
		if err != nil {
			return nil, err
		}
		return NewRSI(n), nil
	case "macd":
		if hasArg {
			return nil, fmt.Errorf("indicator %q takes no period", name)
		}
		return NewMACD(), nil
	default:
		return nil, fmt.Errorf("unknown indicator %q", name)
	}
}

func parsePeriod(name, arg string, hasArg bool) (int, error) {
	if !hasArg {
		return 0, fmt.Errorf("indicator %q missing period", name)
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 2 {
		return 0, fmt.Errorf("indicator %q has invalid period", name)
	}
	return n, nil
}
