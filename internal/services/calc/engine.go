package calc

import (
	"fmt"
	"math"
	"sort"

	"AlphaPull/internal/domain/models"
	domsvc "AlphaPull/internal/domain/service"
)

const tradingDaysPerYear = 252.0

// Engine is the in-process calculation engine. All methods are pure and
// never mutate their inputs.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// SMA computes the simple moving average. Result length is
// len(prices)-period+1, or empty when there are fewer points than the period.
func (e *Engine) SMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("sma: period must be greater than 0")
	}
	if len(prices) < period {
		return []float64{}, nil
	}
	out := make([]float64, 0, len(prices)-period+1)
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out, nil
}

// EMA computes the exponential moving average seeded with the SMA of the
// first window. Same length convention as SMA.
func (e *Engine) EMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema: period must be greater than 0")
	}
	if len(prices) < period {
		return []float64{}, nil
	}
	mult := 2.0 / (float64(period) + 1.0)
	out := make([]float64, 0, len(prices)-period+1)

	seed := 0.0
	for _, p := range prices[:period] {
		seed += p
	}
	seed /= float64(period)
	out = append(out, seed)

	for i := period; i < len(prices); i++ {
		next := prices[i]*mult + out[len(out)-1]*(1.0-mult)
		out = append(out, next)
	}
	return out, nil
}

// RSI computes the relative strength index over a rolling window of price
// changes. Result length is len(prices)-period, empty when insufficient.
// Values lie in [0,100]; an all-gain window yields 100.
func (e *Engine) RSI(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi: period must be greater than 0")
	}
	if len(prices) < period+1 {
		return []float64{}, nil
	}

	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = prices[i] - prices[i-1]
	}

	out := make([]float64, 0, len(changes)-period+1)
	for i := period; i <= len(changes); i++ {
		gains, losses := 0.0, 0.0
		for _, ch := range changes[i-period : i] {
			if ch > 0 {
				gains += ch
			} else {
				losses += -ch
			}
		}
		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)

		if avgLoss == 0 {
			out = append(out, 100.0)
			continue
		}
		rs := avgGain / avgLoss
		out = append(out, 100.0-100.0/(1.0+rs))
	}
	return out, nil
}

// RiskMetrics computes annualized volatility, VaR, drawdown and ratio
// statistics over a simple-return series.
func (e *Engine) RiskMetrics(returns []float64) (models.RiskMetrics, error) {
	if len(returns) == 0 {
		return models.RiskMetrics{}, fmt.Errorf("risk metrics: empty returns")
	}

	mean := meanOf(returns)
	vol := stdDevOf(returns, mean) * math.Sqrt(tradingDaysPerYear)

	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	var95 := sorted[int(float64(len(sorted))*0.05)]
	var99 := sorted[int(float64(len(sorted))*0.01)]

	// max drawdown over the cumulative growth curve
	cum, peak := 1.0, 1.0
	maxDD := 0.0
	for _, r := range returns {
		cum *= 1.0 + r
		if cum > peak {
			peak = cum
		}
		if dd := (peak - cum) / peak; dd > maxDD {
			maxDD = dd
		}
	}

	sharpe := 0.0
	if vol > 0 {
		sharpe = mean * tradingDaysPerYear / vol
	}

	downside := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	sortino := 0.0
	if len(downside) > 0 {
		dvol := stdDevOf(downside, meanOf(downside)) * math.Sqrt(tradingDaysPerYear)
		if dvol > 0 {
			sortino = mean * tradingDaysPerYear / dvol
		}
	}

	return models.RiskMetrics{
		Volatility:  vol,
		VaR95:       var95,
		VaR99:       var99,
		SharpeRatio: sharpe,
		Sortino:     sortino,
		MaxDrawdown: maxDD,
	}, nil
}

func meanOf(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDevOf(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

var _ domsvc.CalculationEngine = (*Engine)(nil)
