package service

import (
	"context"

	"AlphaPull/internal/domain/models"
)

// DataProvider serves historical prices for a symbol, chronological
// ascending with the most recent point last. It may return fewer than n
// points when history is shorter; it must not reorder.
type DataProvider interface {
	GetPriceHistory(ctx context.Context, symbol string, n int) ([]float64, error)
}

// CalculationEngine computes indicator series and risk statistics.
// All methods are pure given identical inputs and never mutate them.
// Series results follow the window convention: SMA/EMA yield
// len(prices)-period+1 points (empty when insufficient), RSI yields
// len(prices)-period points in [0,100].
type CalculationEngine interface {
	SMA(prices []float64, period int) ([]float64, error)
	EMA(prices []float64, period int) ([]float64, error)
	RSI(prices []float64, period int) ([]float64, error)
	RiskMetrics(returns []float64) (models.RiskMetrics, error)
}
