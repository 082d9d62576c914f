package usecase

import (
	"context"
	"fmt"
	"time"

	"AlphaPull/internal/domain/models"
	drepo "AlphaPull/internal/domain/repository"
	domsvc "AlphaPull/internal/domain/service"
	"AlphaPull/internal/services/features"
)

// RiskReporter computes annualized risk metrics for a symbol from its
// recent price history.
type RiskReporter struct {
	data    domsvc.DataProvider
	calc    domsvc.CalculationEngine
	metrics drepo.Metrics
}

// NewRiskReporter wires the reporter.
func NewRiskReporter(data domsvc.DataProvider, calc domsvc.CalculationEngine, metrics drepo.Metrics) *RiskReporter {
	return &RiskReporter{data: data, calc: calc, metrics: metrics}
}

// Report fetches n prices, derives simple returns and computes the metrics.
// At least two prices are required to form a return series.
func (r *RiskReporter) Report(ctx context.Context, symbol string, n int) (*models.RiskReport, error) {
	start := time.Now()

	prices, err := r.data.GetPriceHistory(ctx, symbol, n)
	if err != nil {
		r.metrics.RecordError("risk_report")
		return nil, fmt.Errorf("price history for %s: %w", symbol, err)
	}
	if len(prices) < 2 {
		return nil, fmt.Errorf("risk report for %s: need at least 2 prices, have %d", symbol, len(prices))
	}

	returns := features.SimpleReturns(prices)
	m, err := r.calc.RiskMetrics(returns)
	if err != nil {
		r.metrics.RecordError("risk_report")
		return nil, fmt.Errorf("risk metrics for %s: %w", symbol, err)
	}

	r.metrics.RecordLatency("risk_report", time.Since(start).Seconds())
	return &models.RiskReport{
		Symbol:  symbol,
		Samples: len(returns),
		Metrics: m,
	}, nil
}
