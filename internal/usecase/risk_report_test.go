package usecase

import (
	"context"
	"fmt"
	"testing"

	"AlphaPull/internal/services/calc"
)

type fixedProvider struct {
	prices []float64
	err    error
}

func (p *fixedProvider) GetPriceHistory(context.Context, string, int) ([]float64, error) {
	return p.prices, p.err
}

func TestRiskReport(t *testing.T) {
	prices := []float64{100, 102, 101, 105, 103, 108, 107, 110}
	r := NewRiskReporter(&fixedProvider{prices: prices}, calc.NewEngine(), newFakeMetrics())

	got, err := r.Report(context.Background(), "AAPL", len(prices))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if got.Symbol != "AAPL" {
		t.Fatalf("symbol = %q", got.Symbol)
	}
	if got.Samples != len(prices)-1 {
		t.Fatalf("samples = %d, want %d", got.Samples, len(prices)-1)
	}
	if got.Metrics.Volatility <= 0 {
		t.Fatalf("volatility = %v, want > 0", got.Metrics.Volatility)
	}
}

func TestRiskReportShortHistory(t *testing.T) {
	r := NewRiskReporter(&fixedProvider{prices: []float64{100}}, calc.NewEngine(), newFakeMetrics())
	if _, err := r.Report(context.Background(), "AAPL", 30); err == nil {
		t.Fatalf("expected error for a single price point")
	}
}

func TestRiskReportProviderFailure(t *testing.T) {
	metrics := newFakeMetrics()
	r := NewRiskReporter(&fixedProvider{err: fmt.Errorf("down")}, calc.NewEngine(), metrics)
	if _, err := r.Report(context.Background(), "AAPL", 30); err == nil {
		t.Fatalf("expected provider failure to surface")
	}
	if metrics.errors["risk_report"] != 1 {
		t.Fatalf("expected a risk_report error to be recorded")
	}
}
