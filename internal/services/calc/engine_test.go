package calc

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestSMAWindowConvention(t *testing.T) {
	e := NewEngine()
	prices := []float64{1, 2, 3, 4, 5}

	got, err := e.SMA(prices, 3)
	if err != nil {
		t.Fatalf("sma error: %v", err)
	}
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("sma length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Fatalf("sma[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSMAInsufficientData(t *testing.T) {
	e := NewEngine()
	got, err := e.SMA([]float64{1, 2}, 3)
	if err != nil {
		t.Fatalf("sma error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty series, got %v", got)
	}
}

func TestSMAInvalidPeriod(t *testing.T) {
	e := NewEngine()
	if _, err := e.SMA([]float64{1, 2, 3}, 0); err == nil {
		t.Fatalf("expected error for period 0")
	}
}

func TestEMASeededWithSMA(t *testing.T) {
	e := NewEngine()
	prices := []float64{10, 11, 12, 13}

	got, err := e.EMA(prices, 3)
	if err != nil {
		t.Fatalf("ema error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ema length %d, want 2", len(got))
	}
	// first value is SMA(10,11,12) = 11, next applies multiplier 0.5
	if !almostEqual(got[0], 11, 1e-12) {
		t.Fatalf("ema seed = %v, want 11", got[0])
	}
	if !almostEqual(got[1], 13*0.5+11*0.5, 1e-12) {
		t.Fatalf("ema[1] = %v, want 12", got[1])
	}
}

func TestRSIBounds(t *testing.T) {
	e := NewEngine()

	up := []float64{1, 2, 3, 4, 5, 6}
	got, err := e.RSI(up, 3)
	if err != nil {
		t.Fatalf("rsi error: %v", err)
	}
	if len(got) != len(up)-3 {
		t.Fatalf("rsi length %d, want %d", len(got), len(up)-3)
	}
	for _, v := range got {
		if v != 100.0 {
			t.Fatalf("all-gain rsi = %v, want 100", v)
		}
	}

	down := []float64{6, 5, 4, 3, 2, 1}
	got, err = e.RSI(down, 3)
	if err != nil {
		t.Fatalf("rsi error: %v", err)
	}
	for _, v := range got {
		if v != 0.0 {
			t.Fatalf("all-loss rsi = %v, want 0", v)
		}
	}
}

func TestRSIInsufficientData(t *testing.T) {
	e := NewEngine()
	got, err := e.RSI([]float64{1, 2, 3}, 3)
	if err != nil {
		t.Fatalf("rsi error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty rsi, got %v", got)
	}
}

func TestRSIMixedWindow(t *testing.T) {
	e := NewEngine()
	// changes: +1, -1, +1, -1 -> equal gains and losses -> RSI 50
	prices := []float64{10, 11, 10, 11, 10}
	got, err := e.RSI(prices, 4)
	if err != nil {
		t.Fatalf("rsi error: %v", err)
	}
	if len(got) != 1 || !almostEqual(got[0], 50, 1e-9) {
		t.Fatalf("rsi = %v, want [50]", got)
	}
}

func TestRiskMetrics(t *testing.T) {
	e := NewEngine()

	if _, err := e.RiskMetrics(nil); err == nil {
		t.Fatalf("expected error on empty returns")
	}

	returns := []float64{0.01, -0.02, 0.015, -0.005, 0.02, -0.01, 0.005, 0.01, -0.015, 0.0}
	m, err := e.RiskMetrics(returns)
	if err != nil {
		t.Fatalf("risk metrics error: %v", err)
	}
	if m.Volatility <= 0 {
		t.Fatalf("volatility = %v, want > 0", m.Volatility)
	}
	if m.VaR99 > m.VaR95 {
		t.Fatalf("var ordering broken: var95=%v var99=%v", m.VaR95, m.VaR99)
	}
	if m.MaxDrawdown < 0 || m.MaxDrawdown > 1 {
		t.Fatalf("max drawdown = %v, want in [0,1]", m.MaxDrawdown)
	}
}

func TestRiskMetricsDrawdown(t *testing.T) {
	e := NewEngine()
	// growth then a single -50% move: drawdown is exactly 0.5
	m, err := e.RiskMetrics([]float64{0.1, 0.1, -0.5})
	if err != nil {
		t.Fatalf("risk metrics error: %v", err)
	}
	if !almostEqual(m.MaxDrawdown, 0.5, 1e-12) {
		t.Fatalf("max drawdown = %v, want 0.5", m.MaxDrawdown)
	}
}
