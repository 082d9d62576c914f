package alpha

import (
	"context"
	"fmt"

	"AlphaPull/internal/domain/models"
	domsvc "AlphaPull/internal/domain/service"
)

// stubProvider returns a fixed series per symbol; symbols missing from the
// map fail the call.
type stubProvider struct {
	series map[string][]float64
	calls  map[string]int
}

func newStubProvider(series map[string][]float64) *stubProvider {
	return &stubProvider{series: series, calls: make(map[string]int)}
}

func (p *stubProvider) GetPriceHistory(_ context.Context, symbol string, n int) ([]float64, error) {
	p.calls[symbol]++
	s, ok := p.series[symbol]
	if !ok {
		return nil, fmt.Errorf("no data for %s", symbol)
	}
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s, nil
}

// stubEngine returns canned indicator values regardless of input.
type stubEngine struct {
	rsi     []float64
	rsiErr  error
	fastSMA []float64
	slowSMA []float64
	smaErr  error
	// period of the next SMA call decides fast vs slow
	fastPeriod int
}

func (e *stubEngine) SMA(_ []float64, period int) ([]float64, error) {
	if e.smaErr != nil {
		return nil, e.smaErr
	}
	if period == e.fastPeriod {
		return e.fastSMA, nil
	}
	return e.slowSMA, nil
}

func (e *stubEngine) EMA(_ []float64, _ int) ([]float64, error) { return nil, nil }

func (e *stubEngine) RSI(_ []float64, _ int) ([]float64, error) {
	if e.rsiErr != nil {
		return nil, e.rsiErr
	}
	return e.rsi, nil
}

func (e *stubEngine) RiskMetrics(_ []float64) (models.RiskMetrics, error) {
	return models.RiskMetrics{}, nil
}

var _ domsvc.DataProvider = (*stubProvider)(nil)
var _ domsvc.CalculationEngine = (*stubEngine)(nil)

// staticModel feeds predetermined insights (or an error) into the composite.
type staticModel struct {
	name     string
	insights []models.Insight
	err      error
	inits    int
	cleanups int
}

func (m *staticModel) Name() string { return m.name }

func (m *staticModel) Initialize(context.Context) error { m.inits++; return nil }

func (m *staticModel) Cleanup(context.Context) error { m.cleanups++; return nil }

func (m *staticModel) GenerateInsights(context.Context, []string) ([]models.Insight, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.insights, nil
}

var _ domsvc.AlphaModel = (*staticModel)(nil)

func mkInsight(symbol string, dir models.InsightDirection, conf float64, source string) models.Insight {
	return models.NewInsight(symbol, dir, conf, source)
}

func mkInsightNoConf(symbol string, dir models.InsightDirection, source string) models.Insight {
	in := models.NewInsight(symbol, dir, 0, source)
	in.Confidence = nil
	return in
}

func flatSeries(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
