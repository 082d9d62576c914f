package alpha

import (
	"context"
	"fmt"

	"AlphaPull/internal/domain/models"
	domrepo "AlphaPull/internal/domain/repository"
	domsvc "AlphaPull/internal/domain/service"
	applogger "AlphaPull/pkg/logger"
)

// ThresholdModelName is the default provenance tag for RSI-style models.
const ThresholdModelName = "RSI_Alpha_Model"

// confidence never exceeds this, regardless of how far past a threshold
// the indicator lands.
const maxThresholdConfidence = 0.9

// extra history requested beyond the indicator period, so one fetch covers
// the warm-up window.
const thresholdHistoryPad = 36

// ThresholdModel maps the latest value of a single indicator against two
// thresholds: above overbought it calls Down, below oversold it calls Up,
// in between it stays silent. Configuration is immutable after construction.
type ThresholdModel struct {
	name       string
	period     int
	oversold   float64
	overbought float64
	data       domsvc.DataProvider
	calc       domsvc.CalculationEngine
	diag       diag
}

// NewThresholdModel validates configuration and builds the model.
// Invalid parameters fail here, loudly, as opposed to the silent per-symbol
// skip policy used during generation.
func NewThresholdModel(period int, oversold, overbought float64, data domsvc.DataProvider, calc domsvc.CalculationEngine) (*ThresholdModel, error) {
	if period <= 0 {
		return nil, fmt.Errorf("threshold model: period must be positive, got %d", period)
	}
	if oversold >= overbought {
		return nil, fmt.Errorf("threshold model: oversold (%v) must be below overbought (%v)", oversold, overbought)
	}
	if data == nil || calc == nil {
		return nil, fmt.Errorf("threshold model: data provider and calculation engine are required")
	}
	return &ThresholdModel{
		name:       ThresholdModelName,
		period:     period,
		oversold:   oversold,
		overbought: overbought,
		data:       data,
		calc:       calc,
	}, nil
}

// SetLogger injects a structured logger.
func (m *ThresholdModel) SetLogger(l *applogger.Logger) { m.diag.l = l }

// SetMetrics injects a metrics recorder.
func (m *ThresholdModel) SetMetrics(rec domrepo.Metrics) { m.diag.metrics = rec }

func (m *ThresholdModel) Name() string { return m.name }

func (m *ThresholdModel) Initialize(ctx context.Context) error {
	if m.diag.l != nil {
		m.diag.l.Info("model initialized",
			applogger.String("model", m.name),
			applogger.Int("period", m.period),
			applogger.Float64("oversold", m.oversold),
			applogger.Float64("overbought", m.overbought),
		)
	}
	return nil
}

func (m *ThresholdModel) Cleanup(ctx context.Context) error {
	if m.diag.l != nil {
		m.diag.l.Info("model cleaned up", applogger.String("model", m.name))
	}
	return nil
}

// GenerateInsights evaluates each symbol independently. A failing symbol is
// skipped and never aborts the remaining ones.
func (m *ThresholdModel) GenerateInsights(ctx context.Context, symbols []string) ([]models.Insight, error) {
	insights := make([]models.Insight, 0, len(symbols))
	for _, symbol := range symbols {
		in, reason, err := m.evaluate(ctx, symbol)
		if reason != "" {
			m.diag.skip(m.name, symbol, reason, err)
			continue
		}
		if in == nil {
			continue // indicator inside the no-signal zone
		}
		m.diag.emitted(m.name, symbol, string(in.Direction), in.ConfidenceOrDefault())
		insights = append(insights, *in)
	}
	return insights, nil
}

// evaluate returns the insight for one symbol, a skip reason, or neither
// when the indicator sits between the thresholds.
func (m *ThresholdModel) evaluate(ctx context.Context, symbol string) (*models.Insight, string, error) {
	prices, err := m.data.GetPriceHistory(ctx, symbol, m.period+thresholdHistoryPad)
	if err != nil {
		return nil, skipCollaboratorFailure, fmt.Errorf("price history: %w", err)
	}
	if len(prices) < m.period+1 {
		return nil, skipInsufficientData, nil
	}

	values, err := m.calc.RSI(prices, m.period)
	if err != nil {
		return nil, skipCollaboratorFailure, fmt.Errorf("rsi: %w", err)
	}
	if len(values) == 0 {
		return nil, skipIndicatorUnavailable, nil
	}

	v := values[len(values)-1]
	switch {
	case v > m.overbought:
		conf := (v - m.overbought) / 10.0
		if conf > maxThresholdConfidence {
			conf = maxThresholdConfidence
		}
		in := models.NewInsight(symbol, models.DirectionDown, conf, m.name)
		return &in, "", nil
	case v < m.oversold:
		conf := (m.oversold - v) / 10.0
		if conf > maxThresholdConfidence {
			conf = maxThresholdConfidence
		}
		in := models.NewInsight(symbol, models.DirectionUp, conf, m.name)
		return &in, "", nil
	default:
		return nil, "", nil
	}
}

var _ domsvc.AlphaModel = (*ThresholdModel)(nil)
