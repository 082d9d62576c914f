package alpha

import (
	"context"
	"fmt"

	"AlphaPull/internal/domain/models"
	domrepo "AlphaPull/internal/domain/repository"
	domsvc "AlphaPull/internal/domain/service"
	applogger "AlphaPull/pkg/logger"
)

// CrossoverModelName is the default provenance tag for MA-cross models.
const CrossoverModelName = "MA_Cross_Alpha_Model"

// crossoverConfidence is fixed: a cross either happened or it did not.
const crossoverConfidence = 0.7

const crossoverHistoryPad = 10

// CrossoverModel compares the last two points of a fast and a slow moving
// average. A golden cross (fast moving from at-or-below to strictly above
// the slow) calls Up; a death cross calls Down. The previous-side
// comparison is deliberately non-strict: equal previous values combined
// with divergence on the current side still count as a cross.
type CrossoverModel struct {
	name       string
	fastPeriod int
	slowPeriod int
	data       domsvc.DataProvider
	calc       domsvc.CalculationEngine
	diag       diag
}

// NewCrossoverModel validates configuration and builds the model.
func NewCrossoverModel(fastPeriod, slowPeriod int, data domsvc.DataProvider, calc domsvc.CalculationEngine) (*CrossoverModel, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 {
		return nil, fmt.Errorf("crossover model: periods must be positive, got fast=%d slow=%d", fastPeriod, slowPeriod)
	}
	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("crossover model: fast period (%d) must be below slow period (%d)", fastPeriod, slowPeriod)
	}
	if data == nil || calc == nil {
		return nil, fmt.Errorf("crossover model: data provider and calculation engine are required")
	}
	return &CrossoverModel{
		name:       CrossoverModelName,
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
		data:       data,
		calc:       calc,
	}, nil
}

// SetLogger injects a structured logger.
func (m *CrossoverModel) SetLogger(l *applogger.Logger) { m.diag.l = l }

// SetMetrics injects a metrics recorder.
func (m *CrossoverModel) SetMetrics(rec domrepo.Metrics) { m.diag.metrics = rec }

func (m *CrossoverModel) Name() string { return m.name }

func (m *CrossoverModel) Initialize(ctx context.Context) error {
	if m.diag.l != nil {
		m.diag.l.Info("model initialized",
			applogger.String("model", m.name),
			applogger.Int("fast_period", m.fastPeriod),
			applogger.Int("slow_period", m.slowPeriod),
		)
	}
	return nil
}

func (m *CrossoverModel) Cleanup(ctx context.Context) error {
	if m.diag.l != nil {
		m.diag.l.Info("model cleaned up", applogger.String("model", m.name))
	}
	return nil
}

// GenerateInsights evaluates each symbol independently with the same
// skip-and-continue isolation as the threshold model.
func (m *CrossoverModel) GenerateInsights(ctx context.Context, symbols []string) ([]models.Insight, error) {
	insights := make([]models.Insight, 0, len(symbols))
	for _, symbol := range symbols {
		in, reason, err := m.evaluate(ctx, symbol)
		if reason != "" {
			m.diag.skip(m.name, symbol, reason, err)
			continue
		}
		if in == nil {
			continue // no cross between the last two observations
		}
		m.diag.emitted(m.name, symbol, string(in.Direction), in.ConfidenceOrDefault())
		insights = append(insights, *in)
	}
	return insights, nil
}

func (m *CrossoverModel) evaluate(ctx context.Context, symbol string) (*models.Insight, string, error) {
	prices, err := m.data.GetPriceHistory(ctx, symbol, m.slowPeriod+crossoverHistoryPad)
	if err != nil {
		return nil, skipCollaboratorFailure, fmt.Errorf("price history: %w", err)
	}
	if len(prices) < m.slowPeriod+2 {
		return nil, skipInsufficientData, nil
	}

	fast, err := m.calc.SMA(prices, m.fastPeriod)
	if err != nil {
		return nil, skipCollaboratorFailure, fmt.Errorf("fast sma: %w", err)
	}
	slow, err := m.calc.SMA(prices, m.slowPeriod)
	if err != nil {
		return nil, skipCollaboratorFailure, fmt.Errorf("slow sma: %w", err)
	}
	if len(fast) < 2 || len(slow) < 2 {
		return nil, skipIndicatorUnavailable, nil
	}

	fastPrev, fastCur := fast[len(fast)-2], fast[len(fast)-1]
	slowPrev, slowCur := slow[len(slow)-2], slow[len(slow)-1]

	switch {
	case fastPrev <= slowPrev && fastCur > slowCur:
		in := models.NewInsight(symbol, models.DirectionUp, crossoverConfidence, m.name)
		return &in, "", nil
	case fastPrev >= slowPrev && fastCur < slowCur:
		in := models.NewInsight(symbol, models.DirectionDown, crossoverConfidence, m.name)
		return &in, "", nil
	default:
		return nil, "", nil
	}
}

var _ domsvc.AlphaModel = (*CrossoverModel)(nil)
