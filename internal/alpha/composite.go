package alpha

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"AlphaPull/internal/domain/models"
	domrepo "AlphaPull/internal/domain/repository"
	domsvc "AlphaPull/internal/domain/service"
	applogger "AlphaPull/pkg/logger"
)

// CompositeModelName tags insights produced by consensus.
const CompositeModelName = "Composite_Alpha_Model"

// DefaultQuorum is the minimum number of sub-model insights a symbol needs
// before a composite decision is attempted.
const DefaultQuorum = 2

// CompositeModel merges per-symbol insights across an ordered list of
// sub-models into at most one consensus insight per symbol. It owns the
// sub-model references for the duration of aggregation and never mutates
// them.
type CompositeModel struct {
	name   string
	models []domsvc.AlphaModel
	quorum int
	diag   diag
}

// NewCompositeModel builds the composite over the given sub-models.
// A quorum below 2 falls back to DefaultQuorum.
func NewCompositeModel(quorum int, subModels ...domsvc.AlphaModel) (*CompositeModel, error) {
	if len(subModels) == 0 {
		return nil, fmt.Errorf("composite model: at least one sub-model is required")
	}
	if quorum < 2 {
		quorum = DefaultQuorum
	}
	return &CompositeModel{
		name:   CompositeModelName,
		models: subModels,
		quorum: quorum,
	}, nil
}

// SetLogger injects a structured logger.
func (m *CompositeModel) SetLogger(l *applogger.Logger) { m.diag.l = l }

// SetMetrics injects a metrics recorder.
func (m *CompositeModel) SetMetrics(rec domrepo.Metrics) { m.diag.metrics = rec }

func (m *CompositeModel) Name() string { return m.name }

func (m *CompositeModel) Initialize(ctx context.Context) error {
	for _, sub := range m.models {
		if err := sub.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize %s: %w", sub.Name(), err)
		}
	}
	if m.diag.l != nil {
		m.diag.l.Info("composite initialized",
			applogger.String("model", m.name),
			applogger.Int("sub_models", len(m.models)),
			applogger.Int("quorum", m.quorum),
		)
	}
	return nil
}

func (m *CompositeModel) Cleanup(ctx context.Context) error {
	for _, sub := range m.models {
		if err := sub.Cleanup(ctx); err != nil {
			return fmt.Errorf("cleanup %s: %w", sub.Name(), err)
		}
	}
	return nil
}

// GenerateInsights fans the symbol list out to every sub-model, waits for
// all of them (a failing sub-model never cancels its siblings), then
// reduces the grouped insights to consensus calls. The reduction is a pure
// function of the grouped multiset, so the result does not depend on
// sub-model or symbol processing order.
func (m *CompositeModel) GenerateInsights(ctx context.Context, symbols []string) ([]models.Insight, error) {
	type result struct {
		name     string
		insights []models.Insight
		err      error
	}

	ch := make(chan result, len(m.models))
	var wg sync.WaitGroup
	for _, sub := range m.models {
		wg.Add(1)
		go func(sub domsvc.AlphaModel) {
			defer wg.Done()
			ins, err := sub.GenerateInsights(ctx, symbols)
			ch <- result{name: sub.Name(), insights: ins, err: err}
		}(sub)
	}

	// full barrier: aggregation starts only after every sub-model finished
	go func() { wg.Wait(); close(ch) }()

	var collected []models.Insight
	for r := range ch {
		if r.err != nil {
			if m.diag.metrics != nil {
				m.diag.metrics.RecordError("sub_model")
			}
			if m.diag.l != nil {
				m.diag.l.Warn("sub-model failed",
					applogger.String("model", r.name),
					applogger.Error(r.err),
				)
			}
			continue
		}
		collected = append(collected, r.insights...)
	}

	return m.reduce(collected), nil
}

// reduce groups insights by symbol and applies quorum, majority and
// confidence-averaging rules. Output is sorted by symbol so repeated calls
// yield identical sequences.
func (m *CompositeModel) reduce(collected []models.Insight) []models.Insight {
	bySymbol := make(map[string][]models.Insight)
	for _, in := range collected {
		bySymbol[in.Symbol] = append(bySymbol[in.Symbol], in)
	}

	symbols := make([]string, 0, len(bySymbol))
	for s := range bySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	out := make([]models.Insight, 0, len(symbols))
	for _, symbol := range symbols {
		group := bySymbol[symbol]
		if len(group) < m.quorum {
			m.diag.skip(m.name, symbol, skipQuorumNotMet, nil)
			continue
		}

		var up, down []models.Insight
		for _, in := range group {
			switch in.Direction {
			case models.DirectionUp:
				up = append(up, in)
			case models.DirectionDown:
				down = append(down, in)
			}
		}

		switch {
		case len(up) > len(down):
			in := models.NewInsight(symbol, models.DirectionUp, averageConfidence(up), m.name)
			m.diag.emitted(m.name, symbol, string(in.Direction), in.ConfidenceOrDefault())
			out = append(out, in)
		case len(down) > len(up):
			in := models.NewInsight(symbol, models.DirectionDown, averageConfidence(down), m.name)
			m.diag.emitted(m.name, symbol, string(in.Direction), in.ConfidenceOrDefault())
			out = append(out, in)
		default:
			// an even vote is dropped, not resolved
			m.diag.skip(m.name, symbol, skipTie, nil)
		}
	}
	return out
}

func averageConfidence(group []models.Insight) float64 {
	sum := 0.0
	for _, in := range group {
		sum += in.ConfidenceOrDefault()
	}
	return sum / float64(len(group))
}

var _ domsvc.AlphaModel = (*CompositeModel)(nil)
