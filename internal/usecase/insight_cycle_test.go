package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"AlphaPull/internal/domain/models"
)

type fakeModel struct {
	insights []models.Insight
	err      error
	inits    int
	cleanups int
	lastSyms []string
}

func (m *fakeModel) Name() string                         { return "fake" }
func (m *fakeModel) Initialize(context.Context) error     { m.inits++; return nil }
func (m *fakeModel) Cleanup(context.Context) error        { m.cleanups++; return nil }
func (m *fakeModel) GenerateInsights(_ context.Context, symbols []string) ([]models.Insight, error) {
	m.lastSyms = symbols
	return m.insights, m.err
}

type fakePublisher struct {
	mu      sync.Mutex
	batches [][]models.Insight
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, in models.Insight) error {
	return p.PublishBatch(context.Background(), []models.Insight{in})
}

func (p *fakePublisher) PublishBatch(_ context.Context, insights []models.Insight) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, insights)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{errors: make(map[string]int)} }

func (m *fakeMetrics) RecordInsight(string, string, string) {}
func (m *fakeMetrics) RecordSkip(string, string)            {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}
func (m *fakeMetrics) RecordLastPrice(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)   {}

func TestInsightCycleRunPublishes(t *testing.T) {
	in := models.NewInsight("AAPL", models.DirectionUp, 0.7, "Composite_Alpha_Model")
	model := &fakeModel{insights: []models.Insight{in}}
	pub := &fakePublisher{}
	c := NewInsightCycle(model, []string{"AAPL", "MSFT"}, pub, newFakeMetrics(), time.Minute, time.Second)

	got, err := c.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "AAPL" {
		t.Fatalf("unexpected insights: %+v", got)
	}
	if len(model.lastSyms) != 2 {
		t.Fatalf("empty symbol list must fall back to the universe, got %v", model.lastSyms)
	}
	if len(pub.batches) != 1 || len(pub.batches[0]) != 1 {
		t.Fatalf("expected one published batch, got %+v", pub.batches)
	}
}

func TestInsightCycleExplicitSymbolsOverrideUniverse(t *testing.T) {
	model := &fakeModel{}
	c := NewInsightCycle(model, []string{"AAPL"}, nil, newFakeMetrics(), time.Minute, time.Second)

	if _, err := c.Run(context.Background(), []string{"TSLA"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(model.lastSyms) != 1 || model.lastSyms[0] != "TSLA" {
		t.Fatalf("explicit symbols must win, got %v", model.lastSyms)
	}
}

func TestInsightCycleModelFailure(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("boom")}
	metrics := newFakeMetrics()
	c := NewInsightCycle(model, []string{"AAPL"}, nil, metrics, time.Minute, time.Second)

	if _, err := c.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected model failure to surface")
	}
	if metrics.errors["cycle"] != 1 {
		t.Fatalf("expected a cycle error to be recorded")
	}
}

func TestInsightCyclePublishFailureKeepsInsights(t *testing.T) {
	in := models.NewInsight("AAPL", models.DirectionDown, 0.6, "Composite_Alpha_Model")
	model := &fakeModel{insights: []models.Insight{in}}
	pub := &fakePublisher{err: fmt.Errorf("broker down")}
	metrics := newFakeMetrics()
	c := NewInsightCycle(model, []string{"AAPL"}, pub, metrics, time.Minute, time.Second)

	got, err := c.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("publish failure must not fail the run: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("insights must still be returned, got %+v", got)
	}
	if metrics.errors["publish"] != 1 {
		t.Fatalf("expected a publish error to be recorded")
	}
}

func TestInsightCycleLifecycle(t *testing.T) {
	model := &fakeModel{}
	c := NewInsightCycle(model, []string{"AAPL"}, nil, newFakeMetrics(), time.Minute, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if model.inits != 1 || model.cleanups != 1 {
		t.Fatalf("lifecycle must reach the model: %+v", model)
	}
}
