package alpha

import (
	"context"
	"fmt"
	"math"
	"testing"

	"AlphaPull/internal/domain/models"
	"AlphaPull/internal/services/calc"
)

func newThresholdForTest(t *testing.T, rsi []float64, provider *stubProvider) *ThresholdModel {
	t.Helper()
	m, err := NewThresholdModel(14, 30, 70, provider, &stubEngine{rsi: rsi})
	if err != nil {
		t.Fatalf("NewThresholdModel: %v", err)
	}
	return m
}

func TestThresholdConstructionValidation(t *testing.T) {
	provider := newStubProvider(nil)
	engine := &stubEngine{}

	if _, err := NewThresholdModel(0, 30, 70, provider, engine); err == nil {
		t.Fatalf("expected error for zero period")
	}
	if _, err := NewThresholdModel(14, 70, 30, provider, engine); err == nil {
		t.Fatalf("expected error for inverted thresholds")
	}
	if _, err := NewThresholdModel(14, 50, 50, provider, engine); err == nil {
		t.Fatalf("expected error for equal thresholds")
	}
	if _, err := NewThresholdModel(14, 30, 70, nil, engine); err == nil {
		t.Fatalf("expected error for nil provider")
	}
	if _, err := NewThresholdModel(14, 30, 70, provider, nil); err == nil {
		t.Fatalf("expected error for nil engine")
	}
}

func TestThresholdOverboughtCallsDown(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(50, 100)})
	m := newThresholdForTest(t, []float64{55, 85}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	in := got[0]
	if in.Direction != models.DirectionDown {
		t.Fatalf("direction = %s, want Down", in.Direction)
	}
	// (85 - 70) / 10 = 1.5, clamped to 0.9
	if in.ConfidenceOrDefault() != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", in.ConfidenceOrDefault())
	}
	if in.Magnitude != 1.0 {
		t.Fatalf("magnitude = %v, want 1.0", in.Magnitude)
	}
	if in.SourceModel != ThresholdModelName {
		t.Fatalf("source = %q, want %q", in.SourceModel, ThresholdModelName)
	}
}

func TestThresholdOversoldCallsUp(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(50, 100)})
	m := newThresholdForTest(t, []float64{40, 25}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	if got[0].Direction != models.DirectionUp {
		t.Fatalf("direction = %s, want Up", got[0].Direction)
	}
	// (30 - 25) / 10 = 0.5
	if math.Abs(got[0].ConfidenceOrDefault()-0.5) > 1e-12 {
		t.Fatalf("confidence = %v, want 0.5", got[0].ConfidenceOrDefault())
	}
}

func TestThresholdNoSignalZone(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(50, 100)})

	for _, v := range []float64{50, 70, 30} {
		m := newThresholdForTest(t, []float64{v}, provider)
		got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
		if err != nil {
			t.Fatalf("GenerateInsights: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("rsi=%v: expected no insight, got %d", v, len(got))
		}
	}
}

func TestThresholdSkipsShortHistory(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(10, 100)})
	m := newThresholdForTest(t, []float64{85}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no insight with 10 of %d required points", m.period+1)
	}
}

func TestThresholdSkipsEmptyIndicator(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(50, 100)})
	m := newThresholdForTest(t, nil, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no insight for empty indicator series")
	}
}

func TestThresholdIsolatesFailingSymbols(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"GOOD": flatSeries(50, 100)})
	m := newThresholdForTest(t, []float64{85}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"BAD", "GOOD", "ALSO_BAD"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "GOOD" {
		t.Fatalf("expected only GOOD to survive, got %+v", got)
	}
	if provider.calls["ALSO_BAD"] != 1 {
		t.Fatalf("symbols after a failure must still be evaluated")
	}
}

func TestThresholdSkipsEngineFailure(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(50, 100)})
	m, err := NewThresholdModel(14, 30, 70, provider, &stubEngine{rsiErr: fmt.Errorf("boom")})
	if err != nil {
		t.Fatalf("NewThresholdModel: %v", err)
	}

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected engine failure to skip the symbol")
	}
}

// Against the real engine: a sustained rally pushes the indicator above the
// overbought line and produces a Down call.
func TestThresholdWithRealEngine(t *testing.T) {
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100 + float64(i)*2
	}
	provider := newStubProvider(map[string][]float64{"AAPL": prices})

	m, err := NewThresholdModel(14, 30, 70, provider, calc.NewEngine())
	if err != nil {
		t.Fatalf("NewThresholdModel: %v", err)
	}
	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 1 || got[0].Direction != models.DirectionDown {
		t.Fatalf("expected one Down insight on a monotonic rally, got %+v", got)
	}
}
