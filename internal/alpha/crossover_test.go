package alpha

import (
	"context"
	"testing"

	"AlphaPull/internal/domain/models"
)

func newCrossoverForTest(t *testing.T, fast, slow []float64, provider *stubProvider) *CrossoverModel {
	t.Helper()
	m, err := NewCrossoverModel(10, 30, provider, &stubEngine{
		fastPeriod: 10,
		fastSMA:    fast,
		slowSMA:    slow,
	})
	if err != nil {
		t.Fatalf("NewCrossoverModel: %v", err)
	}
	return m
}

func TestCrossoverConstructionValidation(t *testing.T) {
	provider := newStubProvider(nil)
	engine := &stubEngine{}

	if _, err := NewCrossoverModel(0, 30, provider, engine); err == nil {
		t.Fatalf("expected error for zero fast period")
	}
	if _, err := NewCrossoverModel(30, 10, provider, engine); err == nil {
		t.Fatalf("expected error for fast >= slow")
	}
	if _, err := NewCrossoverModel(10, 10, provider, engine); err == nil {
		t.Fatalf("expected error for equal periods")
	}
	if _, err := NewCrossoverModel(10, 30, nil, engine); err == nil {
		t.Fatalf("expected error for nil provider")
	}
}

func TestCrossoverGoldenCross(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(40, 100)})
	m := newCrossoverForTest(t, []float64{10, 10, 12}, []float64{11, 11, 11}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	in := got[0]
	if in.Direction != models.DirectionUp {
		t.Fatalf("direction = %s, want Up", in.Direction)
	}
	if in.ConfidenceOrDefault() != crossoverConfidence {
		t.Fatalf("confidence = %v, want %v", in.ConfidenceOrDefault(), crossoverConfidence)
	}
	if in.SourceModel != CrossoverModelName {
		t.Fatalf("source = %q, want %q", in.SourceModel, CrossoverModelName)
	}
}

func TestCrossoverDeathCross(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(40, 100)})
	m := newCrossoverForTest(t, []float64{12, 12, 10}, []float64{11, 11, 11}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 1 || got[0].Direction != models.DirectionDown {
		t.Fatalf("expected one Down insight, got %+v", got)
	}
}

func TestCrossoverNoDivergence(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(40, 100)})

	cases := []struct {
		name string
		fast []float64
		slow []float64
	}{
		{"fast stays above", []float64{12, 13}, []float64{11, 11}},
		{"fast stays below", []float64{10, 9}, []float64{11, 11}},
		{"ends equal", []float64{10, 11}, []float64{11, 11}},
		{"flat equal", []float64{11, 11}, []float64{11, 11}},
	}
	for _, tc := range cases {
		m := newCrossoverForTest(t, tc.fast, tc.slow, provider)
		got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
		if err != nil {
			t.Fatalf("%s: GenerateInsights: %v", tc.name, err)
		}
		if len(got) != 0 {
			t.Fatalf("%s: expected no insight, got %+v", tc.name, got)
		}
	}
}

// Equal previous values still count as the below side of an upward cross.
func TestCrossoverEqualPreviousCounts(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(40, 100)})
	m := newCrossoverForTest(t, []float64{11, 12}, []float64{11, 11}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 1 || got[0].Direction != models.DirectionUp {
		t.Fatalf("expected Up from an equal-previous cross, got %+v", got)
	}
}

func TestCrossoverSkipsShortHistory(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(20, 100)})
	m := newCrossoverForTest(t, []float64{10, 12}, []float64{11, 11}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected skip with fewer than slow+2 points")
	}
}

func TestCrossoverSkipsShortAverages(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"AAPL": flatSeries(40, 100)})
	m := newCrossoverForTest(t, []float64{12}, []float64{11, 11}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected skip when an average has fewer than 2 points")
	}
}

func TestCrossoverIsolatesFailingSymbols(t *testing.T) {
	provider := newStubProvider(map[string][]float64{"GOOD": flatSeries(40, 100)})
	m := newCrossoverForTest(t, []float64{10, 12}, []float64{11, 11}, provider)

	got, err := m.GenerateInsights(context.Background(), []string{"BAD", "GOOD"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "GOOD" {
		t.Fatalf("expected only GOOD to survive, got %+v", got)
	}
}
