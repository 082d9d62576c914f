package alpha

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"testing"

	"AlphaPull/internal/domain/models"
	domsvc "AlphaPull/internal/domain/service"
)

func newCompositeForTest(t *testing.T, subs ...domsvc.AlphaModel) *CompositeModel {
	t.Helper()
	m, err := NewCompositeModel(2, subs...)
	if err != nil {
		t.Fatalf("NewCompositeModel: %v", err)
	}
	return m
}

func TestCompositeRequiresSubModels(t *testing.T) {
	if _, err := NewCompositeModel(2); err == nil {
		t.Fatalf("expected error for empty sub-model list")
	}
}

func TestCompositeQuorumDefault(t *testing.T) {
	m, err := NewCompositeModel(0, &staticModel{name: "a"})
	if err != nil {
		t.Fatalf("NewCompositeModel: %v", err)
	}
	if m.quorum != DefaultQuorum {
		t.Fatalf("quorum = %d, want %d", m.quorum, DefaultQuorum)
	}
}

func TestCompositeBelowQuorumProducesNothing(t *testing.T) {
	m := newCompositeForTest(t,
		&staticModel{name: "a", insights: []models.Insight{mkInsight("AAPL", models.DirectionUp, 0.8, "a")}},
		&staticModel{name: "b"},
	)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("a single vote must not reach quorum, got %+v", got)
	}
}

func TestCompositeMajorityWinsWithAveragedConfidence(t *testing.T) {
	m := newCompositeForTest(t,
		&staticModel{name: "a", insights: []models.Insight{mkInsight("AAPL", models.DirectionUp, 0.8, "a")}},
		&staticModel{name: "b", insights: []models.Insight{mkInsight("AAPL", models.DirectionUp, 0.6, "b")}},
		&staticModel{name: "c", insights: []models.Insight{mkInsight("AAPL", models.DirectionDown, 0.9, "c")}},
	)

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
	// mean of the winning subset only: (0.8 + 0.6) / 2
	if math.Abs(in.ConfidenceOrDefault()-0.7) > 1e-12 {
		t.Fatalf("confidence = %v, want 0.7", in.ConfidenceOrDefault())
	}
	if in.SourceModel != CompositeModelName {
		t.Fatalf("source = %q, want %q", in.SourceModel, CompositeModelName)
	}
	if in.Magnitude != 1.0 {
		t.Fatalf("magnitude = %v, want 1.0", in.Magnitude)
	}
}

func TestCompositeTieIsDropped(t *testing.T) {
	m := newCompositeForTest(t,
		&staticModel{name: "a", insights: []models.Insight{mkInsight("AAPL", models.DirectionUp, 0.9, "a")}},
		&staticModel{name: "b", insights: []models.Insight{mkInsight("AAPL", models.DirectionDown, 0.9, "b")}},
	)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("an even vote must be dropped, got %+v", got)
	}
}

func TestCompositeMissingConfidenceDefaults(t *testing.T) {
	m := newCompositeForTest(t,
		&staticModel{name: "a", insights: []models.Insight{mkInsightNoConf("AAPL", models.DirectionUp, "a")}},
		&staticModel{name: "b", insights: []models.Insight{mkInsight("AAPL", models.DirectionUp, 0.9, "b")}},
	)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(got))
	}
	// (0.5 default + 0.9) / 2
	if math.Abs(got[0].ConfidenceOrDefault()-0.7) > 1e-12 {
		t.Fatalf("confidence = %v, want 0.7", got[0].ConfidenceOrDefault())
	}
}

func TestCompositeSubModelFailureIsolated(t *testing.T) {
	m := newCompositeForTest(t,
		&staticModel{name: "a", err: fmt.Errorf("boom")},
		&staticModel{name: "b", insights: []models.Insight{mkInsight("AAPL", models.DirectionUp, 0.8, "b")}},
		&staticModel{name: "c", insights: []models.Insight{mkInsight("AAPL", models.DirectionUp, 0.6, "c")}},
	)

	got, err := m.GenerateInsights(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("a sub-model failure must not surface: %v", err)
	}
	if len(got) != 1 || got[0].Direction != models.DirectionUp {
		t.Fatalf("surviving sub-models must still reach consensus, got %+v", got)
	}
}

func TestCompositeOutputSortedAndDeterministic(t *testing.T) {
	m := newCompositeForTest(t,
		&staticModel{name: "a", insights: []models.Insight{
			mkInsight("MSFT", models.DirectionUp, 0.8, "a"),
			mkInsight("AAPL", models.DirectionDown, 0.8, "a"),
		}},
		&staticModel{name: "b", insights: []models.Insight{
			mkInsight("AAPL", models.DirectionDown, 0.6, "b"),
			mkInsight("MSFT", models.DirectionUp, 0.6, "b"),
		}},
	)

	first, err := m.GenerateInsights(context.Background(), []string{"MSFT", "AAPL"})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(first) != 2 || first[0].Symbol != "AAPL" || first[1].Symbol != "MSFT" {
		t.Fatalf("output must be sorted by symbol, got %+v", first)
	}

	for i := 0; i < 5; i++ {
		again, err := m.GenerateInsights(context.Background(), []string{"MSFT", "AAPL"})
		if err != nil {
			t.Fatalf("GenerateInsights: %v", err)
		}
		if !reflect.DeepEqual(insightValues(first), insightValues(again)) {
			t.Fatalf("run %d diverged: %+v vs %+v", i, first, again)
		}
	}
}

func TestCompositeLifecyclePropagates(t *testing.T) {
	a := &staticModel{name: "a"}
	b := &staticModel{name: "b"}
	m := newCompositeForTest(t, a, b)

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if a.inits != 1 || b.inits != 1 || a.cleanups != 1 || b.cleanups != 1 {
		t.Fatalf("lifecycle must reach every sub-model: %+v %+v", a, b)
	}
}

// insightValues flattens insights to comparable values, dereferencing the
// confidence pointer so DeepEqual compares contents instead of addresses.
type insightValue struct {
	symbol     string
	direction  models.InsightDirection
	confidence float64
	magnitude  float64
	source     string
}

func insightValues(in []models.Insight) []insightValue {
	out := make([]insightValue, 0, len(in))
	for _, i := range in {
		out = append(out, insightValue{
			symbol:     i.Symbol,
			direction:  i.Direction,
			confidence: i.ConfidenceOrDefault(),
			magnitude:  i.Magnitude,
			source:     i.SourceModel,
		})
	}
	return out
}
