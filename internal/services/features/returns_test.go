package features

import "testing"

func TestSimpleReturns(t *testing.T) {
	got := SimpleReturns([]float64{100, 110, 99})
	if len(got) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(got))
	}
	if got[0] != 0.1 {
		t.Fatalf("r0 = %v, want 0.1", got[0])
	}
	if got[1] != (99.0-110.0)/110.0 {
		t.Fatalf("r1 = %v", got[1])
	}
}

func TestSimpleReturnsShortSeries(t *testing.T) {
	if SimpleReturns([]float64{100}) != nil {
		t.Fatalf("expected nil for single point")
	}
	if SimpleReturns(nil) != nil {
		t.Fatalf("expected nil for empty series")
	}
}

func TestSimpleReturnsZeroGuard(t *testing.T) {
	got := SimpleReturns([]float64{0, 10})
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected zero return across zero price, got %v", got)
	}
}
