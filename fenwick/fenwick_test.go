package fenwick

import "testing"

func TestWeightsRangeFreshTable(t *testing.T) {
	w := NewWeights(3)
	if lo, hi := w.Range(EOF); lo != 0 || hi != 1 {
		t.Fatalf("Range(EOF) = [%d,%d), want [0,1)", lo, hi)
	}
	if lo, hi := w.Range(0); lo != 1 || hi != 2 {
		t.Fatalf("Range(0) = [%d,%d), want [1,2)", lo, hi)
	}
	if lo, hi := w.Range(1); lo != 2 || hi != 3 {
		t.Fatalf("Range(1) = [%d,%d), want [2,3)", lo, hi)
	}
	if lo, hi := w.Range(2); lo != 3 || hi != 4 {
		t.Fatalf("Range(2) = [%d,%d), want [3,4)", lo, hi)
	}
	if got, want := w.Total(), uint64(4); got != want {
		t.Fatalf("Total() = %d, want %d", got, want)
	}
}

func TestWeightsSymbolRoundTrip(t *testing.T) {
	w := NewWeights(5)
	for s := SymbolIndex(-1); s < 5; s++ {
		lo, hi := w.Range(s)
		for v := lo; v < hi; v++ {
			if got := w.Symbol(v); got != s {
				t.Fatalf("Symbol(%d) = %d, want %d", v, got, s)
			}
		}
	}
}

func TestWeightsUpdateShiftsRanges(t *testing.T) {
	w := NewWeights(3)
	w.Update(1, 5)
	lo, hi := w.Range(1)
	if hi-lo != 6 {
		t.Fatalf("Range(1) width = %d, want 6", hi-lo)
	}
	if got := w.Symbol(lo); got != 1 {
		t.Fatalf("Symbol(%d) = %d, want 1", lo, got)
	}
}

func TestModelContextSwitching(t *testing.T) {
	m := NewModel(2, 1000)
	ctxA := m.PushContext(4)
	ctxB := m.PushContext(2)

	m.SetContext(ctxA)
	if got := m.Denominator(); got != 5 {
		t.Fatalf("ctxA Denominator() = %d, want 5", got)
	}

	m.SetContext(ctxB)
	if got := m.Denominator(); got != 3 {
		t.Fatalf("ctxB Denominator() = %d, want 3", got)
	}

	m.Update(0)
	if got := m.Denominator(); got != 4 {
		t.Fatalf("ctxB Denominator() after update = %d, want 4", got)
	}

	m.SetContext(ctxA)
	if got := m.Denominator(); got != 5 {
		t.Fatalf("ctxA Denominator() unaffected by ctxB update = %d, want 5", got)
	}
}

func TestModelUpdateSuppressedAtSaturation(t *testing.T) {
	m := NewModel(2, 5)
	for i := 0; i < 10; i++ {
		m.Update(0)
	}
	if got := m.Denominator(); got > 5 {
		t.Fatalf("Denominator() = %d, want <= 5 (max denominator)", got)
	}
}

func TestWeightsWithCountsSeedsPriors(t *testing.T) {
	w := NewWeightsWithCounts(3, []uint64{10, 1, 1})
	lo, hi := w.Range(0)
	if hi-lo != 10 {
		t.Fatalf("Range(0) width = %d, want 10", hi-lo)
	}
}
