// Package fenwick implements a binary-indexed-tree (Fenwick tree) backed
// probability model for the arithmetic coder: a Weights table supporting
// O(log n) cumulative-frequency update and symbol lookup, plus a
// context-switching Model that manages many such tables and lets the
// caller pick the active one symbol-by-symbol.
package fenwick

import "math/bits"

// Weights is a prefix-sum table over n symbols plus one reserved EOF
// slot at index 0.
type Weights struct {
	counts []uint64 // length n+1; index 0 is EOF.
	total  uint64
}

// NewWeights allocates a table for n symbols, each (and EOF) initialized
// to weight 1.
func NewWeights(n int) *Weights {
	w := &Weights{counts: make([]uint64, n+1)}
	for i := range w.counts {
		w.rawUpdate(i, 1)
	}
	w.total = uint64(len(w.counts))
	return w
}

// NewWeightsWithCounts builds a table for n symbols with the given
// per-symbol initial counts (len(counts) must equal n); EOF is seeded
// with weight 1.
func NewWeightsWithCounts(n int, counts []uint64) *Weights {
	w := &Weights{counts: make([]uint64, n+1)}
	for i, c := range counts {
		w.Update(SymbolIndex(i), c)
	}
	w.Update(EOF, 1)
	return w
}

// SymbolIndex identifies a symbol in a Weights table, or EOF.
type SymbolIndex int

// EOF is the reserved pseudo-symbol stored at fenwick index 0.
const EOF SymbolIndex = -1

func (w *Weights) index(s SymbolIndex) int {
	if s == EOF {
		return 0
	}
	return int(s) + 1
}

// rawUpdate performs the Fenwick array update at array index i (already
// 1-shifted relative to symbols), adding delta.
func (w *Weights) rawUpdate(i int, delta uint64) {
	for ; i < len(w.counts); i |= i + 1 {
		w.counts[i] += delta
	}
}

func (w *Weights) rawPrefixSum(i int) uint64 {
	// i is exclusive upper bound in fenwick-array convention: sum of
	// counts[0..i].
	var sum uint64
	for ; i > 0; i &= i - 1 {
		sum += w.counts[i-1]
	}
	return sum
}

// Update adds delta to the weight of symbol s (or EOF).
func (w *Weights) Update(s SymbolIndex, delta uint64) {
	w.rawUpdate(w.index(s), delta)
	w.total += delta
}

func (w *Weights) prefixSum(s SymbolIndex) uint64 {
	return w.rawPrefixSum(w.index(s) + 1)
}

// Range returns the half-open cumulative-frequency interval [lo, hi) for
// symbol s (or EOF).
func (w *Weights) Range(s SymbolIndex) (lo, hi uint64) {
	idx := w.index(s)
	hi = w.rawPrefixSum(idx + 1)
	if idx == 0 {
		lo = 0
	} else {
		lo = w.rawPrefixSum(idx)
	}
	return lo, hi
}

// Total returns the current denominator (sum of all weights).
func (w *Weights) Total() uint64 { return w.total }

// Len returns the number of non-EOF symbols.
func (w *Weights) Len() int { return len(w.counts) - 1 }

// Symbol locates the symbol (or EOF) whose range contains value, via
// binary search over prefix sums.
func (w *Weights) Symbol(value uint64) SymbolIndex {
	if value < w.rawPrefixSum(1) {
		return EOF
	}
	low, high := 0, w.Len()
	for low+1 < high {
		i := (low + high - 1) / 2
		if w.rawPrefixSum(i+2) > value {
			high = i + 1
		} else {
			low = i + 1
		}
	}
	return SymbolIndex(low)
}

// log2Ceil returns ceil(log2(n)) for n >= 1.
func log2Ceil(n uint64) uint32 {
	if n <= 1 {
		return 0
	}
	return uint32(bits.Len64(n - 1))
}

// Model is a context-switching Fenwick model: a stack of Weights tables
// with a single manually-selected active context. Automatic context
// selection based on the previously coded symbol is deliberately not
// performed; callers switch contexts explicitly between symbol classes.
type Model struct {
	contexts       []*Weights
	current        int
	maxDenominator uint64
}

// NewModel creates a model with one default context of the given symbol
// count.
func NewModel(symbols int, maxDenominator uint64) *Model {
	return &Model{
		contexts:       []*Weights{NewWeights(symbols)},
		current:        0,
		maxDenominator: maxDenominator,
	}
}

// PushContext appends a new context of the given symbol count and
// returns its index.
func (m *Model) PushContext(symbols int) int {
	m.contexts = append(m.contexts, NewWeights(symbols))
	return len(m.contexts) - 1
}

// PushContextWithWeights appends a pre-built Weights table and returns
// its index, used for contexts seeded with tuned priors.
func (m *Model) PushContextWithWeights(w *Weights) int {
	m.contexts = append(m.contexts, w)
	return len(m.contexts) - 1
}

// SetContext selects the active context by index.
func (m *Model) SetContext(ctx int) { m.current = ctx }

// Context returns the currently active context.
func (m *Model) Context() *Weights { return m.contexts[m.current] }

// MaxDenominator returns the saturation ceiling shared by every context.
func (m *Model) MaxDenominator() uint64 { return m.maxDenominator }

// Range returns the active context's probability range for s.
func (m *Model) Range(s SymbolIndex) (lo, hi uint64) { return m.Context().Range(s) }

// Denominator returns the active context's total.
func (m *Model) Denominator() uint64 { return m.Context().Total() }

// Symbol looks up a symbol in the active context.
func (m *Model) Symbol(value uint64) SymbolIndex { return m.Context().Symbol(value) }

// Update adds one to s's weight in the active context, unless the
// context has already saturated at MaxDenominator, in which case the
// update is silently suppressed rather than erroring.
func (m *Model) Update(s SymbolIndex) {
	ctx := m.Context()
	if ctx.Total() < m.maxDenominator {
		ctx.Update(s, 1)
	}
}
