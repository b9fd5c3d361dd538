package compressed

import "github.com/adder-go/adder/fenwick"

// D-residual alphabet layout: span [-255, 257] offset by 255, with the
// last two symbols reserved as markers.
const (
	DResidualOffset  = 255
	DResidualNoEvent = 511 // "no event at this pixel in this block"
	DResidualSkipCube = 512 // "skip the remainder of this cube"
	dResidualSymbols = 513
)

// TResidualMax is roughly half the narrow Δt-residual alphabet (256
// symbols): an inter block's shifted residuals must stay strictly below
// it in magnitude, so a block whose largest residual reaches it is
// right-shifted further, and falls back to BitshiftFull encoding only
// when no shift up to BitshiftFull-1 brings it under.
const TResidualMax = (256 - 2) / 2

// BitshiftFull is the shift_loss_param value (written through the
// bitshift context) marking "the residuals did not fit the narrow
// context at any shift; they are coded losslessly through the
// whole-range context instead".
const BitshiftFull = 15

// Contexts holds the Fenwick-model context indices used by the
// compressed coder, named per symbol class the way the source's
// Contexts struct does: caller sets the active context immediately
// before each symbol.
type Contexts struct {
	DContext         int
	TContext         int
	TWholeRangeContext int
	U8Context        int
	EOFContext       int
	BitshiftContext  int
}

// maxDenominatorFor returns the Fenwick model max-denominator needed to
// safely host TWholeRangeContext's initial 2*deltaTMax+1 denominator
// alongside the fixed-size narrow/byte/marker contexts: arith's
// precisionFor derives the coder's precision budget from a single
// model-wide MaxDenominator, so that figure must bound every context's
// actual denominator, not just the smallest one. A context whose initial
// denominator already equals the model's MaxDenominator is saturated at
// birth (Model.Update becomes a permanent no-op on it), so this leaves
// the context doubled over its own starting weight as adaptive headroom
// rather than just barely fitting it.
func maxDenominatorFor(deltaTMax uint32) uint64 {
	initial := 2*uint64(deltaTMax) + 2
	need := initial * 2
	if need < defaultMaxDenominator {
		return defaultMaxDenominator
	}
	return need
}

// NewContexts pushes every named context onto model in a fixed order and
// returns their indices.
func NewContexts(model *fenwick.Model, deltaTMax uint32) *Contexts {
	c := &Contexts{}
	c.DContext = model.PushContextWithWeights(dResidualDefaultWeights())
	c.TContext = model.PushContextWithWeights(tResidualNarrowWeights())
	c.TWholeRangeContext = model.PushContext(int(2*deltaTMax + 1))
	c.U8Context = model.PushContext(256)
	c.EOFContext = model.PushContextWithWeights(fenwick.NewWeightsWithCounts(1, []uint64{1}))
	c.BitshiftContext = model.PushContextWithWeights(fenwick.NewWeightsWithCounts(16, ones(16)))
	return c
}

func ones(n int) []uint64 {
	v := make([]uint64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// dResidualDefaultWeights seeds the D-residual context with the tuned
// priors: high probability near zero, and boosts on the two marker
// symbols.
func dResidualDefaultWeights() *fenwick.Weights {
	counts := make([]uint64, dResidualSymbols)
	for i := range counts {
		counts[i] = 1
	}
	for idx := 235; idx <= 275; idx++ {
		counts[idx] = 10
	}
	for idx := 245; idx <= 265; idx++ {
		counts[idx] = 20
	}
	for idx := 0; idx <= 20; idx++ {
		counts[idx] = 10
	}
	for idx := 490; idx <= 510; idx++ {
		counts[idx] = 10
	}
	counts[DResidualNoEvent] = 20
	counts[DResidualSkipCube] = 10
	return fenwick.NewWeightsWithCounts(dResidualSymbols, counts)
}

// tResidualNarrowWeights seeds the narrow (u8-wide) Δt-residual context
// with a strong peak at zero and a boost on the first ten symbols.
func tResidualNarrowWeights() *fenwick.Weights {
	counts := make([]uint64, 256)
	for i := range counts {
		counts[i] = 1
	}
	for i := 0; i < 10; i++ {
		counts[i] = 10
	}
	counts[0] = 100
	return fenwick.NewWeightsWithCounts(256, counts)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
