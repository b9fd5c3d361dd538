package compressed

import (
	"github.com/icza/bitio"

	"github.com/adder-go/adder/arith"
	"github.com/adder-go/adder/fenwick"
)

// InterBlock predicts each slot's Δt from the previous event at the same
// slot (t_memory/event_memory), coding only the D-residual
// and the Δt-prediction residual, grounded on the inter prediction model's
// forward/reconstruction pair.
type InterBlock struct {
	ShiftLossParam  uint8
	DResiduals      [BlockSizeArea]int32
	DtPredResiduals [BlockSizeArea]int64
}

// predictDeltaT reproduces the forward model's dt_pred = dt_prev <<
// min(d_resid, 7) (or >> min(-d_resid, 7)) rule, clamped to dt_prev
// whenever the shifted value would exceed delta_t_max.
func predictDeltaT(dtPrev uint32, dResidual int32, deltaTMax uint32) uint32 {
	var shifted uint64
	prev := uint64(dtPrev)
	switch {
	case dResidual > 0:
		shift := dResidual
		if shift > 7 {
			shift = 7
		}
		shifted = prev << uint(shift)
	case dResidual < 0:
		shift := -dResidual
		if shift > 7 {
			shift = 7
		}
		shifted = prev >> uint(shift)
	default:
		shifted = prev
	}
	if shifted > uint64(deltaTMax) {
		return dtPrev
	}
	return uint32(shifted)
}

// maxNarrowShift is the largest shift tried against the 256-symbol
// narrow context before giving up on it; ShiftLossParam == BitshiftFull
// is reserved to mean "narrow context abandoned, see the whole-range
// fallback" rather than an actual shift amount.
const maxNarrowShift = BitshiftFull - 1

// ForwardInterPrediction computes the residual pair for one block given
// the previous block's (D, Δt) memory at each of the 256 slots. When a
// block's worst-case residual still doesn't fit the narrow context after
// shifting by up to maxNarrowShift, it falls back to encoding every
// residual losslessly through the whole-range context instead of
// truncating it into an out-of-range narrow symbol.
func ForwardInterPrediction(events [BlockSizeArea]*EventCoordless, memory [BlockSizeArea]EventCoordless, deltaTMax uint32) *InterBlock {
	ib := &InterBlock{}
	var maxAbsResidual int64
	rawResiduals := [BlockSizeArea]int64{}

	for i, e := range events {
		if e == nil {
			ib.DResiduals[i] = DResidualNoEvent - DResidualOffset
			continue
		}
		dResid := int32(e.D) - int32(memory[i].D)
		ib.DResiduals[i] = dResid

		dtPred := predictDeltaT(memory[i].T, dResid, deltaTMax)
		residual := int64(e.T) - int64(dtPred)
		rawResiduals[i] = residual
		if abs64(residual) > maxAbsResidual {
			maxAbsResidual = abs64(residual)
		}
	}

	shift := uint8(0)
	for maxAbsResidual>>shift >= TResidualMax && shift < maxNarrowShift {
		shift++
	}
	if maxAbsResidual>>shift >= TResidualMax {
		ib.ShiftLossParam = BitshiftFull
		for i, e := range events {
			if e == nil {
				continue
			}
			ib.DtPredResiduals[i] = rawResiduals[i]
		}
		return ib
	}

	ib.ShiftLossParam = shift
	for i, e := range events {
		if e == nil {
			continue
		}
		ib.DtPredResiduals[i] = rawResiduals[i] >> shift
	}
	return ib
}

// ReconstructTValues inverts ForwardInterPrediction given the same memory
// the encoder used, returning each slot's (D, T); nil entries mark "no
// event at this slot in this block".
func (ib *InterBlock) ReconstructTValues(memory [BlockSizeArea]EventCoordless, deltaTMax uint32) [BlockSizeArea]*EventCoordless {
	var out [BlockSizeArea]*EventCoordless
	for i, dResid := range ib.DResiduals {
		if dResid == DResidualNoEvent-DResidualOffset {
			continue
		}
		d := uint8(int32(memory[i].D) + dResid)
		dtPred := predictDeltaT(memory[i].T, dResid, deltaTMax)
		var residual int64
		if ib.ShiftLossParam == BitshiftFull {
			residual = ib.DtPredResiduals[i]
		} else {
			residual = ib.DtPredResiduals[i] << ib.ShiftLossParam
		}
		t := uint32(int64(dtPred) + residual)
		out[i] = &EventCoordless{D: d, T: t}
	}
	return out
}

// Compress writes the inter block's wire representation: shift_loss_param
// (bitshift context), 256 d_residuals (d context), then 256
// dt_pred_residuals through either the narrow t context or, when
// ShiftLossParam is BitshiftFull, the lossless whole-range context.
func (ib *InterBlock) Compress(enc *arith.Encoder[uint64], model *fenwick.Model, w *bitio.Writer, ctx *Contexts, deltaTMax uint32) error {
	model.SetContext(ctx.BitshiftContext)
	if err := enc.Encode(fenwick.SymbolIndex(ib.ShiftLossParam), w); err != nil {
		return err
	}

	model.SetContext(ctx.DContext)
	for _, d := range ib.DResiduals {
		if err := enc.Encode(dResidOffset(d), w); err != nil {
			return err
		}
	}

	if ib.ShiftLossParam == BitshiftFull {
		model.SetContext(ctx.TWholeRangeContext)
		for _, dt := range ib.DtPredResiduals {
			if err := enc.Encode(dtResidOffsetWholeRange(dt, deltaTMax), w); err != nil {
				return err
			}
		}
		return nil
	}

	model.SetContext(ctx.TContext)
	for _, dt := range ib.DtPredResiduals {
		if err := enc.Encode(dtPredResidOffset(dt), w); err != nil {
			return err
		}
	}
	return nil
}

// DecompressInterBlock reads an inter block written by Compress.
func DecompressInterBlock(dec *arith.Decoder[uint64], model *fenwick.Model, r *bitio.Reader, ctx *Contexts, deltaTMax uint32) (*InterBlock, error) {
	ib := &InterBlock{}

	model.SetContext(ctx.BitshiftContext)
	s, err := dec.Decode(r)
	if err != nil {
		return nil, err
	}
	ib.ShiftLossParam = uint8(s)

	model.SetContext(ctx.DContext)
	for i := range ib.DResiduals {
		s, err := dec.Decode(r)
		if err != nil {
			return nil, err
		}
		ib.DResiduals[i] = dResidOffsetInverse(s)
	}

	if ib.ShiftLossParam == BitshiftFull {
		model.SetContext(ctx.TWholeRangeContext)
		for i := range ib.DtPredResiduals {
			s, err := dec.Decode(r)
			if err != nil {
				return nil, err
			}
			ib.DtPredResiduals[i] = dtResidOffsetWholeRangeInverse(s, deltaTMax)
		}
		return ib, nil
	}

	model.SetContext(ctx.TContext)
	for i := range ib.DtPredResiduals {
		s, err := dec.Decode(r)
		if err != nil {
			return nil, err
		}
		ib.DtPredResiduals[i] = dtPredResidOffsetInverse(s)
	}
	return ib, nil
}

// dtPredResidOffset maps a narrow Δt-prediction residual (already
// right-shifted by ShiftLossParam, so bounded by ±TResidualMax whenever
// the shift was chosen correctly) into the 256-symbol narrow context.
func dtPredResidOffset(v int64) fenwick.SymbolIndex {
	return fenwick.SymbolIndex(v + TResidualMax)
}

func dtPredResidOffsetInverse(s fenwick.SymbolIndex) int64 {
	return int64(s) - TResidualMax
}
