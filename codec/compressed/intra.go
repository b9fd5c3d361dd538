package compressed

import (
	"github.com/icza/bitio"

	"github.com/adder-go/adder/arith"
	"github.com/adder-go/adder/fenwick"
)

// IntraBlock is the head event of a cube's temporal sequence plus its
// 256-entry D/Δt residual pair, wholly self-decodable without reference
// to any other block.
type IntraBlock struct {
	HeadEventT     uint32
	HeadEventD     uint8
	ShiftLossParam uint8
	DResiduals     [BlockSizeArea]int32
	DtResiduals    [BlockSizeArea]int64
}

func dResidOffset(d int32) fenwick.SymbolIndex        { return fenwick.SymbolIndex(d + DResidualOffset) }
func dResidOffsetInverse(s fenwick.SymbolIndex) int32 { return int32(s) - DResidualOffset }

func dtResidOffsetWholeRange(v int64, deltaTMax uint32) fenwick.SymbolIndex {
	return fenwick.SymbolIndex(v + int64(deltaTMax))
}

func dtResidOffsetWholeRangeInverse(s fenwick.SymbolIndex, deltaTMax uint32) int64 {
	return int64(s) - int64(deltaTMax)
}

// Compress writes the intra block's wire representation per the order:
// head_event_t (4 bytes, u8-general context), head_event_d, shift_loss_param,
// 256 d_residuals, then 256 dt_residuals (whole-range context).
func (b *IntraBlock) Compress(enc *arith.Encoder[uint64], model *fenwick.Model, w *bitio.Writer, deltaTMax uint32, ctx *Contexts) error {
	model.SetContext(ctx.U8Context)
	bytes := [4]byte{byte(b.HeadEventT >> 24), byte(b.HeadEventT >> 16), byte(b.HeadEventT >> 8), byte(b.HeadEventT)}
	for _, by := range bytes {
		if err := enc.Encode(fenwick.SymbolIndex(by), w); err != nil {
			return err
		}
	}
	if err := enc.Encode(fenwick.SymbolIndex(b.HeadEventD), w); err != nil {
		return err
	}

	model.SetContext(ctx.BitshiftContext)
	if err := enc.Encode(fenwick.SymbolIndex(b.ShiftLossParam), w); err != nil {
		return err
	}

	model.SetContext(ctx.DContext)
	for _, d := range b.DResiduals {
		if err := enc.Encode(dResidOffset(d), w); err != nil {
			return err
		}
	}

	model.SetContext(ctx.TWholeRangeContext)
	for _, dt := range b.DtResiduals {
		if err := enc.Encode(dtResidOffsetWholeRange(dt, deltaTMax), w); err != nil {
			return err
		}
	}
	return nil
}

// DecompressIntraBlock reads an intra block written by Compress.
func DecompressIntraBlock(dec *arith.Decoder[uint64], model *fenwick.Model, r *bitio.Reader, deltaTMax uint32, ctx *Contexts) (*IntraBlock, error) {
	b := &IntraBlock{}

	model.SetContext(ctx.U8Context)
	var bytes [4]byte
	for i := range bytes {
		s, err := dec.Decode(r)
		if err != nil {
			return nil, err
		}
		bytes[i] = byte(s)
	}
	b.HeadEventT = uint32(bytes[0])<<24 | uint32(bytes[1])<<16 | uint32(bytes[2])<<8 | uint32(bytes[3])

	s, err := dec.Decode(r)
	if err != nil {
		return nil, err
	}
	b.HeadEventD = uint8(s)

	model.SetContext(ctx.BitshiftContext)
	s, err = dec.Decode(r)
	if err != nil {
		return nil, err
	}
	b.ShiftLossParam = uint8(s)

	model.SetContext(ctx.DContext)
	for i := range b.DResiduals {
		s, err := dec.Decode(r)
		if err != nil {
			return nil, err
		}
		b.DResiduals[i] = dResidOffsetInverse(s)
	}

	model.SetContext(ctx.TWholeRangeContext)
	for i := range b.DtResiduals {
		s, err := dec.Decode(r)
		if err != nil {
			return nil, err
		}
		b.DtResiduals[i] = dtResidOffsetWholeRangeInverse(s, deltaTMax)
	}
	return b, nil
}
