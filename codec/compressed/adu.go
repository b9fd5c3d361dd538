package compressed

import (
	"github.com/icza/bitio"

	"github.com/adder-go/adder/arith"
	"github.com/adder-go/adder/fenwick"
)

// ADU (asynchronous decodable unit) is one head tick's worth of cubes.
// ADUs are coded one after another on a single arithmetic-coder state,
// and the compressed Reader decodes them in order; it has no seek.
type ADU struct {
	HeadTick uint32
	Cubes    []*Cube
}

func writeU16(enc *arith.Encoder[uint64], model *fenwick.Model, w *bitio.Writer, ctx *Contexts, v uint16) error {
	model.SetContext(ctx.U8Context)
	if err := enc.Encode(fenwick.SymbolIndex(v>>8), w); err != nil {
		return err
	}
	return enc.Encode(fenwick.SymbolIndex(v&0xFF), w)
}

func readU16(dec *arith.Decoder[uint64], model *fenwick.Model, r *bitio.Reader, ctx *Contexts) (uint16, error) {
	model.SetContext(ctx.U8Context)
	hi, err := dec.Decode(r)
	if err != nil {
		return 0, err
	}
	lo, err := dec.Decode(r)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func writeU32(enc *arith.Encoder[uint64], model *fenwick.Model, w *bitio.Writer, ctx *Contexts, v uint32) error {
	model.SetContext(ctx.U8Context)
	for shift := 24; shift >= 0; shift -= 8 {
		if err := enc.Encode(fenwick.SymbolIndex(byte(v>>uint(shift))), w); err != nil {
			return err
		}
	}
	return nil
}

func readU32(dec *arith.Decoder[uint64], model *fenwick.Model, r *bitio.Reader, ctx *Contexts) (uint32, error) {
	model.SetContext(ctx.U8Context)
	var v uint32
	for i := 0; i < 4; i++ {
		s, err := dec.Decode(r)
		if err != nil {
			return 0, err
		}
		v = v<<8 | uint32(byte(s))
	}
	return v, nil
}

// compressChannelBlocks writes one channel's block list as: present flag
// (1 byte), and when present, the intra block followed by num_inter_blocks
// (2 bytes) and that many inter blocks.
func compressChannelBlocks(enc *arith.Encoder[uint64], model *fenwick.Model, w *bitio.Writer, ctx *Contexts, deltaTMax uint32, blocks []*Block, memory [BlockSizeArea]EventCoordless) error {
	model.SetContext(ctx.U8Context)
	if len(blocks) == 0 {
		return enc.Encode(fenwick.SymbolIndex(0), w)
	}
	if err := enc.Encode(fenwick.SymbolIndex(1), w); err != nil {
		return err
	}

	intra := blockToIntra(blocks[0], deltaTMax)
	if err := intra.Compress(enc, model, w, deltaTMax, ctx); err != nil {
		return err
	}

	numInter := uint16(len(blocks) - 1)
	if err := writeU16(enc, model, w, ctx, numInter); err != nil {
		return err
	}

	mem := memoryFromIntra(intra)
	for _, b := range blocks[1:] {
		ib := ForwardInterPrediction(b.Events, mem, deltaTMax)
		if err := ib.Compress(enc, model, w, ctx, deltaTMax); err != nil {
			return err
		}
		mem = memoryFromInter(ib, mem, deltaTMax)
	}
	return nil
}

func decompressChannelBlocks(dec *arith.Decoder[uint64], model *fenwick.Model, r *bitio.Reader, ctx *Contexts, deltaTMax uint32) ([]*Block, error) {
	model.SetContext(ctx.U8Context)
	flag, err := dec.Decode(r)
	if err != nil {
		return nil, err
	}
	if flag == 0 {
		return nil, nil
	}

	intra, err := DecompressIntraBlock(dec, model, r, deltaTMax, ctx)
	if err != nil {
		return nil, err
	}
	blocks := []*Block{intraToBlock(intra)}

	numInter, err := readU16(dec, model, r, ctx)
	if err != nil {
		return nil, err
	}

	mem := memoryFromIntra(intra)
	for i := uint16(0); i < numInter; i++ {
		ib, err := DecompressInterBlock(dec, model, r, ctx, deltaTMax)
		if err != nil {
			return nil, err
		}
		slots := ib.ReconstructTValues(mem, deltaTMax)
		b := &Block{}
		for idx, e := range slots {
			if e != nil {
				b.SetEvent(idx, *e)
			}
		}
		blocks = append(blocks, b)
		mem = memoryFromInter(ib, mem, deltaTMax)
	}
	return blocks, nil
}

// blockToIntra lifts a block's first-seen event at each slot into an
// IntraBlock, using the lowest-index filled slot's event as the head.
func blockToIntra(b *Block, deltaTMax uint32) *IntraBlock {
	ib := &IntraBlock{}
	var head *EventCoordless
	for _, e := range b.Events {
		if e != nil {
			head = e
			break
		}
	}
	if head != nil {
		ib.HeadEventT = head.T
		ib.HeadEventD = head.D
	}
	for i, e := range b.Events {
		if e == nil {
			ib.DResiduals[i] = DResidualNoEvent - DResidualOffset
			continue
		}
		ib.DResiduals[i] = int32(e.D) - int32(ib.HeadEventD)
		ib.DtResiduals[i] = int64(e.T) - int64(ib.HeadEventT)
	}
	return ib
}

func intraToBlock(ib *IntraBlock) *Block {
	b := &Block{}
	for i, dResid := range ib.DResiduals {
		if dResid == DResidualNoEvent-DResidualOffset {
			continue
		}
		d := uint8(int32(ib.HeadEventD) + dResid)
		t := uint32(int64(ib.HeadEventT) + ib.DtResiduals[i])
		b.SetEvent(i, EventCoordless{D: d, T: t})
	}
	return b
}

func memoryFromIntra(ib *IntraBlock) [BlockSizeArea]EventCoordless {
	var mem [BlockSizeArea]EventCoordless
	for i, e := range intraToBlock(ib).Events {
		if e != nil {
			mem[i] = *e
		}
	}
	return mem
}

func memoryFromInter(ib *InterBlock, prev [BlockSizeArea]EventCoordless, deltaTMax uint32) [BlockSizeArea]EventCoordless {
	var mem [BlockSizeArea]EventCoordless
	slots := ib.ReconstructTValues(prev, deltaTMax)
	for i := range mem {
		if slots[i] != nil {
			mem[i] = *slots[i]
		} else {
			mem[i] = prev[i]
		}
	}
	return mem
}

// Compress writes the ADU's wire representation: head_tick, num_cubes,
// then each cube's (cube_y, cube_x) followed by its three channels' block
// lists in R, G, B order.
func (a *ADU) Compress(enc *arith.Encoder[uint64], model *fenwick.Model, w *bitio.Writer, ctx *Contexts, deltaTMax uint32) error {
	if err := writeU32(enc, model, w, ctx, a.HeadTick); err != nil {
		return err
	}
	if err := writeU16(enc, model, w, ctx, uint16(len(a.Cubes))); err != nil {
		return err
	}
	for _, c := range a.Cubes {
		if err := writeU16(enc, model, w, ctx, uint16(c.CubeY)); err != nil {
			return err
		}
		if err := writeU16(enc, model, w, ctx, uint16(c.CubeX)); err != nil {
			return err
		}
		var zeroMem [BlockSizeArea]EventCoordless
		if err := compressChannelBlocks(enc, model, w, ctx, deltaTMax, c.BlocksR, zeroMem); err != nil {
			return err
		}
		if err := compressChannelBlocks(enc, model, w, ctx, deltaTMax, c.BlocksG, zeroMem); err != nil {
			return err
		}
		if err := compressChannelBlocks(enc, model, w, ctx, deltaTMax, c.BlocksB, zeroMem); err != nil {
			return err
		}
	}
	return nil
}

// DecompressADU reads an ADU written by Compress.
func DecompressADU(dec *arith.Decoder[uint64], model *fenwick.Model, r *bitio.Reader, ctx *Contexts, deltaTMax uint32) (*ADU, error) {
	a := &ADU{}
	headTick, err := readU32(dec, model, r, ctx)
	if err != nil {
		return nil, err
	}
	a.HeadTick = headTick

	numCubes, err := readU16(dec, model, r, ctx)
	if err != nil {
		return nil, err
	}

	for i := uint16(0); i < numCubes; i++ {
		cubeY, err := readU16(dec, model, r, ctx)
		if err != nil {
			return nil, err
		}
		cubeX, err := readU16(dec, model, r, ctx)
		if err != nil {
			return nil, err
		}
		c := NewCube(int(cubeY), int(cubeX))

		blocksR, err := decompressChannelBlocks(dec, model, r, ctx, deltaTMax)
		if err != nil {
			return nil, err
		}
		if blocksR != nil {
			c.BlocksR = blocksR
		}
		blocksG, err := decompressChannelBlocks(dec, model, r, ctx, deltaTMax)
		if err != nil {
			return nil, err
		}
		if blocksG != nil {
			c.BlocksG = blocksG
		}
		blocksB, err := decompressChannelBlocks(dec, model, r, ctx, deltaTMax)
		if err != nil {
			return nil, err
		}
		if blocksB != nil {
			c.BlocksB = blocksB
		}
		a.Cubes = append(a.Cubes, c)
	}
	return a, nil
}
