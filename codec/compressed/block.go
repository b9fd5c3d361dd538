// Package compressed implements the arithmetic-coded ADΔER stream: the
// spatio-temporal block/cube/ADU structure, intra/inter residual
// prediction, and the context-switching Fenwick model that drives the
// coder, grounded on adder-codec-core's compressed::blocks and
// compressed::adu modules.
package compressed

import "github.com/adder-go/adder"

// BlockSize is the edge length, in pixels, of one intra/inter prediction
// unit.
const BlockSize = 16

// BlockSizeArea is BlockSize squared: the number of pixels in a block.
const BlockSizeArea = BlockSize * BlockSize

// EventCoordless is an event stripped of its pixel coordinate, since a
// Block already positions it implicitly by slot index.
type EventCoordless struct {
	D uint8
	T uint32 // interpreted as delta_t within the block's prediction scheme
}

// Block holds up to BlockSizeArea events in row-major slot order.
type Block struct {
	Events    [BlockSizeArea]*EventCoordless
	FillCount int
}

// NewBlock returns an empty block.
func NewBlock() *Block { return &Block{} }

// IsFilled reports whether every slot in the block holds an event.
func (b *Block) IsFilled() bool { return b.FillCount == BlockSizeArea }

// SetEvent fills slot idx with e's (D, T), returning false if the slot
// was already occupied.
func (b *Block) SetEvent(idx int, e EventCoordless) bool {
	if b.Events[idx] != nil {
		return false
	}
	ev := e
	b.Events[idx] = &ev
	b.FillCount++
	return true
}

// Cube groups one 16x16 spatial region's blocks across all three
// channels, each channel growing its own list of temporal blocks as
// events arrive; the first is always the intra-coded block.
type Cube struct {
	CubeY, CubeX int
	BlocksR      []*Block
	BlocksG      []*Block
	BlocksB      []*Block
	idxMapR      [BlockSizeArea]int
	idxMapG      [BlockSizeArea]int
	idxMapB      [BlockSizeArea]int
}

// NewCube constructs an empty cube at the given cube-grid coordinate.
func NewCube(cubeY, cubeX int) *Cube {
	return &Cube{
		CubeY:   cubeY,
		CubeX:   cubeX,
		BlocksR: []*Block{NewBlock()},
		BlocksG: []*Block{NewBlock()},
		BlocksB: []*Block{NewBlock()},
	}
}

// SetEvent routes e into the appropriate channel's block list at slot
// idx (0..BlockSizeArea), growing a new temporal block when the current
// one's slot is already filled.
func (c *Cube) SetEvent(e adder.Event, idx int) {
	channel := uint8(0)
	if e.Coord.C != nil {
		channel = *e.Coord.C
	}
	ec := EventCoordless{D: e.D, T: e.T}
	switch channel {
	case 0:
		setForChannel(&c.BlocksR, &c.idxMapR, ec, idx)
	case 1:
		setForChannel(&c.BlocksG, &c.idxMapG, ec, idx)
	case 2:
		setForChannel(&c.BlocksB, &c.idxMapB, ec, idx)
	}
}

func setForChannel(blocks *[]*Block, idxMap *[BlockSizeArea]int, e EventCoordless, idx int) {
	if idxMap[idx] >= len(*blocks) {
		*blocks = append(*blocks, NewBlock())
	}
	if (*blocks)[idxMap[idx]].SetEvent(idx, e) {
		idxMap[idx]++
	}
}

// PixelToBlockIdx maps a pixel coordinate to its (blockIdx within a
// cube's row-major 256 slots).
func PixelToBlockIdx(x, y uint16) int {
	return int(y%BlockSize)*BlockSize + int(x%BlockSize)
}

// PixelToCubeCoord maps a pixel coordinate to its (cubeY, cubeX).
func PixelToCubeCoord(x, y uint16) (cubeY, cubeX int) {
	return int(y) / BlockSize, int(x) / BlockSize
}
