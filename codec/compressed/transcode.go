package compressed

import (
	"github.com/adder-go/adder"
	"github.com/adder-go/adder/pixel"
)

// NewDecimatorFunc builds a fresh Decimator for one (pixel, channel)
// arena cell.
type NewDecimatorFunc func() pixel.Decimator

// FramePerfectTranscoder feeds whole-frame intensity samples through one
// Arena per (pixel, channel) and accumulates the resulting events into a
// pending batch, grounded on the source's transcode control flow linking
// the pixel tree's event output to the compressed ADU writer. A batch
// spans as many IngestFrame/AdvanceIdle calls as the caller likes;
// FlushADU is what actually routes the accumulated events through
// BuildADU and writes the one resulting ADU.
type FramePerfectTranscoder struct {
	grid        *pixel.Grid
	refInterval uint32
	deltaTMax   uint32
	tick        uint32
	headTick    uint32
	pending     []adder.Event
	w           *Writer
}

// NewFramePerfectTranscoder builds a transcoder over plane, writing
// compressed ADUs through w.
func NewFramePerfectTranscoder(w *Writer, plane adder.PlaneSize, refInterval, deltaTMax uint32, newDecimator NewDecimatorFunc) *FramePerfectTranscoder {
	grid := pixel.NewGrid(int(plane.Width), int(plane.Height), int(plane.Channels), func(x, y, c int) *pixel.Arena {
		coord := adder.Coord{X: uint16(x), Y: uint16(y)}
		if plane.Channels > 1 {
			ch := uint8(c)
			coord.C = &ch
		}
		return pixel.NewArena(coord, 0, 0, newDecimator())
	})
	return &FramePerfectTranscoder{grid: grid, refInterval: refInterval, deltaTMax: deltaTMax, w: w}
}

// IngestFrame integrates one whole-frame sample per (pixel, channel),
// samples laid out row-major as (y*width+x)*channels+c, advances every
// arena by one ref_interval, and appends any events produced to the
// pending batch. It does not write anything; call FlushADU to emit the
// batch collected so far as a single ADU.
func (t *FramePerfectTranscoder) IngestFrame(samples []float64) {
	for i, arena := range t.grid.Arenas {
		arena.Integrate(samples[i], t.refInterval, pixel.FramePerfect, t.deltaTMax)
		arena.PopBestEvents(&t.pending, t.deltaTMax)
	}
	t.tick += t.refInterval
}

// AdvanceIdle advances every arena by ticks of elapsed time without a new
// sample, forcing an event out of any arena whose open node has now sat
// for delta_t_max or more ticks, and appends any such events to the
// pending batch.
func (t *FramePerfectTranscoder) AdvanceIdle(ticks uint32) {
	for _, arena := range t.grid.Arenas {
		arena.Integrate(0, ticks, pixel.Continuous, t.deltaTMax)
		arena.PopBestEvents(&t.pending, t.deltaTMax)
	}
	t.tick += ticks
}

// FlushADU routes the events accumulated since the last flush through
// BuildADU, headed at the tick the batch started at, and writes the
// result to the underlying Writer. It reports false without writing
// anything if no events are pending.
func (t *FramePerfectTranscoder) FlushADU() (bool, error) {
	if len(t.pending) == 0 {
		t.headTick = t.tick
		return false, nil
	}
	a := BuildADU(t.pending, t.headTick)
	t.pending = nil
	t.headTick = t.tick
	if err := t.w.CompressADU(a); err != nil {
		return false, err
	}
	return true, nil
}
