// Package frame implements the inverse transform that folds a stream of
// events back into dense frames at an arbitrary target rate, grounded on
// the source format's frame sequencer.
package frame

import (
	"github.com/adder-go/adder"
)

// ViewMode selects which quantity a reconstructed pixel sample represents.
type ViewMode uint8

const (
	// Intensity reconstructs 2^D / T as a float64, with no further scaling.
	Intensity ViewMode = iota
	// DView reconstructs D / practicalDMax as a float64, with no further scaling.
	DView
	// DeltaTView reconstructs T / deltaTMax as a float64, with no further scaling.
	DeltaTView
)

// Frame is one dense output image plus the count of pixels already
// written into it.
type Frame struct {
	Samples     []float64 // row-major, length == plane.Volume()
	FilledCount int
}

func newFrame(volume int) *Frame {
	return &Frame{Samples: make([]float64, volume)}
}

func (f *Frame) ready(volume int) bool { return f.FilledCount == volume }

type pixelState struct {
	lastEventT        uint32
	lastFilledFrameIdx int64
	runningTicks       uint32
	initialised        bool
}

// Sequencer owns per-pixel reconstruction state and a growable ring of
// in-progress frames.
type Sequencer struct {
	plane          adder.PlaneSize
	ticksPerSecond uint32
	refInterval    uint32
	deltaTMax      uint32
	outputFPS      uint32
	view           ViewMode
	practicalDMax  uint8

	pixels      []pixelState
	ring        []*Frame
	ringBase    int64 // frame index of ring[0], or of the next frame to be created if ring is empty
	nextFrame   int64 // one past the highest frame index ever created
	ringStarted bool
}

// NewSequencer builds a Sequencer targeting outputFPS frames per second
// from events with the given plane geometry and timing parameters.
func NewSequencer(plane adder.PlaneSize, ticksPerSecond, refInterval, deltaTMax, outputFPS uint32, view ViewMode) *Sequencer {
	return &Sequencer{
		plane:          plane,
		ticksPerSecond: ticksPerSecond,
		refInterval:    refInterval,
		deltaTMax:      deltaTMax,
		outputFPS:      outputFPS,
		view:           view,
		practicalDMax:  adder.DMax,
		pixels:         make([]pixelState, plane.Volume()),
	}
}

func (s *Sequencer) pixelIndex(x, y uint16, c *uint8) int {
	channel := uint8(0)
	if c != nil {
		channel = *c
	}
	return (int(y)*int(s.plane.Width)+int(x))*int(s.plane.Channels) + int(channel)
}

func (s *Sequencer) ticksPerFrame() uint32 {
	if s.outputFPS == 0 {
		return s.ticksPerSecond
	}
	return s.ticksPerSecond / s.outputFPS
}

// absoluteTick converts event's T into an absolute tick using timeMode and
// the pixel's running state. Mixed is treated identically to AbsoluteT:
// the source format never emits Mixed itself, so a mixed-mode stream's
// absolute events are already absolute and its delta events (if any) are
// the caller's responsibility to normalize before calling Ingest.
func absoluteTick(timeMode adder.TimeMode, px *pixelState, t uint32) uint32 {
	switch timeMode {
	case adder.TimeModeAbsoluteT, adder.TimeModeMixed:
		px.runningTicks = t
	default: // DeltaT
		px.runningTicks += t
	}
	return px.runningTicks
}

// Ingest folds one event into the frame ring, writing its reconstructed
// intensity forward into every frame slot the event spans.
func (s *Sequencer) Ingest(e adder.Event, timeMode adder.TimeMode) {
	idx := s.pixelIndex(e.Coord.X, e.Coord.Y, e.Coord.C)
	px := &s.pixels[idx]

	absT := absoluteTick(timeMode, px, e.T)
	frameIdx := int64(absT) / int64(s.ticksPerFrame())

	s.growRing(frameIdx)

	sample := s.reconstruct(e)

	start := px.lastFilledFrameIdx + 1
	if !px.initialised {
		start = s.ringBase
	}
	for fi := start; fi <= frameIdx; fi++ {
		slot := s.ring[fi-s.ringBase]
		slot.Samples[idx] = sample
		slot.FilledCount++
	}

	px.lastEventT = e.T
	px.lastFilledFrameIdx = frameIdx
	px.initialised = true
}

func (s *Sequencer) reconstruct(e adder.Event) float64 {
	switch s.view {
	case DView:
		return float64(e.D) / float64(s.practicalDMax)
	case DeltaTView:
		return float64(e.T) / float64(s.deltaTMax)
	default:
		if e.T == 0 {
			return 0
		}
		return float64(uint64(1)<<e.D) / float64(e.T)
	}
}

func (s *Sequencer) growRing(toFrameIdx int64) {
	if !s.ringStarted {
		s.ringBase = 0
		s.nextFrame = 0
		s.ringStarted = true
	}
	for s.nextFrame <= toFrameIdx {
		s.ring = append(s.ring, newFrame(s.plane.Volume()))
		s.nextFrame++
	}
}

// WriteMultiFrameBytes pops every contiguous ready frame from the front of
// the ring and appends it to out, returning the extended slice.
func (s *Sequencer) WriteMultiFrameBytes(out []*Frame) []*Frame {
	volume := s.plane.Volume()
	n := 0
	for n < len(s.ring) && s.ring[n].ready(volume) {
		n++
	}
	out = append(out, s.ring[:n]...)
	s.ring = s.ring[n:]
	s.ringBase += int64(n)
	return out
}
