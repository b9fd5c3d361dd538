// Package pixel implements the per-pixel event generator ("pixel arena"):
// a small state machine that accumulates intensity samples and emits
// events once an integration threshold is crossed, plus the decimation
// controllers that adjust each pixel's sensitivity over time.
//
// The reference implementation's event_pixel_tree module was not
// available for direct grounding; this arena is built from the prose
// description of the node lookahead tree (monotonic D, oldest
// fully-integrated node drains first) and mirrors the coding idiom of
// the neighboring decimation logic in decimation.go.
package pixel

import (
	"math"

	"github.com/adder-go/adder"
)

// Mode selects how an arena converts accumulated ticks into an Event's T
// field.
type Mode uint8

const (
	// FramePerfect integration consumes exactly one ref_interval per
	// input sample; the arena pops its committed node immediately once
	// fully integrated.
	FramePerfect Mode = iota
	// Continuous integration may straddle input samples; nodes persist
	// across Integrate calls until they cross threshold.
	Continuous
)

// node is one candidate integration in the arena's lookahead sequence.
type node struct {
	d           uint8
	integration float64
	ticks       uint32
	crossed     bool
}

// threshold returns 2^d as a float, the integration target for this
// node, read from adder.DShift; for d >= 64 that table holds its
// saturated 64-bit maximum rather than 2^d.
func threshold(d uint8) float64 {
	return float64(adder.DShift[d])
}

// ceilLog2Intensity returns the smallest D such that 2^D >= v, the D a
// FramePerfect sample commits at since its whole value is "fully
// integrated" in a single call (e.g. ceilLog2Intensity(100) == 7, since
// 2^6 == 64 < 100 <= 128 == 2^7).
func ceilLog2Intensity(v float64) uint8 {
	if v <= 1 {
		return 0
	}
	d := math.Ceil(math.Log2(v))
	if d > float64(DMax) {
		d = float64(DMax)
	}
	return uint8(d)
}

// Arena is the per-pixel event-generation state machine.
type Arena struct {
	Coord     adder.Coord
	BaseVal   float64
	D         uint8
	lastAbsT  uint32
	nodes     []node
	decimator Decimator
}

// NewArena constructs an arena for coord, seeded at the given base
// intensity and decimation, driven by decimator.
func NewArena(coord adder.Coord, baseVal float64, startD uint8, decimator Decimator) *Arena {
	return &Arena{
		Coord:     coord,
		BaseVal:   baseVal,
		D:         startD,
		decimator: decimator,
		nodes:     []node{{d: startD}},
	}
}

// ContrastGate reports whether frameVal differs enough from BaseVal that
// the arena must drain before integrating the new sample, per the
// contrast-threshold gate. When it returns true the caller must call
// PopBestEvents first, then refresh BaseVal to frameVal.
func (a *Arena) ContrastGate(frameVal, cThreshPos, cThreshNeg float64) bool {
	diff := frameVal - a.BaseVal
	return diff > cThreshPos || diff < -cThreshNeg
}

// Integrate accepts the next intensity sample over delta ticks.
//
// In FramePerfect mode, frameVal is already the whole sample's
// accumulated value (one ref_interval's worth), so the node commits
// immediately at D = ceilLog2Intensity(frameVal) rather than against a
// pre-chosen threshold: a pixel holding steady at value 100 fires an
// event with D=7 every frame, since 2^6 < 100 <= 2^7. A zero sample
// integrates nothing and leaves its node open, so no event is emitted.
//
// In Continuous mode, frameVal is an intensity rate and delta the
// elapsed ticks it was sampled over; integration grows the committed
// node, opening a coarser lookahead node the first time it is more than
// halfway to its own threshold, progressively trying D+1, D+2, ... as
// the pixel keeps accumulating.
func (a *Arena) Integrate(frameVal float64, delta uint32, mode Mode, deltaTMax uint32) {
	if mode == FramePerfect {
		a.nodes = []node{{
			d:           ceilLog2Intensity(frameVal),
			integration: frameVal,
			ticks:       delta,
			crossed:     frameVal > 0,
		}}
		return
	}

	if len(a.nodes) == 0 {
		a.nodes = append(a.nodes, node{d: a.D})
	}
	contribution := frameVal * float64(delta)

	for i := range a.nodes {
		n := &a.nodes[i]
		if n.crossed {
			continue
		}
		n.integration += contribution
		n.ticks += delta
		if n.integration >= threshold(n.d) {
			n.crossed = true
		}
		if n.ticks >= deltaTMax {
			n.crossed = true
		}
	}

	last := &a.nodes[len(a.nodes)-1]
	if !last.crossed && last.integration >= threshold(last.d)/2 && last.d < DMax {
		a.nodes = append(a.nodes, node{d: last.d + 1})
	}
}

// PopBestEvents drains every fully-integrated node, appending events to
// out in non-decreasing T order (ties broken by lower D), then advances
// the decimation controller and seeds the next committed node.
func (a *Arena) PopBestEvents(out *[]adder.Event, deltaTMax uint32) {
	ready := a.nodes[:0:0]
	remaining := a.nodes[:0:0]
	for _, n := range a.nodes {
		if n.crossed {
			ready = append(ready, n)
		} else {
			remaining = append(remaining, n)
		}
	}
	for i := 0; i < len(ready); i++ {
		for j := i + 1; j < len(ready); j++ {
			if ready[j].ticks < ready[i].ticks ||
				(ready[j].ticks == ready[i].ticks && ready[j].d < ready[i].d) {
				ready[i], ready[j] = ready[j], ready[i]
			}
		}
	}
	for _, n := range ready {
		t := n.ticks
		a.lastAbsT += t
		*out = append(*out, adder.Event{Coord: a.Coord, D: n.d, T: t})
		a.decimator.UpdateDecimation(&a.D, t, deltaTMax)
	}
	if len(ready) > 0 {
		a.nodes = remaining
	}
	if len(a.nodes) == 0 {
		a.nodes = []node{{d: a.D}}
	}
}

// Drain forcibly flushes every pending node regardless of completion,
// used by the contrast gate before a large intensity jump.
func (a *Arena) Drain(out *[]adder.Event, deltaTMax uint32) {
	for i := range a.nodes {
		a.nodes[i].crossed = true
	}
	a.PopBestEvents(out, deltaTMax)
}
