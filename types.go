package adder

import "github.com/pkg/errors"

// D is the decimation exponent carried by an Event. An event's integrated
// light quantity is 2^D.
type D = uint8

// Special D values reserved by the wire formats and the pixel arena.
const (
	DMax             D = 127
	DEmpty           D = 255
	DZeroIntegration D = 254
	DNoEvent         D = 253
)

// DShift is a lookup table of 1<<d for d in [0, DMax], used instead of a
// shift at every call site. Values beyond index 63 saturate at the 64-bit
// maximum since no BitStore in this package is wider than 64 bits.
var DShift = func() [DMax + 1]uint64 {
	var t [DMax + 1]uint64
	for i := range t {
		if i < 64 {
			t[i] = 1 << uint(i)
		} else {
			t[i] = ^uint64(0)
		}
	}
	return t
}()

// EOFAddr is the coordinate value that marks end-of-stream; it never
// appears as a real pixel address.
const EOFAddr = 0xFFFF

// Coord identifies a pixel, with an optional channel index for
// multi-channel planes.
type Coord struct {
	X, Y uint16
	C    *uint8
}

// IsEOF reports whether c is the reserved end-of-stream coordinate.
func (c Coord) IsEOF() bool {
	return c.X == EOFAddr && c.Y == EOFAddr
}

// Event is the core unit of the codec: a pixel coordinate, a decimation
// exponent, and a tick count interpreted per the stream's TimeMode.
type Event struct {
	Coord Coord
	D     D
	T     uint32
}

// TimeMode selects how an Event's T field is interpreted.
type TimeMode uint8

const (
	TimeModeDeltaT TimeMode = iota
	TimeModeAbsoluteT
	TimeModeMixed
)

func (m TimeMode) String() string {
	switch m {
	case TimeModeDeltaT:
		return "delta_t"
	case TimeModeAbsoluteT:
		return "absolute_t"
	case TimeModeMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// SourceCamera tags the adapter that produced the events in a stream. The
// adapters themselves are out of scope here; the tag exists only so a
// header round-trips.
type SourceCamera uint8

const (
	SourceFramedU8 SourceCamera = iota
	SourceFramedU16
	SourceFramedU32
	SourceFramedU64
	SourceFramedF32
	SourceFramedF64
	SourceDvs
	SourceDavisU8
	SourceAtis
	SourceAsint
)

// PlaneSize describes the spatial and channel extent of a video plane.
type PlaneSize struct {
	Width, Height uint16
	Channels      uint8
}

// NewPlaneSize validates and constructs a PlaneSize. width, height, and
// channels must all be positive.
func NewPlaneSize(width, height uint16, channels uint8) (PlaneSize, error) {
	if width == 0 || height == 0 || channels == 0 {
		return PlaneSize{}, errors.Wrap(ErrPlane, "width, height and channels must be positive")
	}
	return PlaneSize{Width: width, Height: height, Channels: channels}, nil
}

// Volume returns width*height*channels.
func (p PlaneSize) Volume() int {
	return int(p.Width) * int(p.Height) * int(p.Channels)
}

// CodecMetadata is the full set of parameters describing a stream, shared
// by the raw and compressed codecs.
type CodecMetadata struct {
	CodecVersion uint8
	HeaderSize   uint64
	TimeMode     TimeMode
	Plane        PlaneSize
	TicksPerSecond uint32
	RefInterval  uint32
	DeltaTMax    uint32
	EventSize    uint8
	SourceCamera SourceCamera
	ADUInterval  uint32 // valid from CodecVersion >= 3
}

// Validate checks the cross-field invariants CodecMetadata must satisfy.
func (m CodecMetadata) Validate() error {
	if m.RefInterval == 0 {
		return errors.Wrap(ErrBadFile, "ref_interval must be positive")
	}
	if m.DeltaTMax%m.RefInterval != 0 {
		return errors.Wrap(ErrBadFile, "delta_t_max must be a multiple of ref_interval")
	}
	want := uint8(9)
	if m.Plane.Channels > 1 {
		want = 11
	}
	if m.EventSize != want {
		return errors.Wrapf(ErrBadFile, "event_size %d inconsistent with channels %d", m.EventSize, m.Plane.Channels)
	}
	return nil
}
