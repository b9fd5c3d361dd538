// Package raw implements the fixed-width-record ADΔER event stream:
// header plus a sequence of fixed-size event records, byte-aligned and
// seekable.
package raw

import (
	"encoding/binary"
	"io"

	"github.com/adder-go/adder"
)

// MagicRaw and MagicCompressed distinguish the two stream families; both
// share the same header layout.
var (
	MagicRaw        = [5]byte{'a', 'd', 'd', 'e', 'r'}
	MagicCompressed = [5]byte{'a', 'd', 'd', 'e', 'c'}
)

const endiannessBig = 0x62 // 'b'

// Header fields occupying the base layout shared by every codec
// version; version-gated extensions (source camera, time mode, ADU
// interval) follow immediately after.
const baseHeaderSize = 5 + 1 + 1 + 2 + 2 + 4 + 4 + 4 + 1 + 1 // 25 bytes

// Each version-gated extension's on-wire width matches the 4-byte
// discriminant width the source format's enum serialization produces for
// SourceCamera and TimeMode, so that HeaderSize matches byte-for-byte
// across implementations rather than trimming to a 1-byte tag.
const extensionFieldSize = 4

// HeaderSize returns the serialized size, in bytes, of a header at the
// given codec version.
func HeaderSize(version uint8) uint64 {
	size := uint64(baseHeaderSize)
	if version >= 1 {
		size += extensionFieldSize // source camera
	}
	if version >= 2 {
		size += extensionFieldSize // time mode
	}
	if version >= 3 {
		size += extensionFieldSize // adu interval
	}
	return size
}

// WriteHeader serializes m to w using m.CodecVersion's extension set,
// using magic to select the raw or compressed family.
func WriteHeader(w io.Writer, magic [5]byte, m adder.CodecMetadata) error {
	buf := make([]byte, 0, HeaderSize(m.CodecVersion))
	buf = append(buf, magic[:]...)
	buf = append(buf, m.CodecVersion, endiannessBig)
	buf = be16(buf, m.Plane.Width)
	buf = be16(buf, m.Plane.Height)
	buf = be32(buf, m.TicksPerSecond)
	buf = be32(buf, m.RefInterval)
	buf = be32(buf, m.DeltaTMax)
	buf = append(buf, m.EventSize, m.Plane.Channels)
	if m.CodecVersion >= 1 {
		buf = be32(buf, uint32(m.SourceCamera))
	}
	if m.CodecVersion >= 2 {
		buf = be32(buf, uint32(m.TimeMode))
	}
	if m.CodecVersion >= 3 {
		buf = be32(buf, m.ADUInterval)
	}
	_, err := w.Write(buf)
	if err != nil {
		return adder.Wrap(adder.KindIO, err, "write header")
	}
	return nil
}

// ReadHeader deserializes a header from r, validating the magic against
// wantMagic and returning adder.ErrWrongMagic on mismatch.
func ReadHeader(r io.Reader, wantMagic [5]byte) (adder.CodecMetadata, error) {
	var m adder.CodecMetadata
	base := make([]byte, baseHeaderSize)
	if _, err := io.ReadFull(r, base); err != nil {
		return m, adder.Wrap(adder.KindDeserialize, err, "read header")
	}
	var magic [5]byte
	copy(magic[:], base[0:5])
	if magic != wantMagic {
		return m, adder.NewError(adder.KindWrongMagic, nil)
	}
	m.CodecVersion = base[5]
	if base[6] != endiannessBig {
		return m, adder.NewError(adder.KindDeserialize, nil)
	}
	m.Plane.Width = binary.BigEndian.Uint16(base[7:9])
	m.Plane.Height = binary.BigEndian.Uint16(base[9:11])
	m.TicksPerSecond = binary.BigEndian.Uint32(base[11:15])
	m.RefInterval = binary.BigEndian.Uint32(base[15:19])
	m.DeltaTMax = binary.BigEndian.Uint32(base[19:23])
	m.EventSize = base[23]
	m.Plane.Channels = base[24]

	if m.CodecVersion > 3 {
		return m, adder.NewError(adder.KindUnsupportedVersion, nil)
	}

	if m.CodecVersion >= 1 {
		var ext [4]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return m, adder.Wrap(adder.KindDeserialize, err, "read v1 extension")
		}
		m.SourceCamera = adder.SourceCamera(binary.BigEndian.Uint32(ext[:]))
	}
	if m.CodecVersion >= 2 {
		var ext [4]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return m, adder.Wrap(adder.KindDeserialize, err, "read v2 extension")
		}
		m.TimeMode = adder.TimeMode(binary.BigEndian.Uint32(ext[:]))
	}
	if m.CodecVersion >= 3 {
		var ext [4]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return m, adder.Wrap(adder.KindDeserialize, err, "read v3 extension")
		}
		m.ADUInterval = binary.BigEndian.Uint32(ext[:])
	}

	m.HeaderSize = HeaderSize(m.CodecVersion)
	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}

func be16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func be32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
