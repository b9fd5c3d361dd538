package raw

import (
	"encoding/binary"
	"io"

	"github.com/adder-go/adder"
)

// Writer serializes events as fixed-width records immediately behind a
// header, byte-aligned throughout.
type Writer struct {
	meta adder.CodecMetadata
	w    io.Writer
}

// NewWriter writes meta's header to w and returns a Writer ready to
// ingest events.
func NewWriter(w io.Writer, meta adder.CodecMetadata) (*Writer, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if err := WriteHeader(w, MagicRaw, meta); err != nil {
		return nil, err
	}
	return &Writer{meta: meta, w: w}, nil
}

// IngestEvent writes one fixed-width event record: (x, y, d, t) for
// single-channel planes, plus a channel-present byte and a channel byte
// for multi-channel planes.
func (wr *Writer) IngestEvent(e adder.Event) error {
	buf := make([]byte, 0, wr.meta.EventSize)
	var xy [4]byte
	binary.BigEndian.PutUint16(xy[0:2], e.Coord.X)
	binary.BigEndian.PutUint16(xy[2:4], e.Coord.Y)
	buf = append(buf, xy[:]...)
	buf = append(buf, e.D)
	var t [4]byte
	binary.BigEndian.PutUint32(t[:], e.T)
	buf = append(buf, t[:]...)
	if wr.meta.Plane.Channels > 1 {
		if e.Coord.C != nil {
			buf = append(buf, 1, *e.Coord.C)
		} else {
			buf = append(buf, 0, 0)
		}
	}
	if _, err := wr.w.Write(buf); err != nil {
		return adder.Wrap(adder.KindIO, err, "write event")
	}
	return nil
}

// Flush writes the EOF sentinel record.
func (wr *Writer) Flush() error {
	return wr.IngestEvent(adder.Event{Coord: adder.Coord{X: adder.EOFAddr, Y: adder.EOFAddr}})
}

// Reader deserializes fixed-width event records behind a header read by
// ReadHeader.
type Reader struct {
	meta adder.CodecMetadata
	r    io.ReadSeeker
	pos  uint64
}

// NewReader reads and validates the header from r, returning a Reader
// positioned at the first event record.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	meta, err := ReadHeader(r, MagicRaw)
	if err != nil {
		return nil, err
	}
	return &Reader{meta: meta, r: r, pos: meta.HeaderSize}, nil
}

// Meta returns the stream's decoded metadata.
func (rd *Reader) Meta() adder.CodecMetadata { return rd.meta }

// DigestEvent reads the next fixed-width record, returning
// adder.ErrEOF (via errors.Is) when the EOF sentinel is reached.
func (rd *Reader) DigestEvent() (adder.Event, error) {
	buf := make([]byte, rd.meta.EventSize)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return adder.Event{}, adder.NewError(adder.KindEOF, err)
		}
		return adder.Event{}, adder.Wrap(adder.KindIO, err, "read event")
	}
	rd.pos += uint64(rd.meta.EventSize)

	var e adder.Event
	e.Coord.X = binary.BigEndian.Uint16(buf[0:2])
	e.Coord.Y = binary.BigEndian.Uint16(buf[2:4])
	e.D = buf[4]
	e.T = binary.BigEndian.Uint32(buf[5:9])
	if rd.meta.Plane.Channels > 1 && len(buf) >= 11 && buf[9] == 1 {
		c := buf[10]
		e.Coord.C = &c
	}

	if e.Coord.IsEOF() {
		return adder.Event{}, adder.NewError(adder.KindEOF, nil)
	}
	return e, nil
}

// Seek moves the reader to byte position pos in the body, which must be
// aligned to an event-record boundary.
func (rd *Reader) Seek(pos uint64) error {
	if (pos-rd.meta.HeaderSize)%uint64(rd.meta.EventSize) != 0 {
		return adder.NewError(adder.KindSeek, nil)
	}
	if _, err := rd.r.Seek(int64(pos), io.SeekStart); err != nil {
		return adder.NewError(adder.KindSeek, err)
	}
	rd.pos = pos
	return nil
}
