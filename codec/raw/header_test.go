package raw

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adder-go/adder"
)

func TestHeaderSizeScenarioA(t *testing.T) {
	// Scenario A: a version-2 header (source camera + time mode
	// extensions) must be exactly 33 bytes.
	if got, want := HeaderSize(2), uint64(33); got != want {
		t.Fatalf("HeaderSize(2) = %d, want %d", got, want)
	}
	if got, want := HeaderSize(0), uint64(25); got != want {
		t.Fatalf("HeaderSize(0) = %d, want %d", got, want)
	}
	if got, want := HeaderSize(3), uint64(37); got != want {
		t.Fatalf("HeaderSize(3) = %d, want %d", got, want)
	}
}

func TestWriteReadHeaderRoundTrip(t *testing.T) {
	meta := adder.CodecMetadata{
		CodecVersion:   2,
		TimeMode:       adder.TimeModeDeltaT,
		Plane:          adder.PlaneSize{Width: 346, Height: 260, Channels: 1},
		TicksPerSecond: 120000,
		RefInterval:    1000,
		DeltaTMax:      255000,
		EventSize:      9,
		SourceCamera:   adder.SourceFramedU8,
	}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, MagicRaw, meta); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if got, want := buf.Len(), 33; got != want {
		t.Fatalf("serialized header length = %d, want %d", got, want)
	}

	got, err := ReadHeader(bytes.NewReader(buf.Bytes()), MagicRaw)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	meta.HeaderSize = HeaderSize(meta.CodecVersion) // not set on the input struct
	if diff := cmp.Diff(meta, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadHeaderWrongMagic(t *testing.T) {
	meta := adder.CodecMetadata{
		CodecVersion: 0,
		Plane:        adder.PlaneSize{Width: 1, Height: 1, Channels: 1},
		RefInterval:  1,
		DeltaTMax:    1,
		EventSize:    9,
	}
	var buf bytes.Buffer
	if err := WriteHeader(&buf, MagicRaw, meta); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	_, err := ReadHeader(bytes.NewReader(buf.Bytes()), MagicCompressed)
	if !stderrors.Is(err, adder.ErrWrongMagic) {
		t.Fatalf("ReadHeader with wrong magic err = %v, want KindWrongMagic", err)
	}
}

func TestReadHeaderUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(MagicRaw[:])
	buf.WriteByte(4) // version 4: beyond the newest supported (3)
	buf.WriteByte('b')
	buf.Write(make([]byte, baseHeaderSize-7))

	_, err := ReadHeader(&buf, MagicRaw)
	if !stderrors.Is(err, adder.ErrUnsupportedVersion) {
		t.Fatalf("ReadHeader with version 4 err = %v, want KindUnsupportedVersion", err)
	}
}
