package compressed

import (
	"io"

	"github.com/icza/bitio"

	"github.com/adder-go/adder"
	"github.com/adder-go/adder/arith"
	"github.com/adder-go/adder/codec/raw"
	"github.com/adder-go/adder/fenwick"
)

// defaultMaxDenominator bounds every context's total weight before updates
// are silently suppressed; chosen to leave comfortable headroom under a
// 64-bit coder's precision budget rather than derived from any one
// context's symbol count.
const defaultMaxDenominator = 1 << 16

// Writer serializes a sequence of ADUs behind a header, arithmetic-coding
// each through a shared context-switching model.
type Writer struct {
	meta  adder.CodecMetadata
	bw    *bitio.Writer
	model *fenwick.Model
	ctx   *Contexts
	enc   *arith.Encoder[uint64]
}

// NewWriter writes meta's header to w and returns a Writer ready to
// compress ADUs.
func NewWriter(w io.Writer, meta adder.CodecMetadata) (*Writer, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if err := raw.WriteHeader(w, raw.MagicCompressed, meta); err != nil {
		return nil, err
	}
	model := fenwick.NewModel(1, maxDenominatorFor(meta.DeltaTMax))
	ctx := NewContexts(model, meta.DeltaTMax)
	bw := bitio.NewWriter(w)
	enc := arith.NewEncoder[uint64](model)
	return &Writer{meta: meta, bw: bw, model: model, ctx: ctx, enc: enc}, nil
}

// CompressADU arithmetic-codes one ADU onto the stream, preceded by a
// continue marker through EOFContext so the reader can tell an ADU
// follows rather than the stream-ending EOF symbol Flush writes.
func (wr *Writer) CompressADU(a *ADU) error {
	wr.model.SetContext(wr.ctx.EOFContext)
	if err := wr.enc.Encode(fenwick.SymbolIndex(0), wr.bw); err != nil {
		return err
	}
	return a.Compress(wr.enc, wr.model, wr.bw, wr.ctx, wr.meta.DeltaTMax)
}

// Flush encodes the stream-ending EOF symbol, flushes the arithmetic
// coder's pending bits, and byte-aligns the underlying bit writer.
func (wr *Writer) Flush() error {
	wr.model.SetContext(wr.ctx.EOFContext)
	if err := wr.enc.Encode(fenwick.EOF, wr.bw); err != nil {
		return err
	}
	if err := wr.enc.Flush(wr.bw); err != nil {
		return err
	}
	if err := wr.bw.Close(); err != nil {
		return adder.Wrap(adder.KindIO, err, "close bit writer")
	}
	return nil
}

// Reader deserializes a sequence of ADUs behind a header.
type Reader struct {
	meta  adder.CodecMetadata
	br    *bitio.Reader
	model *fenwick.Model
	ctx   *Contexts
	dec   *arith.Decoder[uint64]
}

// NewReader reads and validates the header from r, returning a Reader
// ready to decompress ADUs.
func NewReader(r io.Reader) (*Reader, error) {
	meta, err := raw.ReadHeader(r, raw.MagicCompressed)
	if err != nil {
		return nil, err
	}
	model := fenwick.NewModel(1, maxDenominatorFor(meta.DeltaTMax))
	ctx := NewContexts(model, meta.DeltaTMax)
	br := bitio.NewReader(r)
	dec := arith.NewDecoder[uint64](model)
	return &Reader{meta: meta, br: br, model: model, ctx: ctx, dec: dec}, nil
}

// Meta returns the stream's decoded metadata.
func (rd *Reader) Meta() adder.CodecMetadata { return rd.meta }

// DecompressADU reads the next ADU from the stream, returning
// adder.ErrEOF (via errors.Is) once the stream-ending EOF symbol Flush
// wrote is reached instead of another ADU.
func (rd *Reader) DecompressADU() (*ADU, error) {
	rd.model.SetContext(rd.ctx.EOFContext)
	s, err := rd.dec.Decode(rd.br)
	if err != nil {
		return nil, err
	}
	if s == fenwick.EOF {
		return nil, adder.NewError(adder.KindEOF, nil)
	}
	return DecompressADU(rd.dec, rd.model, rd.br, rd.ctx, rd.meta.DeltaTMax)
}
