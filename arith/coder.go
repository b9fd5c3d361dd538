// Package arith implements a binary range coder (arithmetic coder) with
// E1/E2/E3 renormalization, an explicit EOF symbol, and chainable state
// across models, grounded on the arithmetic-coding crate's Encoder,
// Decoder, and State types. Bit-level I/O is done with icza/bitio rather
// than a hand-rolled bit writer, the idiomatic Go analogue of the source
// crate's dependency on bitstream_io.
package arith

import (
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"

	"github.com/adder-go/adder/bitstore"
	"github.com/adder-go/adder/fenwick"
)

// Model is satisfied by fenwick.Model; the coder is written against this
// narrower interface so it depends only on the operations it actually
// uses, matching the source crate's Model trait boundary.
type Model interface {
	Range(s fenwick.SymbolIndex) (lo, hi uint64)
	Denominator() uint64
	MaxDenominator() uint64
	Symbol(value uint64) fenwick.SymbolIndex
	Update(s fenwick.SymbolIndex)
}

// State holds the low/high range-coder registers common to the encoder
// and decoder, parameterized by bit width B; the encoder keeps its
// pending-bit count separately.
type State[B bitstore.Store] struct {
	precision uint32
	low, high B
}

func newState[B bitstore.Store](precision uint32) State[B] {
	return State[B]{
		precision: precision,
		low:       0,
		high:      B(1) << precision,
	}
}

func (s *State[B]) half() B         { return B(1) << (s.precision - 1) }
func (s *State[B]) quarter() B      { return B(1) << (s.precision - 2) }
func (s *State[B]) threeQuarter() B { return s.half() + s.quarter() }

// precisionFor computes the coder precision for a model with the given
// max denominator: B's bit width minus the bit length of maxDenominator.
// No minimum is enforced; a narrow B with a large maxDenominator yields a
// precision below the frequency-count width, and no error is reported.
func precisionFor[B bitstore.Store](maxDenominator uint64) uint32 {
	frequencyBits := fenwickLog2(maxDenominator) + 1
	return uint32(bitstore.BitsOf[B]()) - frequencyBits
}

func fenwickLog2(v uint64) uint32 {
	n := uint32(0)
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

// Encoder is a binary arithmetic encoder over model M, writing bits to a
// bitio.Writer.
type Encoder[B bitstore.Store] struct {
	model   Model
	state   State[B]
	pending uint32
}

// NewEncoder builds an Encoder with precision maximized for B given the
// model's max denominator.
func NewEncoder[B bitstore.Store](model Model) *Encoder[B] {
	return NewEncoderWithPrecision[B](model, precisionFor[B](model.MaxDenominator()))
}

// NewEncoderWithPrecision builds an Encoder with an explicit precision.
func NewEncoderWithPrecision[B bitstore.Store](model Model, precision uint32) *Encoder[B] {
	return &Encoder[B]{model: model, state: newState[B](precision)}
}

// Model returns the encoder's underlying probability model.
func (e *Encoder[B]) Model() Model { return e.model }

// Encode writes one symbol (or EOF, via fenwick.EOF) to w.
func (e *Encoder[B]) Encode(symbol fenwick.SymbolIndex, w *bitio.Writer) error {
	lo, hi := e.model.Range(symbol)
	denom := e.model.Denominator()

	rng := e.state.high - e.state.low + 1
	e.state.high = e.state.low + B(uint64(rng)*hi)/B(denom) - 1
	e.state.low = e.state.low + B(uint64(rng)*lo)/B(denom)

	if err := e.normalise(w); err != nil {
		return err
	}
	e.model.Update(symbol)
	return nil
}

func (e *Encoder[B]) normalise(w *bitio.Writer) error {
	for e.state.high < e.state.half() || e.state.low >= e.state.half() {
		if e.state.high < e.state.half() {
			if err := e.emit(false, w); err != nil {
				return err
			}
			e.state.high <<= 1
			e.state.low <<= 1
		} else {
			if err := e.emit(true, w); err != nil {
				return err
			}
			e.state.low = (e.state.low - e.state.half()) << 1
			e.state.high = (e.state.high - e.state.half()) << 1
		}
	}
	for e.state.low >= e.state.quarter() && e.state.high < e.state.threeQuarter() {
		e.pending++
		e.state.low = (e.state.low - e.state.quarter()) << 1
		e.state.high = (e.state.high - e.state.quarter()) << 1
	}
	return nil
}

func (e *Encoder[B]) emit(bit bool, w *bitio.Writer) error {
	if err := w.WriteBool(bit); err != nil {
		return errors.Wrap(err, "write bit")
	}
	for i := uint32(0); i < e.pending; i++ {
		if err := w.WriteBool(!bit); err != nil {
			return errors.Wrap(err, "write pending bit")
		}
	}
	e.pending = 0
	return nil
}

// Flush emits the encoder's final pending bits; callers must call this
// after the EOF symbol has been encoded.
func (e *Encoder[B]) Flush(w *bitio.Writer) error {
	e.pending++
	if e.state.low <= e.state.quarter() {
		return e.emit(false, w)
	}
	return e.emit(true, w)
}

// EncodeAll encodes every symbol in seq, followed by EOF, then flushes.
func (e *Encoder[B]) EncodeAll(seq []fenwick.SymbolIndex, w *bitio.Writer) error {
	for _, s := range seq {
		if err := e.Encode(s, w); err != nil {
			return err
		}
	}
	if err := e.Encode(fenwick.EOF, w); err != nil {
		return err
	}
	return e.Flush(w)
}

// Decoder is the mirror of Encoder: it converts a bit stream back into
// symbols using the same model schedule the encoder used.
type Decoder[B bitstore.Store] struct {
	model         Model
	state         State[B]
	x             B
	uninitialised bool
}

// NewDecoder builds a Decoder with precision maximized for B.
func NewDecoder[B bitstore.Store](model Model) *Decoder[B] {
	return NewDecoderWithPrecision[B](model, precisionFor[B](model.MaxDenominator()))
}

// NewDecoderWithPrecision builds a Decoder with an explicit precision.
func NewDecoderWithPrecision[B bitstore.Store](model Model, precision uint32) *Decoder[B] {
	return &Decoder[B]{
		model:         model,
		state:         newState[B](precision),
		uninitialised: true,
	}
}

// Model returns the decoder's underlying probability model.
func (d *Decoder[B]) Model() Model { return d.model }

func nextBit(r *bitio.Reader) (hasBit bool, bit bool, err error) {
	b, err := r.ReadBool()
	if err != nil {
		if err == io.EOF {
			return false, false, nil
		}
		return false, false, err
	}
	return true, b, nil
}

func (d *Decoder[B]) fill(r *bitio.Reader) error {
	for i := uint32(0); i < d.state.precision; i++ {
		d.x <<= 1
		ok, bit, err := nextBit(r)
		if err != nil {
			return err
		}
		if ok && bit {
			d.x++
		}
	}
	return nil
}

func (d *Decoder[B]) initialise(r *bitio.Reader) error {
	if d.uninitialised {
		if err := d.fill(r); err != nil {
			return err
		}
		d.uninitialised = false
	}
	return nil
}

func (d *Decoder[B]) normalise(r *bitio.Reader) error {
	for d.state.high < d.state.half() || d.state.low >= d.state.half() {
		if d.state.high < d.state.half() {
			d.state.high <<= 1
			d.state.low <<= 1
			d.x <<= 1
		} else {
			d.state.low = (d.state.low - d.state.half()) << 1
			d.state.high = (d.state.high - d.state.half()) << 1
			d.x = (d.x - d.state.half()) << 1
		}
		ok, bit, err := nextBit(r)
		if err != nil {
			return err
		}
		if ok && bit {
			d.x++
		}
	}
	for d.state.low >= d.state.quarter() && d.state.high < d.state.threeQuarter() {
		d.state.low = (d.state.low - d.state.quarter()) << 1
		d.state.high = (d.state.high - d.state.quarter()) << 1
		d.x = (d.x - d.state.quarter()) << 1
		ok, bit, err := nextBit(r)
		if err != nil {
			return err
		}
		if ok && bit {
			d.x++
		}
	}
	return nil
}

func (d *Decoder[B]) value(denominator uint64) uint64 {
	rng := d.state.high - d.state.low + 1
	return (uint64(d.x-d.state.low+1)*denominator - 1) / uint64(rng)
}

// Decode reads one symbol from r, returning fenwick.EOF at stream end.
func (d *Decoder[B]) Decode(r *bitio.Reader) (fenwick.SymbolIndex, error) {
	if err := d.initialise(r); err != nil {
		return fenwick.EOF, err
	}
	denom := d.model.Denominator()
	value := d.value(denom)
	symbol := d.model.Symbol(value)

	lo, hi := d.model.Range(symbol)
	rng := d.state.high - d.state.low + 1
	d.state.high = d.state.low + B(uint64(rng)*hi)/B(denom) - 1
	d.state.low = d.state.low + B(uint64(rng)*lo)/B(denom)

	if err := d.normalise(r); err != nil {
		return fenwick.EOF, err
	}
	d.model.Update(symbol)
	return symbol, nil
}
