package compressed

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"

	"github.com/adder-go/adder/arith"
	"github.com/adder-go/adder/fenwick"
)

func TestIntraBlockCompressDecompressRoundTrip(t *testing.T) {
	const deltaTMax = 2550

	ib := &IntraBlock{
		HeadEventT:     12345,
		HeadEventD:     42,
		ShiftLossParam: 2,
	}
	for i := range ib.DResiduals {
		ib.DResiduals[i] = int32(i%11) - 5
		ib.DtResiduals[i] = int64(i%20) - 10
	}

	encModel := fenwick.NewModel(1, maxDenominatorFor(deltaTMax))
	encCtx := NewContexts(encModel, deltaTMax)
	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	enc := arith.NewEncoder[uint64](encModel)

	if err := ib.Compress(enc, encModel, bw, deltaTMax, encCtx); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	encModel.SetContext(encCtx.EOFContext)
	if err := enc.Encode(fenwick.EOF, bw); err != nil {
		t.Fatalf("Encode EOF: %v", err)
	}
	if err := enc.Flush(bw); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	decModel := fenwick.NewModel(1, maxDenominatorFor(deltaTMax))
	decCtx := NewContexts(decModel, deltaTMax)
	br := bitio.NewReader(bytes.NewReader(buf.Bytes()))
	dec := arith.NewDecoder[uint64](decModel)

	got, err := DecompressIntraBlock(dec, decModel, br, deltaTMax, decCtx)
	if err != nil {
		t.Fatalf("DecompressIntraBlock: %v", err)
	}

	if got.HeadEventT != ib.HeadEventT {
		t.Fatalf("HeadEventT = %d, want %d", got.HeadEventT, ib.HeadEventT)
	}
	if got.HeadEventD != ib.HeadEventD {
		t.Fatalf("HeadEventD = %d, want %d", got.HeadEventD, ib.HeadEventD)
	}
	if got.ShiftLossParam != ib.ShiftLossParam {
		t.Fatalf("ShiftLossParam = %d, want %d", got.ShiftLossParam, ib.ShiftLossParam)
	}
	for i := range ib.DResiduals {
		if got.DResiduals[i] != ib.DResiduals[i] {
			t.Fatalf("DResiduals[%d] = %d, want %d", i, got.DResiduals[i], ib.DResiduals[i])
		}
		if got.DtResiduals[i] != ib.DtResiduals[i] {
			t.Fatalf("DtResiduals[%d] = %d, want %d", i, got.DtResiduals[i], ib.DtResiduals[i])
		}
	}
}
