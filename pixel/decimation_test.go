package pixel

import "testing"

func TestStandardUpdateDecimationRaisesDOnStablePrediction(t *testing.T) {
	s := NewStandard()
	d := uint8(0)
	const deltaTMax = 100000

	// Feed a steady, predictable Δt repeatedly; D ends above where it
	// started and never exceeds DMax.
	for i := 0; i < 20; i++ {
		s.UpdateDecimation(&d, 1000, deltaTMax)
	}
	if d == 0 {
		t.Fatal("d = 0 after a steady Δt, want D raised above its start")
	}
	if d > DMax {
		t.Fatalf("d = %d, want <= DMax (%d)", d, DMax)
	}
}

func TestStandardThrottleDecimationResetsUnstableBits(t *testing.T) {
	s := NewStandard()
	d := uint8(10)
	s.ThrottleDecimation(&d, 100000)
	if s.unstableBits != 32 {
		t.Fatalf("unstableBits after Throttle = %d, want 32", s.unstableBits)
	}
}

func TestStandardLookaheadDClampsOutput(t *testing.T) {
	s := NewStandard()
	s.SetLookaheadD(3)
	d := uint8(0)
	s.UpdateDecimation(&d, 500, 100000)
	if d != 3 {
		t.Fatalf("d = %d, want 3 (lookaheadD override)", d)
	}
}

func TestSpectralHintDetectsOscillation(t *testing.T) {
	constant := make([]float64, spectralWindow)
	for i := range constant {
		constant[i] = 1000
	}
	oscillating := make([]float64, spectralWindow)
	for i := range oscillating {
		if i%2 == 0 {
			oscillating[i] = 10
		} else {
			oscillating[i] = 1000
		}
	}

	if got := SpectralHint(constant); got > 0.1 {
		t.Fatalf("SpectralHint(constant) = %f, want close to 0", got)
	}
	if got := SpectralHint(oscillating); got < 0.3 {
		t.Fatalf("SpectralHint(oscillating) = %f, want a significant high-frequency fraction", got)
	}
}

func TestStandardEnableSpectralHintDoesNotPanic(t *testing.T) {
	s := NewStandard()
	s.EnableSpectralHint()
	d := uint8(0)
	oscillating := []uint32{10, 1000, 10, 1000, 10, 1000, 10, 1000}
	for _, dt := range oscillating {
		s.UpdateDecimation(&d, dt, 100000)
	}
	if d > DMax {
		t.Fatalf("d = %d, want <= DMax", d)
	}
}

func TestAggressiveUpdateDecimationROI(t *testing.T) {
	a := NewAggressive(100)
	d := uint8(0)
	a.UpdateDecimation(&d, 40, 10000)
	if d == 0 {
		t.Fatal("expected D to increase when observed Δt is well under refTime")
	}
}

func TestAggressiveROIFactorDecay(t *testing.T) {
	a := NewAggressive(100)
	a.UpdateROIFactor(5)
	if a.roiFactor != 5 {
		t.Fatalf("roiFactor = %d, want 5", a.roiFactor)
	}
	a.UpdateROIFactor(0)
	if a.roiFactor != 4 {
		t.Fatalf("roiFactor after decay = %d, want 4", a.roiFactor)
	}
}

func TestManualIsNoOp(t *testing.T) {
	m := NewManual()
	d := uint8(5)
	m.UpdateDecimation(&d, 1234, 5678)
	m.ThrottleDecimation(&d, 5678)
	m.SetLookaheadD(9)
	m.UpdateROIFactor(3)
	if d != 5 {
		t.Fatalf("d = %d, want unchanged 5", d)
	}
}

func TestSpectralHintEmptyHistory(t *testing.T) {
	if got := SpectralHint(nil); got != 0 {
		t.Fatalf("SpectralHint(nil) = %f, want 0", got)
	}
	if got := SpectralHint([]float64{5}); got != 0 {
		t.Fatalf("SpectralHint(single) = %f, want 0", got)
	}
}
