package pixel

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// spectralWindow is the number of recent Δt samples a SpectralHint
// considers; must be a power of two for fft.FFTReal's radix-2 path to be
// efficient, though it tolerates other sizes.
const spectralWindow = 16

// SpectralHint returns the fraction of a Δt history's total spectral
// energy carried by its upper half of frequency bins: a pixel whose
// recent inter-event timing oscillates rapidly (e.g. a flickering light
// source) scores high here, which Standard's UpdateDecimation uses to
// damp its D increase even when the unstable-bits tracker alone would
// allow one.
func SpectralHint(history []float64) float64 {
	if len(history) < 2 {
		return 0
	}
	spectrum := fft.FFTReal(history)
	n := len(spectrum)
	var total, upper float64
	for i, c := range spectrum {
		mag := cmplx.Abs(c)
		total += mag
		if i >= n/2 {
			upper += mag
		}
	}
	if total == 0 {
		return 0
	}
	return upper / total
}

// spectralHistory is a fixed-capacity ring buffer of recent Δt samples
// feeding SpectralHint.
type spectralHistory struct {
	samples []float64
}

func (h *spectralHistory) push(deltaT uint32) {
	h.samples = append(h.samples, float64(deltaT))
	if len(h.samples) > spectralWindow {
		h.samples = h.samples[len(h.samples)-spectralWindow:]
	}
}

func (h *spectralHistory) hint() float64 {
	return SpectralHint(h.samples)
}
