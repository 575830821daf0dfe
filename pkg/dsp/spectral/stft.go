// Package spectral provides a reusable short-time Fourier transform
// engine shared by every frame-based spectral processor: a Hann-windowed
// analysis frame, a caller-supplied per-bin callback, and overlap-add
// resynthesis. tilt, vocoder, and bark-band filtering all repeat the
// same FFT_SIZE/HOP_SIZE/Hann/overlap-add structure, so it lives here
// once as a shared building block, using gonum.org/v1/gonum/dsp/fourier
// for the transform itself.
package spectral

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// STFT runs one real-valued analysis/resynthesis stream at a fixed FFT
// size and 50% hop, the configuration every spectral module here uses
// (FFT_SIZE=2048, HOP_SIZE=FFT_SIZE/2).
type STFT struct {
	size int
	hop  int

	window []float64
	fft    *fourier.FFT

	analysisBuf []float64
	hopBuf      []float64
	hopFill     int

	timeBuf []float64
	freqBuf []complex128

	outBuf []float64

	sampleRate float64

	// ProcessBins is called once per completed analysis hop with the
	// frame's non-redundant FFT coefficients (length size/2+1, index i
	// corresponding to i/size*sampleRate Hz); it may modify them in
	// place before the inverse transform runs.
	ProcessBins func(bins []complex128, sampleRate float64)
}

// New creates an STFT engine of the given FFT size (must be even).
func New(size int, sampleRate float64) *STFT {
	hop := size / 2
	s := &STFT{
		size:        size,
		hop:         hop,
		window:      make([]float64, size),
		fft:         fourier.NewFFT(size),
		analysisBuf: make([]float64, size),
		hopBuf:      make([]float64, hop),
		timeBuf:     make([]float64, size),
		freqBuf:     make([]complex128, size/2+1),
		outBuf:      make([]float64, size),
		sampleRate:  sampleRate,
	}
	for i := range s.window {
		s.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return s
}

// Process consumes frames input samples and produces frames output
// samples: shift input by one sample, run an analysis/resynthesis hop
// every s.hop input samples, and drain the overlap-add accumulator into
// frames of output on every call.
func (s *STFT) Process(in []float32, out []float32, frames int) {
	for i := 0; i < frames; i++ {
		s.hopBuf[s.hopFill] = float64(in[i])
		s.hopFill++
		if s.hopFill >= s.hop {
			s.hopFill = 0
			s.runFrame()
		}
	}

	n := frames
	if n > s.size {
		n = s.size
	}
	for i := 0; i < n; i++ {
		out[i] = float32(s.outBuf[i])
	}
	for i := n; i < frames; i++ {
		out[i] = 0
	}
	copy(s.outBuf, s.outBuf[n:])
	for i := s.size - n; i < s.size; i++ {
		s.outBuf[i] = 0
	}
}

func (s *STFT) runFrame() {
	copy(s.analysisBuf, s.analysisBuf[s.hop:])
	copy(s.analysisBuf[s.size-s.hop:], s.hopBuf)

	for i, v := range s.analysisBuf {
		s.timeBuf[i] = v * s.window[i]
	}

	s.freqBuf = s.fft.Coefficients(s.freqBuf, s.timeBuf)
	if s.ProcessBins != nil {
		s.ProcessBins(s.freqBuf, s.sampleRate)
	}
	s.timeBuf = s.fft.Sequence(s.timeBuf, s.freqBuf)

	var dc float64
	for _, v := range s.timeBuf {
		dc += v
	}
	dc /= float64(s.size)

	// gonum's Sequence does not normalize: a Coefficients/Sequence round
	// trip scales the frame by size, so that factor is divided out here.
	// olaGain then scales each overlap-added frame by 0.5 (50%-hop Hann
	// analysis with no separate synthesis window).
	const olaGain = 0.5
	norm := olaGain / float64(s.size)
	for i, v := range s.timeBuf {
		s.outBuf[i] += (v - dc) * norm
	}
}

// Bins returns the bin count (size/2+1) for callers sizing their own
// per-bin state (e.g. a filter bank's gain table).
func (s *STFT) Bins() int { return s.size/2 + 1 }

// Size returns the configured FFT size.
func (s *STFT) Size() int { return s.size }
