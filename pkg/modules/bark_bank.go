package modules

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/spectral"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

const barkBankFFTSize = 2048

// BarkBank implements bark_bank: a 24-band bark-scale shelving EQ shaped
// by a gaussian center/width window plus a tilt slope, the bin-domain
// equivalent of a bark_centers-tuned biquad bank. Built on the shared
// pkg/dsp/spectral.STFT engine the same way spec_tilt is.
type BarkBank struct {
	*module.Base

	stft      *spectral.STFT
	binToBand []int

	center, width, tilt, drive, mix float64
}

func newBarkBank(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "bark_bank", sampleRate, 0.9, true, false, module.MaxBlockSize)
	b.Params.Declare("center", 0, 1, module.ConfigFloat(cfg, "center", 0.5))
	b.Params.Declare("width", 0.02, 1, module.ConfigFloat(cfg, "width", 1.0))
	b.Params.Declare("tilt", -1, 1, module.ConfigFloat(cfg, "tilt", 0))
	b.Params.Declare("drive", 0, 1, module.ConfigFloat(cfg, "drive", 0))
	b.Params.Declare("mix", 0, 1, module.ConfigFloat(cfg, "mix", 1.0))

	bb := &BarkBank{
		Base:   b,
		stft:   spectral.New(barkBankFFTSize, sampleRate),
		center: b.Params.Get("center"),
		width:  b.Params.Get("width"),
		tilt:   b.Params.Get("tilt"),
		drive:  b.Params.Get("drive"),
		mix:    b.Params.Get("mix"),
	}
	bb.binToBand = make([]int, bb.stft.Bins())
	nyquist := sampleRate / 2.0
	for i := range bb.binToBand {
		binHz := float64(i) / float64(bb.stft.Bins()) * nyquist
		bb.binToBand[i] = nearestBarkBand(binHz)
	}
	bb.stft.ProcessBins = bb.applyBands
	return bb, nil
}

func (bb *BarkBank) applyBands(bins []complex128, sampleRate float64) {
	bb.Lock()
	center, width, tilt, drive, mix := bb.center, bb.width, bb.tilt, bb.drive, bb.mix
	bb.Unlock()

	width = math.Max(width, 0.02)

	for i, c := range bins {
		band := bb.binToBand[i]
		x := float64(band) / float64(vocoderBands-1)
		d := x - center
		w := math.Exp(-(d * d) / (2 * width * width))
		t := math.Pow(2, tilt*(x-0.5)*4)
		gain := w * t

		wet := softSatComplex(c*complex(gain, 0), drive)
		bins[i] = complex(mix, 0)*wet + complex(1-mix, 0)*c
	}
}

// softSatComplex applies the same tanh-family soft saturation the rest
// of the engine uses to the magnitude of a complex bin, preserving phase.
func softSatComplex(c complex128, drive float64) complex128 {
	if drive <= 0 {
		return c
	}
	mag := cmplx.Abs(c)
	if mag < 1e-12 {
		return c
	}
	k := 1 + 9*drive
	shaped := math.Tanh(k*mag) / math.Tanh(k)
	scale := shaped / mag
	return c * complex(scale, 0)
}

func (bb *BarkBank) ProcessAudio(in []float32, out []float32, frames int) {
	bb.Lock()
	bb.center = bb.Params.Get("center")
	bb.width = bb.Params.Get("width")
	bb.tilt = bb.Params.Get("tilt")
	bb.drive = bb.Params.Get("drive")
	bb.mix = bb.Params.Get("mix")
	bb.Unlock()

	bb.stft.Process(in, out, frames)
	for i := 0; i < frames; i++ {
		if v, ok := bb.CV("tilt", i); ok {
			bb.Lock()
			bb.tilt = v
			bb.Unlock()
			break
		}
	}
}

func (bb *BarkBank) DrawUI(y, x int) string {
	bb.Lock()
	c, w, t, m := bb.center, bb.width, bb.tilt, bb.mix
	bb.Unlock()
	return fmt.Sprintf("[bark_bank:%s] center: %.2f | width: %.2f | tilt: %.2f | mix: %.2f",
		bb.Alias(), c, w, t, m)
}

func init() {
	registry.Register("bark_bank", newBarkBank)
}
