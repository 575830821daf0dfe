package modules

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/spectral"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

const (
	vocoderFFTSize = 2048
	vocoderBands   = 24
)

// vocoderBarkCenters is the fixed bark-scale band-center table used to
// bucket FFT bins into bands instead of driving a bank of resonant
// biquads tuned to the same centers.
var vocoderBarkCenters = [vocoderBands]float64{
	80, 120, 180, 260, 360, 510, 720, 1000,
	1400, 2000, 2800, 3700, 4800, 6200, 8000, 10000,
	12000, 14000, 16000, 18000, 20000, 22000, 24000, 26000,
}

// Vocoder implements the vocoder module as a channel vocoder over the
// shared pkg/dsp/spectral.STFT engine rather than a bank of per-band
// resonant biquads plus envelope followers: the carrier's
// magnitude spectrum is bucketed by bark band, replaced by the
// modulator's band envelope (attack/release smoothed across hops), and
// the carrier's own phase is kept, so voiced character tracks the
// modulator while the carrier supplies the timbre.
type Vocoder struct {
	*module.Base

	modStft *spectral.STFT
	carStft *spectral.STFT

	bandEnv   [vocoderBands]float64
	binToBand []int

	modGain, carGain    float64
	wet, dry            float64
	attackMs, releaseMs float64

	modScratch []float32
	carScratch []float32
	discard    []float32
}

func newVocoder(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "vocoder", sampleRate, 0.9, true, false, module.MaxBlockSize)
	b.Params.Declare("mod_gain", 0, 2, module.ConfigFloat(cfg, "mod_gain", 0.7))
	b.Params.Declare("car_gain", 0, 2, module.ConfigFloat(cfg, "car_gain", 0.7))
	b.Params.Declare("wet", 0, 1, module.ConfigFloat(cfg, "wet", 1.0))
	b.Params.Declare("dry", 0, 1, module.ConfigFloat(cfg, "dry", 0.0))
	b.Params.Declare("attack", 0.1, 200, module.ConfigFloat(cfg, "attack", 5))
	b.Params.Declare("release", 1, 1000, module.ConfigFloat(cfg, "release", 80))

	v := &Vocoder{
		Base:      b,
		modStft:   spectral.New(vocoderFFTSize, sampleRate),
		carStft:   spectral.New(vocoderFFTSize, sampleRate),
		modGain:   b.Params.Get("mod_gain"),
		carGain:   b.Params.Get("car_gain"),
		wet:       b.Params.Get("wet"),
		dry:       b.Params.Get("dry"),
		attackMs:  b.Params.Get("attack"),
		releaseMs: b.Params.Get("release"),

		modScratch: make([]float32, module.MaxBlockSize),
		carScratch: make([]float32, module.MaxBlockSize),
		discard:    make([]float32, module.MaxBlockSize),
	}
	v.binToBand = make([]int, v.modStft.Bins())
	nyquist := sampleRate / 2.0
	for i := range v.binToBand {
		binHz := float64(i) / float64(v.modStft.Bins()) * nyquist
		v.binToBand[i] = nearestBarkBand(binHz)
	}
	v.modStft.ProcessBins = v.analyzeModulator
	v.carStft.ProcessBins = v.synthesizeCarrier
	return v, nil
}

func nearestBarkBand(hz float64) int {
	best, bestDiff := 0, math.Inf(1)
	for i, c := range vocoderBarkCenters {
		d := math.Abs(hz - c)
		if d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

// analyzeModulator updates the per-band envelope from the modulator's
// magnitude spectrum with asymmetric attack/release smoothing, the
// bin-domain analog of a per-band asymmetric envelope follower.
func (v *Vocoder) analyzeModulator(bins []complex128, sampleRate float64) {
	var bandMag [vocoderBands]float64
	var bandCount [vocoderBands]int
	for i, c := range bins {
		band := v.binToBand[i]
		bandMag[band] += cmplx.Abs(c)
		bandCount[band]++
	}

	hopSeconds := float64(v.modStft.Size()) / 2.0 / sampleRate
	atkCoef := math.Exp(-hopSeconds / (math.Max(v.attackMs, 0.1) * 0.001))
	relCoef := math.Exp(-hopSeconds / (math.Max(v.releaseMs, 1) * 0.001))

	for b := 0; b < vocoderBands; b++ {
		mag := 0.0
		if bandCount[b] > 0 {
			mag = bandMag[b] / float64(bandCount[b])
		}
		if mag > v.bandEnv[b] {
			v.bandEnv[b] = atkCoef*v.bandEnv[b] + (1-atkCoef)*mag
		} else {
			v.bandEnv[b] = relCoef*v.bandEnv[b] + (1-relCoef)*mag
		}
	}
}

// synthesizeCarrier replaces each bin's magnitude with its band's
// modulator envelope while keeping the carrier's own phase.
func (v *Vocoder) synthesizeCarrier(bins []complex128, sampleRate float64) {
	for i, c := range bins {
		env := v.bandEnv[v.binToBand[i]]
		mag := cmplx.Abs(c)
		if mag < 1e-12 {
			bins[i] = complex(env, 0)
			continue
		}
		scale := env / mag
		bins[i] = c * complex(scale, 0)
	}
}

func (v *Vocoder) ProcessMultiAudio(ins [][]float32, out []float32, frames int) {
	v.Lock()
	v.modGain = v.Params.Get("mod_gain")
	v.carGain = v.Params.Get("car_gain")
	v.wet = v.Params.Get("wet")
	v.dry = v.Params.Get("dry")
	v.attackMs = v.Params.Get("attack")
	v.releaseMs = v.Params.Get("release")
	v.Unlock()

	var mod, car []float32
	if len(ins) > 0 {
		mod = ins[0]
	}
	if len(ins) > 1 {
		car = ins[1]
	}
	if mod == nil && car == nil {
		for i := 0; i < frames; i++ {
			out[i] = 0
		}
		return
	}
	if mod == nil {
		mod = car
	}
	if car == nil {
		car = mod
	}

	modScratch := v.modScratch[:frames]
	carScratch := v.carScratch[:frames]
	for i := 0; i < frames; i++ {
		var mv, cv float32
		if i < len(mod) {
			mv = mod[i]
		}
		if i < len(car) {
			cv = car[i]
		}
		modScratch[i] = mv * float32(v.modGain)
		carScratch[i] = cv * float32(v.carGain)
	}

	v.modStft.Process(modScratch, v.discard[:frames], frames)
	v.carStft.Process(carScratch, out, frames)

	for i := 0; i < frames; i++ {
		out[i] = clampFinite(float32(v.wet)*out[i] + float32(v.dry)*carScratch[i])
	}
}

func (v *Vocoder) DrawUI(y, x int) string {
	v.Lock()
	mg, cg, wet, dry := v.modGain, v.carGain, v.wet, v.dry
	v.Unlock()
	return fmt.Sprintf("[vocoder:%s] mod: %.2f | car: %.2f | wet: %.2f | dry: %.2f",
		v.Alias(), mg, cg, wet, dry)
}

func init() {
	registry.Register("vocoder", newVocoder)
}
