package modules

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/spectral"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// specTiltFFTSize matches the reference FFT_SIZE (2048) at a 50% hop.
const specTiltFFTSize = 2048

// SpecTilt implements spec_tilt: a frequency-domain tilt EQ, boosting or
// cutting highs relative to lows around a pivot frequency at 3dB/octave
// per unit of tilt. Built on the shared pkg/dsp/spectral.STFT engine
// rather than hand-rolling its own FFT/window/overlap-add bookkeeping.
type SpecTilt struct {
	*module.Base

	stft *spectral.STFT

	tilt    float64
	pivotHz float64

	enteringCommand bool
	cmdBuf          strings.Builder
}

func newSpecTilt(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "spec_tilt", sampleRate, 0, true, false, module.MaxBlockSize)
	b.Params.Declare("tilt", -1, 1, module.ConfigFloat(cfg, "tilt", 0))
	b.Params.Declare("pivot_hz", 1, 20000, module.ConfigFloat(cfg, "pivot_hz", 1000))

	t := &SpecTilt{
		Base:    b,
		stft:    spectral.New(specTiltFFTSize, sampleRate),
		tilt:    b.Params.Get("tilt"),
		pivotHz: b.Params.Get("pivot_hz"),
	}
	t.stft.ProcessBins = t.applyTilt
	return t, nil
}

// applyTilt scales each bin's magnitude by 10^(gain_db/20), gain_db =
// tilt * 3 * log2(bin_hz / pivot_hz), leaving phase untouched.
func (t *SpecTilt) applyTilt(bins []complex128, sampleRate float64) {
	t.Lock()
	tilt := t.tilt
	pivot := t.pivotHz
	t.Unlock()

	if math.Abs(tilt) < 1e-4 {
		return
	}

	nyquist := sampleRate / 2.0
	n := len(bins)
	for i, c := range bins {
		binHz := float64(i) / float64(n) * nyquist
		if binHz < 1 {
			binHz = 1
		}
		gainDB := tilt * 3.0 * math.Log2(binHz/pivot)
		gain := math.Pow(10, gainDB/20.0)
		bins[i] = complex(real(c)*gain, imag(c)*gain)
	}
}

func (t *SpecTilt) ProcessAudio(in []float32, out []float32, frames int) {
	t.stft.Process(in, out, frames)
	for i := 0; i < frames; i++ {
		if v, ok := t.CV("tilt", i); ok {
			t.Lock()
			t.tilt = v
			t.Unlock()
			break
		}
	}
}

func (t *SpecTilt) clampLocked() {
	if t.tilt < -1 {
		t.tilt = -1
	}
	if t.tilt > 1 {
		t.tilt = 1
	}
	if t.pivotHz < 1 {
		t.pivotHz = 1
	}
	if t.pivotHz > 20000 {
		t.pivotHz = 20000
	}
}

// HandleInput implements the -/=/+/_ nudge keys and the
// ":1 <tilt>" / ":2 <pivot_hz>" command-entry mini-language.
func (t *SpecTilt) HandleInput(key rune) {
	t.Lock()
	defer t.Unlock()

	if !t.enteringCommand {
		switch key {
		case '=':
			t.tilt += 0.01
		case '-':
			t.tilt -= 0.01
		case '+':
			t.pivotHz += 1
		case '_':
			t.pivotHz -= 1
		case ':':
			t.enteringCommand = true
			t.cmdBuf.Reset()
		}
		t.clampLocked()
		return
	}

	switch {
	case key == '\n':
		t.enteringCommand = false
		t.applyCommand(t.cmdBuf.String())
		t.clampLocked()
	case key == 27:
		t.enteringCommand = false
	case key == 127 || key == 8:
		s := t.cmdBuf.String()
		if len(s) > 0 {
			t.cmdBuf.Reset()
			t.cmdBuf.WriteString(s[:len(s)-1])
		}
	case key >= 32 && key < 127:
		t.cmdBuf.WriteRune(key)
	}
}

func (t *SpecTilt) applyCommand(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) != 2 {
		return
	}
	val, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return
	}
	switch fields[0] {
	case "1":
		t.tilt = val
	case "2":
		t.pivotHz = val
	}
}

func (t *SpecTilt) DrawUI(y, x int) string {
	t.Lock()
	tilt, pivot := t.tilt, t.pivotHz
	t.Unlock()
	return fmt.Sprintf("[spec_tilt:%s] tilt: %.2f | pivot: %.2f Hz | -/= tilt, _/+ pivot, :1/:2",
		t.Alias(), tilt, pivot)
}

func init() {
	registry.Register("spec_tilt", newSpecTilt)
}
