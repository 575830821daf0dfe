package modules

import (
	"fmt"
	"strings"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/analysis"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// Meter wraps pkg/dsp/analysis's PeakMeter and RMSMeter as a patch-level
// level meter, the visual counterpart to c_env_fol's CV-rate tracking:
// this module produces no control output at all, only a terminal bar
// graph via DrawUI, the same monitoring-tap role e_recorder's transport
// display fills for in-progress takes.
type Meter struct {
	*module.Base

	peak *analysis.PeakMeter
	rms  *analysis.RMSMeter
	buf  []float64
}

func newMeter(alias, config string, sampleRate float64) (module.Module, error) {
	b := module.NewBase(alias, "c_meter", sampleRate, 0.99, true, false, module.MaxBlockSize)

	windowSamples := int(sampleRate * 0.3)
	if windowSamples < 1 {
		windowSamples = 1
	}

	return &Meter{
		Base: b,
		peak: analysis.NewPeakMeter(sampleRate),
		rms:  analysis.NewRMSMeter(windowSamples),
		buf:  make([]float64, module.MaxBlockSize),
	}, nil
}

// ProcessAudio passes the signal through unchanged, tapping it for
// metering the way a patch bay's bridging jack does.
func (m *Meter) ProcessAudio(in []float32, out []float32, frames int) {
	for i := 0; i < frames; i++ {
		m.buf[i] = float64(in[i])
	}
	m.peak.Process(m.buf[:frames])
	m.rms.Process(m.buf[:frames])
	copy(out[:frames], in[:frames])
}

// DrawUI renders a fixed-width peak/RMS bar graph plus numeric dB readouts.
func (m *Meter) DrawUI(y, x int) string {
	const width = 30
	peakDB := m.peak.GetPeakDB()
	rmsDB := m.rms.GetRMSDB()

	bar := meterBar(peakDB, width)
	return fmt.Sprintf("[c_meter:%s] %s peak: %6.1f dB | rms: %6.1f dB",
		m.Alias(), bar, peakDB, rmsDB)
}

// meterBar maps a dB level onto a fixed-width ASCII bar, clamping the
// displayed range to [-60, 0] dB which covers typical line-level signal.
func meterBar(db float64, width int) string {
	const minDB, maxDB = -60.0, 0.0
	if db < minDB {
		db = minDB
	}
	if db > maxDB {
		db = maxDB
	}
	filled := int((db - minDB) / (maxDB - minDB) * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func init() {
	registry.Register("c_meter", newMeter)
}
