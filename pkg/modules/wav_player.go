package modules

import (
	"os"

	"github.com/go-audio/wav"
	"github.com/halvorsen-audio/patchrack/pkg/dsp/interpolation"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// WavPlayer plays back a loaded mono WAV file with linear-interpolated
// variable-speed scrubbing: playing wraps at end of file; stopped, the
// play position equals the scrub position. Uses github.com/go-audio/wav
// for decoding, the same library pkg/wavio uses on the encode side.
type WavPlayer struct {
	*module.Base

	samples []float32
	pos     float64
	playing bool
}

func newWavPlayer(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "wav_player", sampleRate, 0.99, true, false, module.MaxBlockSize)
	b.Params.Declare("speed", -8, 8, module.ConfigFloat(cfg, "speed", 1))
	b.Params.Declare("scrub", 0, 1, 0)

	p := &WavPlayer{Base: b, playing: true}

	if path := module.ConfigString(cfg, "file", ""); path != "" {
		if samples, err := loadWavMono(path); err == nil {
			p.samples = samples
		}
		// A missing or unreadable file degrades to silence rather than
		// failing module construction: resource errors in background
		// subsystems degrade and continue.
	}
	return p, nil
}

func loadWavMono(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	floats := buf.AsFloatBuffer()

	channels := buf.Format.NumChannels
	if channels <= 1 {
		out := make([]float32, len(floats.Data))
		for i, v := range floats.Data {
			out[i] = float32(v)
		}
		return out, nil
	}

	frames := len(floats.Data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += floats.Data[i*channels+ch]
		}
		out[i] = float32(sum / float64(channels))
	}
	return out, nil
}

func (p *WavPlayer) ProcessAudio(in []float32, out []float32, frames int) {
	p.SnapshotBlock()
	speed := p.Params.Next("speed")

	n := len(p.samples)
	if n == 0 {
		for i := 0; i < frames; i++ {
			out[i] = 0
		}
		return
	}

	for i := 0; i < frames; i++ {
		if !p.playing {
			scrub := p.Params.Clamp("scrub", p.Params.Next("scrub"))
			p.pos = scrub * float64(n-1)
		}

		idx := int(p.pos)
		frac := p.pos - float64(idx)
		i0 := idx % n
		if i0 < 0 {
			i0 += n
		}
		i1 := (i0 + 1) % n

		sample := interpolation.Linear(p.samples[i0], p.samples[i1], float32(frac))
		out[i] = clampFinite(sample)

		if p.playing {
			p.pos += speed
			if p.pos >= float64(n) {
				p.pos -= float64(n)
			} else if p.pos < 0 {
				p.pos += float64(n)
			}
		}
	}
}

// HandleInput toggles play/scrub state on SPACE, matching the other
// transport-bearing modules' single-key convention.
func (p *WavPlayer) HandleInput(key rune) {
	if key == ' ' {
		p.playing = !p.playing
	}
}

func init() {
	registry.Register("wav_player", newWavPlayer)
}
