// Package wavio serializes recorder takes to WAV files using
// github.com/go-audio/wav: one file per input channel plus one for the
// summed mix, all mono, all at the engine sample rate. See DESIGN.md for
// the 16-bit PCM vs. float32 format decision.
package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// dir is the recordings output root, "e_output_files/recordings/" by
// default and similar subdirectories for related tools. Overridable via
// --out-dir.
var dir = "e_output_files/recordings"

// SetDir overrides the recordings output root, wired from --out-dir.
func SetDir(path string) {
	if path != "" {
		dir = path
	}
}

// Dir returns the current recordings output root.
func Dir() string { return dir }

// EnsureDir creates the recordings directory tree if absent.
func EnsureDir() error {
	return os.MkdirAll(dir, 0o755)
}

// WriteMono writes one mono float32 buffer to path at sampleRate as
// 16-bit PCM, the IntBuffer-based encode path github.com/go-audio/wav's
// own examples use.
func WriteMono(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1) // format 1 = PCM
	buf := &audio.IntBuffer{
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
	}
	for i, s := range samples {
		buf.Data[i] = int(clampSample(s) * 32767.0)
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

func clampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// TakeFilenames returns the per-channel and mix filenames for a take ID,
// following sc_take_<NNN>_ch_<NN>.wav / sc_take_<NNN>_mix.wav.
func TakeFilenames(takeID, numChannels int) (channels []string, mix string) {
	for ch := 0; ch < numChannels; ch++ {
		channels = append(channels, filepath.Join(dir, fmt.Sprintf("sc_take_%03d_ch_%02d.wav", takeID, ch)))
	}
	mix = filepath.Join(dir, fmt.Sprintf("sc_take_%03d_mix.wav", takeID))
	return
}
