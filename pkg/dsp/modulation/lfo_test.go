package modulation

import (
	"math"
	"testing"
)

func TestLFOCreation(t *testing.T) {
	sampleRate := 48000.0
	lfo := NewLFO(sampleRate)

	if lfo.sampleRate != sampleRate {
		t.Errorf("sample rate mismatch: got %f, want %f", lfo.sampleRate, sampleRate)
	}
	if lfo.frequency != 1.0 {
		t.Errorf("default frequency incorrect: got %f, want 1.0", lfo.frequency)
	}
	if lfo.waveform != WaveformSine {
		t.Errorf("default waveform incorrect: got %v, want WaveformSine", lfo.waveform)
	}
	if lfo.depth != 1.0 {
		t.Errorf("default depth incorrect: got %f, want 1.0", lfo.depth)
	}
}

func TestLFOWaveforms(t *testing.T) {
	sampleRate := 48000.0
	lfo := NewLFO(sampleRate)
	lfo.SetFrequency(1.0)

	testCases := []struct {
		waveform  Waveform
		name      string
		phase     float64
		expected  float64
		tolerance float64
	}{
		{WaveformSine, "sine at 0", 0.0, 0.0, 0.001},
		{WaveformSine, "sine at 0.25", 0.25, 1.0, 0.001},
		{WaveformSine, "sine at 0.5", 0.5, 0.0, 0.001},
		{WaveformSine, "sine at 0.75", 0.75, -1.0, 0.001},

		{WaveformTriangle, "triangle at 0", 0.0, -1.0, 0.001},
		{WaveformTriangle, "triangle at 0.25", 0.25, 0.0, 0.001},
		{WaveformTriangle, "triangle at 0.5", 0.5, 1.0, 0.001},
		{WaveformTriangle, "triangle at 0.75", 0.75, 0.0, 0.001},

		{WaveformSquare, "square at 0", 0.0, 1.0, 0.001},
		{WaveformSquare, "square at 0.25", 0.25, 1.0, 0.001},
		{WaveformSquare, "square at 0.5", 0.5, -1.0, 0.001},
		{WaveformSquare, "square at 0.75", 0.75, -1.0, 0.001},

		{WaveformSawtooth, "sawtooth at 0", 0.0, -1.0, 0.001},
		{WaveformSawtooth, "sawtooth at 0.25", 0.25, -0.5, 0.001},
		{WaveformSawtooth, "sawtooth at 0.5", 0.5, 0.0, 0.001},
		{WaveformSawtooth, "sawtooth at 0.75", 0.75, 0.5, 0.001},
	}

	for _, tc := range testCases {
		lfo.SetWaveform(tc.waveform)
		lfo.phase = tc.phase
		output := lfo.Process()

		if math.Abs(output-tc.expected) > tc.tolerance {
			t.Errorf("%s: got %f, expected %f", tc.name, output, tc.expected)
		}
	}
}

func TestLFOFrequency(t *testing.T) {
	sampleRate := 48000.0
	lfo := NewLFO(sampleRate)
	lfo.SetWaveform(WaveformSawtooth)
	lfo.SetFrequency(2.0)

	samples := int(sampleRate)
	phaseAtStart := lfo.phase

	for i := 0; i < samples; i++ {
		lfo.Process()
	}

	phaseAtEnd := lfo.phase
	if math.Abs(phaseAtEnd-phaseAtStart) > 0.01 {
		t.Errorf("phase not correct after 2 cycles: start %f, end %f", phaseAtStart, phaseAtEnd)
	}
}

func TestLFODepth(t *testing.T) {
	lfo := NewLFO(48000.0)
	lfo.SetWaveform(WaveformSquare)

	lfo.SetDepth(0.5)
	lfo.phase = 0.0

	output := lfo.Process()
	if math.Abs(output-0.5) > 0.001 {
		t.Errorf("depth not applied correctly: got %f, expected 0.5", output)
	}
}

func TestLFORandom(t *testing.T) {
	lfo := NewLFO(48000.0)
	lfo.SetWaveform(WaveformRandom)
	lfo.SetFrequency(10.0)

	samplesPerPeriod := int(48000.0 / 10.0)
	samples := samplesPerPeriod * 3
	values := make([]float64, samples)
	for i := 0; i < samples; i++ {
		values[i] = lfo.Process()
	}

	uniqueValues := make(map[float64]bool)
	for _, v := range values {
		uniqueValues[v] = true
	}
	if len(uniqueValues) < 2 {
		t.Errorf("random waveform not producing enough unique values: got %d", len(uniqueValues))
	}

	for i, v := range values {
		if v < -1.0 || v > 1.0 {
			t.Errorf("random value out of range at sample %d: %f", i, v)
		}
	}
}

func TestLFOParameterLimits(t *testing.T) {
	lfo := NewLFO(48000.0)

	lfo.SetFrequency(0.001)
	if lfo.frequency < 0.01 {
		t.Errorf("frequency below minimum: %f", lfo.frequency)
	}

	lfo.SetFrequency(100.0)
	if lfo.frequency > 20.0 {
		t.Errorf("frequency above maximum: %f", lfo.frequency)
	}

	lfo.SetDepth(-0.5)
	if lfo.depth < 0.0 {
		t.Errorf("depth below minimum: %f", lfo.depth)
	}

	lfo.SetDepth(2.0)
	if lfo.depth > 1.0 {
		t.Errorf("depth above maximum: %f", lfo.depth)
	}
}

func BenchmarkLFO(b *testing.B) {
	lfo := NewLFO(48000.0)
	lfo.SetFrequency(5.0)
	lfo.SetWaveform(WaveformSine)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = lfo.Process()
	}
}
