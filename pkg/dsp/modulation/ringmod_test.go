package modulation

import (
	"math"
	"testing"
)

func TestRingModulatorCreation(t *testing.T) {
	sampleRate := 48000.0
	rm := NewRingModulator(sampleRate)

	if rm.sampleRate != sampleRate {
		t.Errorf("sample rate mismatch: got %f, want %f", rm.sampleRate, sampleRate)
	}
	if rm.frequency != 440.0 {
		t.Errorf("default frequency incorrect: got %f, want 440.0", rm.frequency)
	}
	if rm.mix != 0.5 {
		t.Errorf("default mix incorrect: got %f, want 0.5", rm.mix)
	}
	if rm.waveform != WaveformSine {
		t.Errorf("default waveform incorrect: got %v, want WaveformSine", rm.waveform)
	}
}

func TestRingModulatorDrySignal(t *testing.T) {
	rm := NewRingModulator(48000.0)
	rm.SetMix(0.0)

	input := float32(0.5)
	output := rm.Process(input)

	if math.Abs(float64(output-input)) > 0.001 {
		t.Errorf("dry signal altered: input %f, output %f", input, output)
	}
}

func TestRingModulatorFullWet(t *testing.T) {
	rm := NewRingModulator(48000.0)
	rm.SetMix(1.0)
	rm.SetFrequency(1000.0)

	dc := float32(1.0)
	samples := 48

	var hasPositive, hasNegative bool
	for i := 0; i < samples; i++ {
		out := rm.Process(dc)
		if out > 0.1 {
			hasPositive = true
		}
		if out < -0.1 {
			hasNegative = true
		}
	}

	if !hasPositive || !hasNegative {
		t.Error("ring modulator not producing bipolar output with DC input")
	}
}

func TestRingModulatorFrequencyDoubling(t *testing.T) {
	rm := NewRingModulator(48000.0)
	rm.SetMix(1.0)
	rm.SetFrequency(1000.0)

	inputFreq := 1000.0
	samples := 480

	input := make([]float32, samples)
	output := make([]float32, samples)

	for i := 0; i < samples; i++ {
		input[i] = float32(math.Sin(2.0 * math.Pi * inputFreq * float64(i) / 48000.0))
		output[i] = rm.Process(input[i])
	}

	inputCrossings, outputCrossings := 0, 0
	for i := 1; i < samples; i++ {
		if (input[i-1] < 0 && input[i] >= 0) || (input[i-1] >= 0 && input[i] < 0) {
			inputCrossings++
		}
		if (output[i-1] < 0 && output[i] >= 0) || (output[i-1] >= 0 && output[i] < 0) {
			outputCrossings++
		}
	}

	ratio := float64(outputCrossings) / float64(inputCrossings)
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("frequency doubling not occurring: input crossings=%d, output crossings=%d, ratio=%f",
			inputCrossings, outputCrossings, ratio)
	}
}

func TestRingModulatorWaveforms(t *testing.T) {
	rm := NewRingModulator(48000.0)
	rm.SetMix(1.0)
	rm.SetFrequency(100.0)

	waveforms := []Waveform{WaveformSine, WaveformTriangle, WaveformSquare, WaveformSawtooth}
	dc := float32(1.0)

	for _, wf := range waveforms {
		rm.SetWaveform(wf)
		rm.phase = 0.0

		samplesPerCycle := int(48000.0 / 100.0)
		for i := 0; i < samplesPerCycle; i++ {
			out := rm.Process(dc)
			if out < -1.1 || out > 1.1 {
				t.Errorf("waveform %v: output out of range at sample %d: %f", wf, i, out)
			}
		}
	}
}

func TestRingModulatorParameterLimits(t *testing.T) {
	rm := NewRingModulator(48000.0)

	rm.SetFrequency(-100.0)
	if rm.frequency < 0.1 {
		t.Errorf("frequency below minimum: %f", rm.frequency)
	}

	rm.SetFrequency(30000.0)
	if rm.frequency > 24000.0 {
		t.Errorf("frequency above Nyquist: %f", rm.frequency)
	}

	rm.SetMix(-0.5)
	if rm.mix < 0.0 {
		t.Errorf("mix below minimum: %f", rm.mix)
	}

	rm.SetMix(1.5)
	if rm.mix > 1.0 {
		t.Errorf("mix above maximum: %f", rm.mix)
	}
}

func BenchmarkRingModulator(b *testing.B) {
	rm := NewRingModulator(48000.0)
	rm.SetFrequency(1000.0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rm.Process(0.5)
	}
}
