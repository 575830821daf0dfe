package envelope

import (
	"math"
	"testing"
)

func TestDetectorCreation(t *testing.T) {
	sampleRate := 48000.0
	d := NewDetector(sampleRate)

	if d.sampleRate != sampleRate {
		t.Errorf("sample rate mismatch: got %f, want %f", d.sampleRate, sampleRate)
	}
	if d.detType != TypeLinear {
		t.Errorf("default type mismatch: got %d, want TypeLinear", d.detType)
	}
}

func TestDetectorPeak(t *testing.T) {
	sampleRate := 48000.0
	d := NewDetector(sampleRate)
	d.SetAttack(0.0001)
	d.SetRelease(0.010)

	var maxValue float32
	for i := 0; i < 1000; i++ {
		var in float32
		if i == 100 {
			in = 1.0
		}
		out := d.Detect(in)
		if i >= 100 && i < 150 && out > maxValue {
			maxValue = out
		}
	}
	if maxValue < 0.9 {
		t.Errorf("peak detector failed to detect pulse, max value found: %f", maxValue)
	}
}

func TestDetectorTypes(t *testing.T) {
	sampleRate := 48000.0
	types := []DetectorType{TypeLinear, TypeLogarithmic}

	for _, detType := range types {
		d := NewDetector(sampleRate)
		d.SetType(detType)
		d.SetAttack(0.001)
		d.SetRelease(0.010)

		output := d.Detect(1.0)
		if output <= 0 {
			t.Errorf("detector type %d failed to respond to impulse", detType)
		}

		for i := 0; i < 2000; i++ {
			output = d.Detect(0.0)
		}
		if output > 0.05 {
			t.Errorf("detector type %d did not decay properly: %f", detType, output)
		}
	}
}

func BenchmarkDetector(b *testing.B) {
	sampleRate := 48000.0
	d := NewDetector(sampleRate)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.Detect(float32(math.Sin(float64(i) * 0.1)))
	}
}
