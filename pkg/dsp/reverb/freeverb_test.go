package reverb

import (
	"math"
	"testing"
)

func TestFreeverbCreation(t *testing.T) {
	f := NewFreeverb(48000.0)

	if f.roomSize != 0.5 {
		t.Errorf("default room size incorrect: got %f, want 0.5", f.roomSize)
	}
	if f.damping != 0.5 {
		t.Errorf("default damping incorrect: got %f, want 0.5", f.damping)
	}
	for i := 0; i < numCombs; i++ {
		if f.combL[i] == nil || f.combR[i] == nil {
			t.Fatalf("comb %d not initialized", i)
		}
	}
	for i := 0; i < numAllpasses; i++ {
		if f.allpassL[i] == nil || f.allpassR[i] == nil {
			t.Fatalf("allpass %d not initialized", i)
		}
	}
}

func TestFreeverbParameterRanges(t *testing.T) {
	f := NewFreeverb(48000.0)

	f.SetRoomSize(1.5)
	if f.roomSize != 1.0 {
		t.Errorf("room size not clamped: got %f, want 1.0", f.roomSize)
	}
	f.SetRoomSize(-0.5)
	if f.roomSize != 0.0 {
		t.Errorf("room size not clamped: got %f, want 0.0", f.roomSize)
	}

	f.SetDamping(2.0)
	if f.damping != 1.0 {
		t.Errorf("damping not clamped: got %f, want 1.0", f.damping)
	}

	f.SetWetLevel(2.0)
	if f.wetLevel != 1.0 {
		t.Errorf("wet level not clamped: got %f, want 1.0", f.wetLevel)
	}

	f.SetDryLevel(-1.0)
	if f.dryLevel != 0.0 {
		t.Errorf("dry level not clamped: got %f, want 0.0", f.dryLevel)
	}
}

func TestFreeverbProcessing(t *testing.T) {
	f := NewFreeverb(48000.0)
	f.SetRoomSize(0.8)
	f.SetWetLevel(1.0)
	f.SetDryLevel(0.0)

	var sawNonzero bool
	for i := 0; i < 10000; i++ {
		in := float32(0.0)
		if i == 0 {
			in = 1.0
		}
		outL, outR := f.ProcessStereo(in, in)
		if math.IsNaN(float64(outL)) || math.IsNaN(float64(outR)) {
			t.Fatalf("NaN output at sample %d", i)
		}
		if math.IsInf(float64(outL), 0) || math.IsInf(float64(outR), 0) {
			t.Fatalf("Inf output at sample %d", i)
		}
		if outL != 0 || outR != 0 {
			sawNonzero = true
		}
	}
	if !sawNonzero {
		t.Error("impulse produced no reverb tail")
	}
}

func TestFreeverbDifferentSampleRates(t *testing.T) {
	f44 := NewFreeverb(44100.0)
	f96 := NewFreeverb(96000.0)

	if len(f96.combL[0].buffer) <= len(f44.combL[0].buffer) {
		t.Errorf("comb delay did not scale up with sample rate: 44.1k=%d 96k=%d",
			len(f44.combL[0].buffer), len(f96.combL[0].buffer))
	}
}

func BenchmarkFreeverbStereo(b *testing.B) {
	f := NewFreeverb(48000.0)
	f.SetRoomSize(0.8)
	f.SetDamping(0.5)
	f.SetWetLevel(0.3)
	f.SetDryLevel(0.7)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = f.ProcessStereo(0.5, 0.5)
	}
}
