package dynamics

import (
	"math"
	"testing"
)

func TestLimiterCreation(t *testing.T) {
	sampleRate := 48000.0
	l := NewLimiter(sampleRate)

	if l.sampleRate != sampleRate {
		t.Errorf("sample rate mismatch: got %f, want %f", l.sampleRate, sampleRate)
	}
	if l.threshold != -0.3 {
		t.Errorf("default threshold incorrect: got %f, want -0.3", l.threshold)
	}
}

func TestLimiterBrickWall(t *testing.T) {
	sampleRate := 48000.0
	l := NewLimiter(sampleRate)
	l.SetThreshold(-3.0)
	l.SetLookahead(0.0)

	cases := []struct {
		inputDB, wantDB, tolerance float64
	}{
		{-10.0, -10.0, 0.1},
		{-3.0, -3.0, 0.1},
		{0.0, -3.0, 0.5},
		{6.0, -3.0, 0.5},
	}

	for _, tc := range cases {
		input := float32(math.Pow(10.0, tc.inputDB/20.0))
		var output float32
		for i := 0; i < 100; i++ {
			output = l.Process(input)
		}
		outputDB := 20.0 * math.Log10(math.Abs(float64(output)))
		if math.Abs(outputDB-tc.wantDB) > tc.tolerance {
			t.Errorf("limiter at %f dB input: got %f dB, want %f dB", tc.inputDB, outputDB, tc.wantDB)
		}
	}
}

func TestLimiterTruePeak(t *testing.T) {
	sampleRate := 48000.0
	l := NewLimiter(sampleRate)
	l.SetThreshold(-1.0)

	// Two samples at 0.8 can have an intersample peak near 1.0.
	signal := []float32{0.8, 0.8, -0.8, -0.8}
	for i, in := range signal {
		out := l.Process(in)
		outDB := 20.0 * math.Log10(math.Abs(float64(out))+1e-10)
		if outDB > -0.5 {
			t.Errorf("true peak limiting failed at sample %d: %f dB", i, outDB)
		}
	}
}

func TestLimiterLookahead(t *testing.T) {
	sampleRate := 48000.0
	l := NewLimiter(sampleRate)
	l.SetThreshold(-6.0)
	l.SetLookahead(0.005)
	l.SetRelease(0.010)

	numSamples := 1000
	input := make([]float32, numSamples)
	output := make([]float32, numSamples)
	for i := range input {
		input[i] = 0.1
	}
	transientStart, transientLength := 500, 10
	for i := transientStart; i < transientStart+transientLength; i++ {
		input[i] = 1.0
	}
	for i := range input {
		output[i] = l.Process(input[i])
	}

	for i := transientStart; i < transientStart+transientLength; i++ {
		outputDB := 20.0 * math.Log10(math.Abs(float64(output[i]))+1e-10)
		if outputDB > -5.5 {
			t.Errorf("lookahead limiting failed at sample %d: %f dB", i, outputDB)
		}
	}

	preTransientIndex := transientStart - int(0.020*sampleRate)
	if preTransientIndex >= 0 {
		ratio := output[preTransientIndex] / input[preTransientIndex]
		if ratio < 0.95 || ratio > 1.05 {
			t.Errorf("lookahead affecting signal too early: ratio %f", ratio)
		}
	}
}

func TestLimiterGainReduction(t *testing.T) {
	l := NewLimiter(48000.0)
	l.SetThreshold(-6.0)

	input := float32(1.0)
	for i := 0; i < 100; i++ {
		l.Process(input)
	}

	gr := l.GainReductionDB()
	if gr < 5.5 || gr > 6.5 {
		t.Errorf("incorrect gain reduction: got %f dB, want ~6 dB", gr)
	}
}

func BenchmarkLimiter(b *testing.B) {
	l := NewLimiter(48000.0)
	input := float32(0.8)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = l.Process(input)
	}
}
