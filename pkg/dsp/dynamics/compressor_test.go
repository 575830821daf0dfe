package dynamics

import (
	"math"
	"testing"
)

func TestCompressorCreation(t *testing.T) {
	sampleRate := 48000.0
	c := NewCompressor(sampleRate)

	if c.sampleRate != sampleRate {
		t.Errorf("sample rate mismatch: got %f, want %f", c.sampleRate, sampleRate)
	}
	if c.threshold != -20.0 {
		t.Errorf("default threshold incorrect: got %f, want -20.0", c.threshold)
	}
	if c.ratio != 4.0 {
		t.Errorf("default ratio incorrect: got %f, want 4.0", c.ratio)
	}
}

func TestCompressorGainComputation(t *testing.T) {
	c := NewCompressor(48000.0)
	c.SetThreshold(-20.0)
	c.SetRatio(4.0)
	c.SetKnee(KneeHard, 0.0)

	cases := []struct {
		inputDB   float64
		wantGR    float64
		tolerance float64
	}{
		{-30.0, 0.0, 0.001},
		{-20.0, 0.0, 0.001},
		{-10.0, 7.5, 0.001},
		{0.0, 15.0, 0.001},
	}

	for _, tc := range cases {
		gr := c.gainReductionAt(tc.inputDB)
		if math.Abs(gr-tc.wantGR) > tc.tolerance {
			t.Errorf("gain reduction at %f dB: got %f dB, want %f dB", tc.inputDB, gr, tc.wantGR)
		}
	}
}

func TestCompressorSoftKnee(t *testing.T) {
	c := NewCompressor(48000.0)
	c.SetThreshold(-20.0)
	c.SetRatio(4.0)
	c.SetKnee(KneeSoft, 6.0)

	inputDB := -18.0
	gr := c.gainReductionAt(inputDB)
	if gr <= 0.0 || gr >= 1.5 {
		t.Errorf("soft knee midpoint out of range: got %f dB reduction at %f dB input", gr, inputDB)
	}

	inputDB = -17.0 // top of the knee, should match the hard-knee value
	gr = c.gainReductionAt(inputDB)
	want := 3.0 * (1.0 - 1.0/4.0)
	if math.Abs(gr-want) > 0.1 {
		t.Errorf("soft knee boundary incorrect: got %f dB, want %f dB", gr, want)
	}
}

func TestCompressorProcessing(t *testing.T) {
	sampleRate := 48000.0
	c := NewCompressor(sampleRate)
	c.SetThreshold(-20.0)
	c.SetRatio(4.0)
	c.SetAttack(0.001)
	c.SetRelease(0.010)

	duration := 0.1
	numSamples := int(sampleRate * duration)
	input := make([]float32, numSamples)
	output := make([]float32, numSamples)

	freq := 1000.0
	for i := 0; i < numSamples; i++ {
		input[i] = float32(math.Sin(2.0 * math.Pi * freq * float64(i) / sampleRate))
	}
	for i := range input {
		output[i] = c.Process(input[i])
	}

	attackSamples := int(0.002 * sampleRate)
	var inputRMS, outputRMS float32
	count := 0
	for i := attackSamples; i < numSamples/2; i++ {
		inputRMS += input[i] * input[i]
		outputRMS += output[i] * output[i]
		count++
	}
	inputRMS = float32(math.Sqrt(float64(inputRMS / float32(count))))
	outputRMS = float32(math.Sqrt(float64(outputRMS / float32(count))))

	if outputRMS >= inputRMS {
		t.Errorf("compression not applied: input RMS %f, output RMS %f", inputRMS, outputRMS)
	}
	if c.GainReductionDB() <= 0 {
		t.Error("no gain reduction reported")
	}
}

func BenchmarkCompressor(b *testing.B) {
	c := NewCompressor(48000.0)
	input := float32(0.5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Process(input)
	}
}
