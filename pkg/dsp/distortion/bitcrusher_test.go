package distortion

import (
	"math"
	"testing"
)

func TestBitCrusher(t *testing.T) {
	sampleRate := 48000.0

	t.Run("Basic Operation", func(t *testing.T) {
		bc := NewBitCrusher(sampleRate)

		bc.SetMix(0.0)
		input := 0.5
		output := bc.Process(input)
		if math.Abs(output-input) > 1e-6 {
			t.Errorf("mix=0 should pass dry signal: got %f, expected %f", output, input)
		}

		bc.SetMix(1.0)
		bc.SetBitDepth(4)
		output = bc.Process(input)
		if output == input {
			t.Errorf("bit crushing should modify signal: got %f, input was %f", output, input)
		}
	})

	t.Run("Bit Depth Reduction", func(t *testing.T) {
		bc := NewBitCrusher(sampleRate)
		bc.SetMix(1.0)
		bc.SetSampleRateRatio(1.0)

		bitDepths := []int{1, 2, 4, 8, 16}
		previousLevels := 0
		for _, bits := range bitDepths {
			bc.SetBitDepth(bits)

			levels := make(map[float64]bool)
			testInputs := []float64{-1.0, -0.5, 0.0, 0.5, 1.0}
			for _, in := range testInputs {
				out := bc.Process(in)
				rounded := math.Round(out*1000) / 1000
				levels[rounded] = true
			}

			if bits > 1 && len(levels) <= previousLevels {
				t.Errorf("bit depth %d should have more levels than %d", bits, previousLevels)
			}
			previousLevels = len(levels)
		}
	})

	t.Run("Sample Rate Reduction", func(t *testing.T) {
		bc := NewBitCrusher(sampleRate)
		bc.SetMix(1.0)
		bc.SetBitDepth(24)
		bc.SetSampleRateRatio(0.25)

		inputs := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
		outputs := make([]float64, len(inputs))
		for i, in := range inputs {
			outputs[i] = bc.Process(in)
		}

		changesCount := 0
		for i := 1; i < len(outputs); i++ {
			if outputs[i] != outputs[i-1] {
				changesCount++
			}
		}

		expectedChanges := len(inputs) / 4
		if changesCount > expectedChanges+2 {
			t.Errorf("too many sample changes for 0.25 ratio: %d (expected ~%d)", changesCount, expectedChanges)
		}
	})

	t.Run("Anti-Aliasing", func(t *testing.T) {
		bcOn := NewBitCrusher(sampleRate)
		bcOn.SetMix(1.0)
		bcOn.SetBitDepth(16)
		bcOn.SetSampleRateRatio(0.1)

		nyquist := sampleRate / 2
		testFreq := nyquist * 0.8
		omega := 2.0 * math.Pi * testFreq / sampleRate

		var energyWithAA float64
		for i := 0; i < 100; i++ {
			input := math.Sin(omega * float64(i))
			output := bcOn.Process(input)
			energyWithAA += output * output
		}

		if energyWithAA <= 0 {
			t.Errorf("filtered output should carry energy: %f", energyWithAA)
		}
	})

	t.Run("DC Blocking", func(t *testing.T) {
		bc := NewBitCrusher(sampleRate)
		bc.SetMix(1.0)
		bc.SetBitDepth(4)

		dcOffset := 0.5
		var avgOutput float64
		samples := 1000

		for i := 0; i < samples; i++ {
			output := bc.Process(dcOffset)
			if i > 100 {
				avgOutput += output
			}
		}

		avgOutput /= float64(samples - 100)
		if math.Abs(avgOutput) > 0.1 {
			t.Errorf("DC blocker should remove offset: avg = %f", avgOutput)
		}
	})
}

func TestDCBlocker(t *testing.T) {
	dc := newDCBlocker()

	dcLevel := 0.7
	var lastOutput float64
	for i := 0; i < 1000; i++ {
		lastOutput = dc.process(dcLevel)
	}
	if math.Abs(lastOutput) > 0.01 {
		t.Errorf("DC blocker should remove DC offset: got %f", lastOutput)
	}

	dc = newDCBlocker()
	freq := 1000.0
	sampleRate := 48000.0
	omega := 2.0 * math.Pi * freq / sampleRate

	var inputEnergy, outputEnergy float64
	for i := 0; i < 100; i++ {
		input := math.Sin(omega * float64(i))
		output := dc.process(input)
		inputEnergy += input * input
		outputEnergy += output * output
	}

	ratio := outputEnergy / inputEnergy
	if ratio < 0.9 {
		t.Errorf("DC blocker should pass AC signals: energy ratio = %f", ratio)
	}
}

func BenchmarkBitCrusher(b *testing.B) {
	sampleRate := 48000.0
	bc := NewBitCrusher(sampleRate)
	bc.SetBitDepth(8)
	bc.SetSampleRateRatio(0.25)
	bc.SetMix(1.0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bc.Process(0.5)
	}
}
