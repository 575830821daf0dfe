package analysis

import (
	"math"
	"testing"
)

func TestPeakMeter(t *testing.T) {
	sampleRate := 44100.0
	pm := NewPeakMeter(sampleRate)

	samples := []float64{0.1, 0.5, 0.3, -0.7, 0.2}
	pm.Process(samples)

	peakDB := pm.GetPeakDB()
	expectedDB := 20.0 * math.Log10(0.7)
	if math.Abs(peakDB-expectedDB) > 0.001 {
		t.Errorf("peak dB mismatch: expected %f, got %f", expectedDB, peakDB)
	}
}

func TestPeakMeterDecay(t *testing.T) {
	sampleRate := 44100.0
	pm := NewPeakMeter(sampleRate)

	pm.Process([]float64{1.0})
	initialDB := pm.GetPeakDB()

	silenceSamples := int(0.1 * sampleRate)
	silence := make([]float64, silenceSamples)
	pm.Process(silence)

	decayedDB := pm.GetPeakDB()
	if decayedDB >= initialDB {
		t.Errorf("peak didn't decay: initial %f dB, after decay %f dB", initialDB, decayedDB)
	}

	expectedDB := initialDB - 2.0
	if math.Abs(decayedDB-expectedDB) > 0.5 {
		t.Errorf("decay amount incorrect: expected ~%f dB, got %f dB", expectedDB, decayedDB)
	}
}

func TestRMSMeter(t *testing.T) {
	windowSize := 1024
	rm := NewRMSMeter(windowSize)

	dcLevel := 0.5
	samples := make([]float64, windowSize)
	for i := range samples {
		samples[i] = dcLevel
	}
	rm.Process(samples)

	rmsDB := rm.GetRMSDB()
	expectedDB := 20.0 * math.Log10(dcLevel)
	if math.Abs(rmsDB-expectedDB) > 0.01 {
		t.Errorf("RMS dB mismatch for DC signal: expected %f, got %f", expectedDB, rmsDB)
	}
}

func TestRMSMeterWindow(t *testing.T) {
	windowSize := 100
	rm := NewRMSMeter(windowSize)

	ones := make([]float64, windowSize)
	for i := range ones {
		ones[i] = 1.0
	}
	rm.Process(ones)

	if math.Abs(rm.GetRMSDB()) > 0.001 {
		t.Errorf("initial RMS incorrect: %f dB", rm.GetRMSDB())
	}

	zeros := make([]float64, windowSize/2)
	rm.Process(zeros)

	expectedDB := 20.0 * math.Log10(math.Sqrt(0.5))
	if math.Abs(rm.GetRMSDB()-expectedDB) > 0.5 {
		t.Errorf("RMS after partial update incorrect: expected %f dB, got %f dB", expectedDB, rm.GetRMSDB())
	}
}

func BenchmarkPeakMeter(b *testing.B) {
	pm := NewPeakMeter(44100.0)
	samples := make([]float64, 1024)
	for i := range samples {
		samples[i] = math.Sin(2.0 * math.Pi * float64(i) / 1024.0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pm.Process(samples)
		pm.GetPeakDB()
	}
}

func BenchmarkRMSMeter(b *testing.B) {
	rm := NewRMSMeter(1024)
	samples := make([]float64, 256)
	for i := range samples {
		samples[i] = math.Sin(2.0 * math.Pi * float64(i) / 256.0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rm.Process(samples)
		rm.GetRMSDB()
	}
}
