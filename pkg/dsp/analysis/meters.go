// Package analysis holds the level meters behind patchrack's c_meter
// module: audio-thread writers, UI-thread readers, guarded by a mutex
// since DrawUI runs on a separate goroutine from ProcessAudio.
package analysis

import (
	"math"
	"sync"
)

// PeakMeter tracks a decaying peak level: each block's peak replaces
// the running value if higher, otherwise the running value decays
// exponentially at a fixed dB/second rate.
type PeakMeter struct {
	peak       float64
	decayRate  float64
	sampleRate float64
	mu         sync.Mutex
}

// NewPeakMeter starts with a 20dB/second decay rate.
func NewPeakMeter(sampleRate float64) *PeakMeter {
	return &PeakMeter{
		sampleRate: sampleRate,
		decayRate:  20.0,
	}
}

// Process scans samples for the block's peak and applies decay since
// the previous call.
func (pm *PeakMeter) Process(samples []float64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	blockPeak := 0.0
	for _, sample := range samples {
		if absSample := math.Abs(sample); absSample > blockPeak {
			blockPeak = absSample
		}
	}

	decayPerSample := pm.decayRate / pm.sampleRate / 20.0 * math.Log(10)
	pm.peak *= math.Exp(-decayPerSample * float64(len(samples)))

	if blockPeak > pm.peak {
		pm.peak = blockPeak
	}
}

// GetPeakDB returns the current peak level in decibels.
func (pm *PeakMeter) GetPeakDB() float64 {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.peak > 0 {
		return 20.0 * math.Log10(pm.peak)
	}
	return -math.Inf(1)
}

// RMSMeter tracks a sliding-window RMS level via a running sum, so
// GetRMSDB costs O(1) regardless of window size.
type RMSMeter struct {
	windowSize int
	buffer     []float64
	writePos   int
	sum        float64
	count      int
	mu         sync.Mutex
}

// NewRMSMeter builds an RMS meter averaging over windowSizeSamples.
func NewRMSMeter(windowSizeSamples int) *RMSMeter {
	return &RMSMeter{
		windowSize: windowSizeSamples,
		buffer:     make([]float64, windowSizeSamples),
	}
}

// Process folds new samples into the running sum, evicting the oldest
// sample in the window for each one added.
func (rm *RMSMeter) Process(samples []float64) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, sample := range samples {
		oldValue := rm.buffer[rm.writePos]
		rm.sum -= oldValue * oldValue

		rm.buffer[rm.writePos] = sample
		rm.sum += sample * sample

		rm.writePos = (rm.writePos + 1) % rm.windowSize
		if rm.count < rm.windowSize {
			rm.count++
		}
	}
}

// GetRMSDB returns the current RMS level in decibels.
func (rm *RMSMeter) GetRMSDB() float64 {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.count == 0 {
		return -math.Inf(1)
	}
	rms := math.Sqrt(rm.sum / float64(rm.count))
	if rms > 0 {
		return 20.0 * math.Log10(rms)
	}
	return -math.Inf(1)
}
