// Package analysis holds the level meters behind c_meter: a decaying
// peak meter and a sliding-window RMS meter, both thread-safe since the
// audio thread writes via Process while the display goroutine reads
// via the GetXDB accessors.
//
//	pm := analysis.NewPeakMeter(sampleRate)
//	rm := analysis.NewRMSMeter(int(sampleRate * 0.3))
//	pm.Process(samples)
//	rm.Process(samples)
//	peakDB, rmsDB := pm.GetPeakDB(), rm.GetRMSDB()
package analysis
