// Package delay holds the ring-buffer delay line behind the delay
// module's feedback effect.
package delay

// Line is a fixed-size circular buffer read with linear interpolation
// at an arbitrary fractional delay, sized once at construction for the
// maximum delay time a caller will ever request.
type Line struct {
	buffer     []float32
	bufferSize int
	writePos   int
	sampleRate float64
}

// New allocates a delay line long enough for maxDelaySeconds at sampleRate.
func New(maxDelaySeconds, sampleRate float64) *Line {
	bufferSize := int(maxDelaySeconds*sampleRate) + 1
	return &Line{
		buffer:     make([]float32, bufferSize),
		bufferSize: bufferSize,
		sampleRate: sampleRate,
	}
}

// Write advances the line by one sample.
func (d *Line) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= d.bufferSize {
		d.writePos = 0
	}
}

// Read returns the sample delaySamples behind the write head, linearly
// interpolated between the two nearest integer positions.
func (d *Line) Read(delaySamples float64) float32 {
	readPos := float64(d.writePos) - delaySamples
	if readPos < 0 {
		readPos += float64(d.bufferSize)
	}

	readPosInt := int(readPos)
	frac := float32(readPos - float64(readPosInt))

	s1 := d.buffer[readPosInt]
	s2 := d.buffer[(readPosInt+1)%d.bufferSize]

	return s1*(1.0-frac) + s2*frac
}
