package delay

import "testing"

func TestLineReadWrite(t *testing.T) {
	sampleRate := 48000.0
	line := New(1.0, sampleRate)

	for i := 0; i < 10; i++ {
		line.Write(float32(i))
	}

	got := line.Read(5)
	want := float32(10 - 5)
	if got != want {
		t.Errorf("Read(5) = %f, want %f", got, want)
	}
}

func TestLineInterpolation(t *testing.T) {
	line := New(1.0, 48000.0)
	line.Write(0.0)
	line.Write(1.0)

	got := line.Read(0.5)
	if got < 0.4 || got > 0.6 {
		t.Errorf("Read(0.5) = %f, want ~0.5", got)
	}
}
