package modules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 48000.0

func impulse(n int) []float32 {
	buf := make([]float32, n)
	buf[0] = 1
	return buf
}

func TestVCAAppliesLevel(t *testing.T) {
	cases := []struct {
		name  string
		level float64
		want  float32
	}{
		{"unity", 1.0, 1.0},
		{"half", 0.5, 0.5},
		{"silent", 0.0, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := newVCA("vca1", fmt.Sprintf("level=%g", tc.level), testSampleRate)
			require.NoError(t, err)
			v := m.(*VCA)
			require.True(t, v.Params.Set("level", tc.level))

			in := []float32{1, 1, 1, 1}
			out := make([]float32, 4)
			v.ProcessAudio(in, out, 4)

			for _, s := range out {
				assert.InDelta(t, float64(tc.want), float64(s), 0.01)
			}
		})
	}
}

func TestDelayFeedsBackSilenceToSilence(t *testing.T) {
	m, err := newDelay("d1", "", testSampleRate)
	require.NoError(t, err)
	d := m.(*Delay)

	in := make([]float32, 256)
	out := make([]float32, 256)
	d.ProcessAudio(in, out, 256)

	for _, s := range out {
		assert.Equal(t, float32(0), s)
	}
}

func TestDelayProducesNoNaNsOnImpulse(t *testing.T) {
	m, err := newDelay("d2", "time_ms=100,feedback=0.5,mix=1.0", testSampleRate)
	require.NoError(t, err)
	d := m.(*Delay)

	in := impulse(4096)
	out := make([]float32, 4096)
	d.ProcessAudio(in, out, 4096)

	for i, s := range out {
		require.False(t, isNaNOrInf(s), "sample %d is NaN/Inf", i)
	}
}

func TestReverbStaysBounded(t *testing.T) {
	m, err := newReverb("r1", "room_size=0.9,mix=0.5", testSampleRate)
	require.NoError(t, err)
	r := m.(*Reverb)

	in := impulse(2048)
	out := make([]float32, 2048)
	r.ProcessAudio(in, out, 2048)

	for i, s := range out {
		require.False(t, isNaNOrInf(s), "sample %d is NaN/Inf", i)
		assert.LessOrEqual(t, float64(s), 2.0)
		assert.GreaterOrEqual(t, float64(s), -2.0)
	}
}

func TestCompressorReducesGainAboveThreshold(t *testing.T) {
	m, err := newCompressor("c1", "threshold=-20,ratio=4", testSampleRate)
	require.NoError(t, err)
	c := m.(*Compressor)

	in := make([]float32, 512)
	for i := range in {
		in[i] = 0.9
	}
	out := make([]float32, 512)
	c.ProcessAudio(in, out, 512)

	assert.Less(t, float64(out[len(out)-1]), float64(in[len(in)-1]))
}

func TestLimiterNeverExceedsCeiling(t *testing.T) {
	m, err := newLimiter("l1", "ceiling=-6", testSampleRate)
	require.NoError(t, err)
	l := m.(*Limiter)

	in := make([]float32, 2048)
	for i := range in {
		in[i] = 1.0
	}
	out := make([]float32, 2048)
	l.ProcessAudio(in, out, 2048)

	ceilingLinear := float32(0.5011872) // -6 dB
	for i, s := range out[len(out)/2:] {
		require.LessOrEqual(t, s, ceilingLinear+0.05, "sample %d exceeds ceiling", i)
	}
}

func TestSVFFilterModeRange(t *testing.T) {
	m, err := newSVFFilter("f1", "cutoff=500,mode=0.25", testSampleRate)
	require.NoError(t, err)
	f := m.(*SVFFilter)

	in := impulse(1024)
	out := make([]float32, 1024)
	f.ProcessAudio(in, out, 1024)

	for i, s := range out {
		require.False(t, isNaNOrInf(s), "sample %d is NaN/Inf", i)
	}
}

func TestMeterPassesAudioThroughUnchanged(t *testing.T) {
	m, err := newMeter("m1", "", testSampleRate)
	require.NoError(t, err)
	mt := m.(*Meter)

	in := []float32{0.1, -0.2, 0.3, -0.4}
	out := make([]float32, 4)
	mt.ProcessAudio(in, out, 4)

	assert.Equal(t, in, out)
	assert.Contains(t, mt.DrawUI(0, 0), "c_meter")
}

func TestBarkBankStaysBounded(t *testing.T) {
	m, err := newBarkBank("bb1", "center=0.5,width=0.3,tilt=0.5,drive=0.5", testSampleRate)
	require.NoError(t, err)
	bb := m.(*BarkBank)

	in := impulse(4096)
	out := make([]float32, 4096)
	bb.ProcessAudio(in, out, 4096)

	for i, s := range out {
		require.False(t, isNaNOrInf(s), "sample %d is NaN/Inf", i)
	}
}

func TestVocoderCarrierEnvelopeFollowsModulator(t *testing.T) {
	m, err := newVocoder("v1", "wet=1,dry=0", testSampleRate)
	require.NoError(t, err)
	v := m.(*Vocoder)

	frames := 4096
	silence := make([]float32, frames)
	carrier := make([]float32, frames)
	for i := range carrier {
		carrier[i] = 0.8
	}

	out := make([]float32, frames)
	v.ProcessMultiAudio([][]float32{silence, carrier}, out, frames)

	for i, s := range out {
		require.False(t, isNaNOrInf(s), "sample %d is NaN/Inf", i)
	}
	// No modulator energy means the band envelopes stay near zero, so
	// the carrier should come out heavily attenuated relative to its
	// own amplitude.
	var maxAbs float32
	for _, s := range out[frames/2:] {
		if s < 0 {
			s = -s
		}
		if s > maxAbs {
			maxAbs = s
		}
	}
	assert.Less(t, float64(maxAbs), 0.8)
}

func isNaNOrInf(f float32) bool {
	return f != f || f > 1e30 || f < -1e30
}
