package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMixFanInSingleSourceIsUnscaled(t *testing.T) {
	src := []float32{0.5, -0.5, 1.0, -1.0}
	dst := make([]float32, 4)
	mixFanIn(dst, [][]float32{src}, 4)
	assert.Equal(t, src, dst)
}

func TestMixFanInNormalizesBySourceCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		frames := rapid.IntRange(1, 64).Draw(rt, "frames")

		sources := make([][]float32, n)
		for i := range sources {
			v := float32(rapid.Float64Range(-1, 1).Draw(rt, "v"))
			buf := make([]float32, frames)
			for j := range buf {
				buf[j] = v
			}
			sources[i] = buf
		}

		dst := make([]float32, frames)
		mixFanIn(dst, sources, frames)

		var sum float32
		for _, src := range sources {
			sum += src[0]
		}
		want := sum / float32(n)
		for i, got := range dst {
			if diff := got - want; diff > 1e-4 || diff < -1e-4 {
				rt.Fatalf("frame %d: got %v want %v", i, got, want)
			}
		}
	})
}

func TestMixFanInZeroSourcesProducesSilence(t *testing.T) {
	dst := []float32{1, 1, 1}
	mixFanIn(dst, nil, 3)
	assert.Equal(t, []float32{0, 0, 0}, dst)
}
