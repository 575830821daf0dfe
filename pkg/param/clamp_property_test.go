package param

import (
	"testing"

	"pgregory.net/rapid"
)

// TestClampIsIdempotent checks that clamping an already-clamped value is
// a no-op: clamping any value twice must equal clamping it once.
func TestClampIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.Float64Range(-1000, 0).Draw(rt, "lo")
		hi := lo + rapid.Float64Range(0.001, 1000).Draw(rt, "span")
		value := rapid.Float64Range(-10000, 10000).Draw(rt, "value")

		s := NewSet(0.9)
		s.Declare("x", lo, hi, lo)

		once := s.Clamp("x", value)
		twice := s.Clamp("x", once)

		if once != twice {
			rt.Fatalf("Clamp not idempotent: once=%v twice=%v", once, twice)
		}
		if once < lo || once > hi {
			rt.Fatalf("Clamp escaped range [%v,%v]: got %v", lo, hi, once)
		}
	})
}

// TestClampUnknownNamePassesThrough covers the documented fallback: an
// undeclared parameter name clamps to the input value unchanged.
func TestClampUnknownNamePassesThrough(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		value := rapid.Float64Range(-1e6, 1e6).Draw(rt, "value")
		s := NewSet(0.9)
		if got := s.Clamp("missing", value); got != value {
			rt.Fatalf("expected passthrough %v, got %v", value, got)
		}
	})
}
