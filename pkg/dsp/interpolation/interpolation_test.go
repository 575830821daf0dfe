package interpolation

import "testing"

func TestLinear(t *testing.T) {
	if got := Linear(0.0, 10.0, 0.5); got != 5.0 {
		t.Errorf("Linear(0, 10, 0.5) = %f, want 5.0", got)
	}
	if got := Linear(2.0, 2.0, 0.3); got != 2.0 {
		t.Errorf("Linear(2, 2, 0.3) = %f, want 2.0", got)
	}
	if got := Linear(0.0, 1.0, 0.0); got != 0.0 {
		t.Errorf("Linear(0, 1, 0) = %f, want 0.0", got)
	}
	if got := Linear(0.0, 1.0, 1.0); got != 1.0 {
		t.Errorf("Linear(0, 1, 1) = %f, want 1.0", got)
	}
}
