package envelope

import "testing"

func TestADSRStages(t *testing.T) {
	e := New(48000.0)
	e.SetADSR(0.001, 0.001, 0.5, 0.001)

	if e.GetStage() != StageIdle {
		t.Fatalf("expected idle at creation, got %d", e.GetStage())
	}

	e.Trigger()
	if e.GetStage() != StageAttack {
		t.Fatalf("expected attack after trigger, got %d", e.GetStage())
	}

	var reachedSustain bool
	for i := 0; i < 10000; i++ {
		e.Next()
		if e.GetStage() == StageSustain {
			reachedSustain = true
			break
		}
	}
	if !reachedSustain {
		t.Fatal("envelope never reached sustain")
	}

	e.Release()
	if e.GetStage() != StageRelease {
		t.Fatalf("expected release after Release(), got %d", e.GetStage())
	}

	var reachedIdle bool
	for i := 0; i < 10000; i++ {
		if e.Next() == 0 && e.GetStage() == StageIdle {
			reachedIdle = true
			break
		}
	}
	if !reachedIdle {
		t.Fatal("envelope never returned to idle after release")
	}
}

func TestADSRReset(t *testing.T) {
	e := New(48000.0)
	e.Trigger()
	e.Next()
	e.Reset()

	if e.GetStage() != StageIdle {
		t.Fatalf("expected idle after Reset, got %d", e.GetStage())
	}
	if v := e.Next(); v != 0 {
		t.Errorf("expected 0 output after Reset, got %f", v)
	}
}

func TestADSRSustainLevel(t *testing.T) {
	e := New(48000.0)
	e.SetADSR(0.0001, 0.0001, 0.3, 0.1)
	e.Trigger()

	var v float32
	for i := 0; i < 5000; i++ {
		v = e.Next()
		if e.GetStage() == StageSustain {
			break
		}
	}
	if v < 0.29 || v > 0.31 {
		t.Errorf("sustain level mismatch: got %f, want ~0.3", v)
	}
}
