package param

import "hash/fnv"

// Intern maps a parameter name to a stable numeric ID, computed once at
// patch parse time rather than re-hashed on every lookup. The mapping
// only needs to be stable for one process lifetime.
func Intern(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return h.Sum32()
}

// Set is the parameter bundle owned by one module: an authoritative
// Registry of plain-range values, a one-pole Smoother per parameter used
// for block-rate (UI/OSC/MIDI) smoothing, and a display-mirror of the
// last effective value the UI is allowed to read. All three are meant to
// be guarded by one external lock — the owning module's lock — never by
// a lock of their own.
type Set struct {
	reg       *Registry
	smoothers map[uint32]*Smoother
	mirror    map[uint32]float64
	blockRate float64
}

// NewSet creates a parameter bundle. blockSmoothingRate is the retention
// coefficient applied once per block to UI/OSC/MIDI-sourced values before
// they reach DSP; a typical value is 0.9–0.995.
func NewSet(blockSmoothingRate float64) *Set {
	return &Set{
		reg:       NewRegistry(),
		smoothers: make(map[uint32]*Smoother),
		mirror:    make(map[uint32]float64),
		blockRate: blockSmoothingRate,
	}
}

// Declare registers a plain-range parameter addressed by name.
func (s *Set) Declare(name string, min, max, def float64) {
	id := Intern(name)
	p := New(id, name).Range(min, max).Default(def).Build()
	s.addBuilt(p)
}

// DeclareBuilt registers a parameter from a fully configured Builder (one
// of the FrequencyParameter/TimeParameter/... helpers), keeping its
// formatter for engineering-unit display.
func (s *Set) DeclareBuilt(id uint32, b *Builder) {
	p := b.Build()
	p.ID = id
	s.addBuilt(p)
}

func (s *Set) addBuilt(p *Parameter) {
	_ = s.reg.Add(p)
	sm := NewSmoother(ExponentialSmoothing, s.blockRate)
	sm.Reset(p.GetPlainValue())
	s.smoothers[p.ID] = sm
	s.mirror[p.ID] = p.GetPlainValue()
}

// Has reports whether name was declared.
func (s *Set) Has(name string) bool {
	return s.reg.Get(Intern(name)) != nil
}

// Set stores the new authoritative value (clamped to the declared range)
// for a known parameter. Reports false for an unrecognized name so the
// caller can log-and-ignore ("unknown params accepted,
// routed, and may be ignored by the target").
func (s *Set) Set(name string, value float64) bool {
	p := s.reg.Get(Intern(name))
	if p == nil {
		return false
	}
	p.SetPlainValue(value)
	return true
}

// Get returns the authoritative plain value, or 0 for an unknown name.
func (s *Set) Get(name string) float64 {
	p := s.reg.Get(Intern(name))
	if p == nil {
		return 0
	}
	return p.GetPlainValue()
}

// Range returns the declared [lo, hi] for a parameter.
func (s *Set) Range(name string) (lo, hi float64) {
	p := s.reg.Get(Intern(name))
	if p == nil {
		return 0, 0
	}
	return p.Min, p.Max
}

// Clamp clamps a plain value to a declared parameter's range, independent
// of the Set's own authoritative value. Used for per-sample CV math.
func (s *Set) Clamp(name string, value float64) float64 {
	p := s.reg.Get(Intern(name))
	if p == nil {
		return value
	}
	if value < p.Min {
		return p.Min
	}
	if value > p.Max {
		return p.Max
	}
	return value
}

// SnapshotBlock pushes every parameter's current authoritative value into
// its smoother's target. Call once per block, under the module lock —
// this is the only place the audio thread touches the authoritative
// values directly.
func (s *Set) SnapshotBlock() {
	for id, sm := range s.smoothers {
		if p := s.reg.Get(id); p != nil {
			sm.SetTarget(p.GetPlainValue())
		}
	}
}

// Next advances one sample of the named parameter's smoother. Safe to
// call from the unlocked DSP inner loop; smoother state is touched only
// by the audio thread.
func (s *Set) Next(name string) float64 {
	if sm, ok := s.smoothers[Intern(name)]; ok {
		return sm.Next()
	}
	return s.Get(name)
}

// PublishMirror records the last effective value for UI display. Call
// under the module lock, after the unlocked DSP work completes.
func (s *Set) PublishMirror(name string, value float64) {
	s.mirror[Intern(name)] = value
}

// Mirror returns the last published effective value for UI display.
func (s *Set) Mirror(name string) float64 {
	return s.mirror[Intern(name)]
}

// Names returns the declared parameter names in declaration order.
func (s *Set) Names() []string {
	all := s.reg.All()
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = p.Name
	}
	return out
}
