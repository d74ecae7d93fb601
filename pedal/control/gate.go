package control

import "time"

// DefaultDebounce is the minimum time between accepted button transitions.
const DefaultDebounce = 50 * time.Millisecond

// EdgeGate debounces one button without blocking. A transition of the raw
// state is accepted only when at least the gate interval has passed since
// the previous accepted transition; rejected transitions are bounce and
// are dropped.
type EdgeGate struct {
	interval time.Duration
	latched  bool
	last     time.Time
	primed   bool
}

// NewEdgeGate returns a gate in the released state.
func NewEdgeGate(interval time.Duration) *EdgeGate {
	if interval < 0 {
		interval = 0
	}
	return &EdgeGate{interval: interval}
}

// Update feeds the raw pressed state sampled at now. It reports true
// exactly once per accepted press.
func (g *EdgeGate) Update(pressed bool, now time.Time) bool {
	if pressed == g.latched {
		return false
	}
	if g.primed && now.Sub(g.last) < g.interval {
		return false
	}
	g.latched = pressed
	g.last = now
	g.primed = true
	return pressed
}

// Latched reports the debounced state.
func (g *EdgeGate) Latched() bool { return g.latched }
