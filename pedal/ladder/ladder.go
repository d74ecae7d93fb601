// Package ladder implements the chaos ladder: a bounded level driven by
// discrete press events, with a noise/density preset per level.
package ladder

import (
	"sync/atomic"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
	"github.com/cwbudde/algo-chaosdelay/pedal/params"
)

const (
	MinLevel = 0
	MaxLevel = 8
)

// Display receives the level after every transition.
type Display interface {
	SetLevel(level int)
}

// Preset returns the noise amount and density for a level:
// noise = clamp(20 + 5*level, 20, 60), density = clamp(5 + 10*level, 5, 100).
func Preset(level int) (noise, density int) {
	noise = core.ClampInt(20+5*level, 20, params.MaxNoise)
	density = core.ClampInt(5+10*level, 5, params.MaxDensity)
	return noise, density
}

// Ladder tracks the chaos level. Transitions are driven by the control
// loop only; Level may be read from any goroutine.
type Ladder struct {
	level   atomic.Int32
	params  *params.Params
	display Display
}

// New returns a ladder at level 0. display may be nil.
func New(p *params.Params, display Display) *Ladder {
	return &Ladder{params: p, display: display}
}

// Raise increments the level, saturating at 8.
func (l *Ladder) Raise() int {
	return l.transition(min(l.Level()+1, MaxLevel))
}

// Reset sets the level to 0.
func (l *Ladder) Reset() int {
	return l.transition(MinLevel)
}

// Level returns the current level.
func (l *Ladder) Level() int { return int(l.level.Load()) }

// transition runs even when the level does not change, so the preset is
// rewritten and the display refreshed on every edge.
func (l *Ladder) transition(level int) int {
	l.level.Store(int32(level))

	noise, density := Preset(level)
	l.params.SetNoise(noise)
	l.params.SetDensity(density)
	l.params.BumpSeedEpoch()

	if l.display != nil {
		l.display.SetLevel(level)
	}
	return level
}
