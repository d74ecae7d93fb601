// Package params holds the effect parameters shared between the control
// loop and the audio callback.
//
// Every field is a single atomic scalar. The control loop is the only
// writer of each field; the audio callback only reads. No locks are taken
// and a reader always sees the last value written, never a partial one.
package params

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
)

const (
	MinMix = 0.0
	MaxMix = 1.0

	MinNoise = 0
	MaxNoise = 60

	MinDensity = 0
	MaxDensity = 100

	MinFeedback = 0.0
	// MaxFeedback keeps the loop gain of the feedback delay network below
	// unity.
	MaxFeedback = 0.95

	MinDelayMs = 1
	MaxDelayMs = 300
)

// Defaults at power-on.
const (
	DefaultMix      = 0.5
	DefaultNoise    = 20
	DefaultDensity  = 5
	DefaultFeedback = 0.0
	DefaultDelayMs  = 200
)

// Snapshot is a consistent-per-field copy of the parameters.
type Snapshot struct {
	Mix       float64
	Noise     int
	Density   int
	Feedback  float64
	DelayMs   int
	SeedEpoch uint64
}

// Params is the shared parameter block. The zero value is not ready for
// use; call New.
type Params struct {
	mix       atomic.Uint64 // float64 bits
	feedback  atomic.Uint64 // float64 bits
	noise     atomic.Int32
	density   atomic.Int32
	delayMs   atomic.Int32
	seedEpoch atomic.Uint64
}

// New returns parameters initialized to the power-on defaults.
func New() *Params {
	p := &Params{}
	p.SetMix(DefaultMix)
	p.SetNoise(DefaultNoise)
	p.SetDensity(DefaultDensity)
	p.SetFeedback(DefaultFeedback)
	p.SetDelayMs(DefaultDelayMs)
	return p
}

// SetMix stores mix clamped to [0, 1].
func (p *Params) SetMix(v float64) {
	p.mix.Store(math.Float64bits(core.Clamp(v, MinMix, MaxMix)))
}

// SetNoise stores the noise amount clamped to [0, 60].
func (p *Params) SetNoise(v int) {
	p.noise.Store(int32(core.ClampInt(v, MinNoise, MaxNoise)))
}

// SetDensity stores the density clamped to [0, 100].
func (p *Params) SetDensity(v int) {
	p.density.Store(int32(core.ClampInt(v, MinDensity, MaxDensity)))
}

// SetFeedback stores the feedback gain clamped to [0, MaxFeedback].
func (p *Params) SetFeedback(v float64) {
	p.feedback.Store(math.Float64bits(core.Clamp(v, MinFeedback, MaxFeedback)))
}

// SetDelayMs stores the delay time clamped to [1, 300] ms.
func (p *Params) SetDelayMs(v int) {
	p.delayMs.Store(int32(core.ClampInt(v, MinDelayMs, MaxDelayMs)))
}

// BumpSeedEpoch requests a reseed of the audio-side noise source and
// returns the new epoch.
func (p *Params) BumpSeedEpoch() uint64 {
	return p.seedEpoch.Add(1)
}

func (p *Params) Mix() float64      { return math.Float64frombits(p.mix.Load()) }
func (p *Params) Noise() int        { return int(p.noise.Load()) }
func (p *Params) Density() int      { return int(p.density.Load()) }
func (p *Params) Feedback() float64 { return math.Float64frombits(p.feedback.Load()) }
func (p *Params) DelayMs() int      { return int(p.delayMs.Load()) }
func (p *Params) SeedEpoch() uint64 { return p.seedEpoch.Load() }

// Snapshot loads every field once.
func (p *Params) Snapshot() Snapshot {
	return Snapshot{
		Mix:       p.Mix(),
		Noise:     p.Noise(),
		Density:   p.Density(),
		Feedback:  p.Feedback(),
		DelayMs:   p.DelayMs(),
		SeedEpoch: p.SeedEpoch(),
	}
}
