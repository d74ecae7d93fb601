// Package mixer blends the clean and dirty block of each channel once per
// audio period: the dirty block is degraded, crossfaded against the clean
// one, clipped, and handed downstream.
package mixer

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
	"github.com/cwbudde/algo-chaosdelay/dsp/effects"
	"github.com/cwbudde/algo-chaosdelay/pedal/engine"
	"github.com/cwbudde/algo-chaosdelay/pedal/params"
)

// Source offers the tap blocks of one period.
type Source interface {
	Ready(ch int, tap engine.Tap) bool
	Acquire(ch int, tap engine.Tap) *engine.Block
	Release(ch int, tap engine.Tap)
}

// Sink receives the mixed block of a channel. It must not retain block.
type Sink interface {
	Submit(ch int, block *engine.Block)
}

const defaultSeed = 0x6d1e

// Option configures a Mixer.
type Option func(*config) error

type config struct {
	blockSize int
	seed      uint64
}

// WithBlockSize sets the size of the output blocks.
func WithBlockSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("mixer block size must be > 0: %d", n)
		}
		cfg.blockSize = n
		return nil
	}
}

// WithSeed sets the base seed of the noise source. Each reseed epoch is
// added to it.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// Stats are cumulative per-channel counters.
type Stats struct {
	Processed [engine.Channels]uint64
	Skipped   [engine.Channels]uint64
	Reseeds   uint64
}

// Mixer runs in the audio context. Only TakePeak and Stats may be called
// from other goroutines.
type Mixer struct {
	params   *params.Params
	source   Source
	sink     Sink
	degrader *effects.Degrader

	out     [engine.Channels]*engine.Block
	scratch []float64

	baseSeed  uint64
	seedEpoch uint64

	peaks     [engine.Channels]atomic.Uint64 // float64 bits, max since last TakePeak
	processed [engine.Channels]atomic.Uint64
	skipped   [engine.Channels]atomic.Uint64
	reseeds   atomic.Uint64
}

// New creates a mixer reading p and moving blocks from src to sink.
func New(p *params.Params, src Source, sink Sink, opts ...Option) (*Mixer, error) {
	cfg := config{blockSize: core.DefaultBlockSize, seed: defaultSeed}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	snap := p.Snapshot()
	deg, err := effects.NewDegrader(
		effects.WithDegraderSeed(cfg.seed+snap.SeedEpoch),
		effects.WithDegraderNoiseAmount(snap.Noise),
		effects.WithDegraderDensity(snap.Density),
	)
	if err != nil {
		return nil, err
	}

	m := &Mixer{
		params:    p,
		source:    src,
		sink:      sink,
		degrader:  deg,
		scratch:   make([]float64, cfg.blockSize),
		baseSeed:  cfg.seed,
		seedEpoch: snap.SeedEpoch,
	}
	for ch := range m.out {
		m.out[ch] = engine.NewBlock(cfg.blockSize)
	}
	return m, nil
}

// Process mixes every channel whose clean and dirty blocks are both ready.
// A channel missing either block is skipped for this period and neither
// block is consumed.
func (m *Mixer) Process() {
	snap := m.params.Snapshot()
	if snap.SeedEpoch != m.seedEpoch {
		m.seedEpoch = snap.SeedEpoch
		m.degrader.Reseed(m.baseSeed + snap.SeedEpoch)
		m.reseeds.Add(1)
	}
	m.degrader.SetAmounts(snap.Noise, snap.Density)

	for ch := range engine.Channels {
		if !m.source.Ready(ch, engine.Clean) || !m.source.Ready(ch, engine.Dirty) {
			m.skipped[ch].Add(1)
			continue
		}

		clean := m.source.Acquire(ch, engine.Clean)
		dirty := m.source.Acquire(ch, engine.Dirty)
		out := m.out[ch]

		m.mix(out.Samples(), clean.Samples(), dirty.Samples(), snap.Mix)
		out.Seq = clean.Seq
		m.sink.Submit(ch, out)

		m.source.Release(ch, engine.Clean)
		m.source.Release(ch, engine.Dirty)

		m.raisePeak(ch, vecmath.MaxAbs(out.Samples()))
		m.processed[ch].Add(1)
	}
}

// mix computes out = clamp((1-mix)*clean + mix*Degrade(dirty), -1, 1).
func (m *Mixer) mix(out, clean, dirty []float64, mix float64) {
	n := min(len(out), len(clean), len(dirty), len(m.scratch))
	out, clean, dirty = out[:n], clean[:n], dirty[:n]
	d := m.scratch[:n]

	m.degrader.ProcessBlock(d, dirty)
	vecmath.ScaleBlock(out, clean, 1-mix)
	vecmath.ScaleBlock(d, d, mix)
	vecmath.AddBlockInPlace(out, d)

	for i, v := range out {
		out[i] = core.Clamp(v, -1, 1)
	}
}

func (m *Mixer) raisePeak(ch int, peak float64) {
	for {
		old := m.peaks[ch].Load()
		if peak <= math.Float64frombits(old) {
			return
		}
		if m.peaks[ch].CompareAndSwap(old, math.Float64bits(peak)) {
			return
		}
	}
}

// TakePeak returns the output peak of ch since the previous call and
// resets it.
func (m *Mixer) TakePeak(ch int) float64 {
	if ch < 0 || ch >= engine.Channels {
		return 0
	}
	return math.Float64frombits(m.peaks[ch].Swap(0))
}

// Stats returns the cumulative counters.
func (m *Mixer) Stats() Stats {
	var s Stats
	for ch := range engine.Channels {
		s.Processed[ch] = m.processed[ch].Load()
		s.Skipped[ch] = m.skipped[ch].Load()
	}
	s.Reseeds = m.reseeds.Load()
	return s
}
