package control

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-chaosdelay/pedal/ladder"
	"github.com/cwbudde/algo-chaosdelay/pedal/params"
)

// PotID identifies a pot on the surface.
type PotID int

const (
	PotDelay PotID = iota
	PotFeedback
	PotNoise
	PotDensity
	PotMix
	NumPots
)

func (id PotID) String() string {
	switch id {
	case PotDelay:
		return "delay"
	case PotFeedback:
		return "feedback"
	case PotNoise:
		return "noise"
	case PotDensity:
		return "density"
	case PotMix:
		return "mix"
	default:
		return fmt.Sprintf("pot(%d)", int(id))
	}
}

// ButtonID identifies a button on the surface.
type ButtonID int

const (
	// ButtonReseed raises the chaos level.
	ButtonReseed ButtonID = iota
	// ButtonReset clears the chaos level.
	ButtonReset
	NumButtons
)

func (id ButtonID) String() string {
	switch id {
	case ButtonReseed:
		return "reseed"
	case ButtonReset:
		return "reset"
	default:
		return fmt.Sprintf("button(%d)", int(id))
	}
}

// Surface is the sampled control hardware. Pot returns a raw reading
// nominally in [0, 1023]; Pressed returns the raw, undebounced state.
type Surface interface {
	Pot(id PotID) int
	Pressed(id ButtonID) bool
}

// Network receives the delay network settings.
type Network interface {
	SetDelayTime(ms float64)
	SetFeedback(gain float64)
}

// Telemetry receives one snapshot per iteration. Emit must not block.
type Telemetry interface {
	Emit(s Snapshot)
}

// PeakMeter reports the output peak per channel since the last call.
type PeakMeter interface {
	TakePeak(ch int) float64
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper) error

// WithDebounce sets the minimum interval between accepted button edges.
func WithDebounce(d time.Duration) MapperOption {
	return func(m *Mapper) error {
		if d < 0 {
			return fmt.Errorf("control debounce must be >= 0: %s", d)
		}
		m.debounce = d
		return nil
	}
}

// WithTelemetry attaches a telemetry sink.
func WithTelemetry(t Telemetry) MapperOption {
	return func(m *Mapper) error {
		m.telemetry = t
		return nil
	}
}

// WithPeakMeter attaches the output peak source reported in snapshots.
func WithPeakMeter(pm PeakMeter) MapperOption {
	return func(m *Mapper) error {
		m.meter = pm
		return nil
	}
}

// Mapper runs one control iteration at a time. It is the only writer of
// the shared parameters.
type Mapper struct {
	surface   Surface
	params    *params.Params
	ladder    *ladder.Ladder
	network   Network
	telemetry Telemetry
	meter     PeakMeter

	debounce  time.Duration
	gates     [NumButtons]*EdgeGate
	iteration atomic.Uint64
}

// NewMapper wires a mapper. network may be nil when nothing consumes the
// delay settings.
func NewMapper(s Surface, p *params.Params, l *ladder.Ladder, network Network, opts ...MapperOption) (*Mapper, error) {
	if s == nil || p == nil || l == nil {
		return nil, fmt.Errorf("control mapper requires surface, params and ladder")
	}
	m := &Mapper{
		surface:  s,
		params:   p,
		ladder:   l,
		network:  network,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	for i := range m.gates {
		m.gates[i] = NewEdgeGate(m.debounce)
	}
	return m, nil
}

// Update runs one iteration sampled at now and returns its snapshot.
func (m *Mapper) Update(now time.Time) Snapshot {
	if m.gates[ButtonReseed].Update(m.surface.Pressed(ButtonReseed), now) {
		m.ladder.Raise()
	}
	if m.gates[ButtonReset].Update(m.surface.Pressed(ButtonReset), now) {
		m.ladder.Reset()
	}

	m.params.SetDelayMs(MapDelay(m.surface.Pot(PotDelay)))
	m.params.SetFeedback(MapFeedback(m.surface.Pot(PotFeedback)))
	m.params.SetNoise(MapNoise(m.surface.Pot(PotNoise)))
	m.params.SetDensity(MapDensity(m.surface.Pot(PotDensity)))
	m.params.SetMix(MapMix(m.surface.Pot(PotMix)))

	if m.network != nil {
		ForwardNetwork(m.network, m.params)
	}

	m.iteration.Add(1)
	snap := m.snapshot()
	if m.telemetry != nil {
		m.telemetry.Emit(snap)
	}
	return snap
}

// Run calls Update every interval until ctx is done.
func (m *Mapper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("control interval must be > 0: %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			m.Update(now)
		}
	}
}

// Iterations returns the number of completed iterations. It is safe to call
// while Run is active.
func (m *Mapper) Iterations() uint64 { return m.iteration.Load() }

func (m *Mapper) snapshot() Snapshot {
	p := m.params.Snapshot()
	s := Snapshot{
		Iteration: m.iteration.Load(),
		DelayMs:   p.DelayMs,
		Feedback:  p.Feedback,
		Noise:     p.Noise,
		Density:   p.Density,
		Mix:       p.Mix,
		Level:     m.ladder.Level(),
	}
	if m.meter != nil {
		s.PeakL = m.meter.TakePeak(0)
		s.PeakR = m.meter.TakePeak(1)
	}
	return s
}

// ForwardNetwork clamps the delay time and feedback from p and forwards
// them to n. The forwarded gain never exceeds params.MaxFeedback.
func ForwardNetwork(n Network, p *params.Params) {
	delayMs := min(max(p.DelayMs(), params.MinDelayMs), params.MaxDelayMs)
	gain := min(max(p.Feedback(), params.MinFeedback), params.MaxFeedback)
	n.SetDelayTime(float64(delayMs))
	n.SetFeedback(gain)
}
