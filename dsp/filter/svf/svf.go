package svf

import (
	"fmt"
	"math"
)

const (
	defaultCutoffHz  = 500.0
	defaultResonance = 0.7

	// MinResonance and MaxResonance bound Q.
	MinResonance = 0.7
	MaxResonance = 5.0

	minCutoffHz     = 20.0
	maxCutoffFactor = 0.49
)

// Response selects which output ProcessBlock writes.
type Response int

const (
	Lowpass Response = iota
	Bandpass
	Highpass
)

func (r Response) String() string {
	switch r {
	case Lowpass:
		return "lowpass"
	case Bandpass:
		return "bandpass"
	case Highpass:
		return "highpass"
	default:
		return "unknown"
	}
}

// Option mutates filter construction parameters.
type Option func(*config) error

type config struct {
	cutoffHz  float64
	resonance float64
	response  Response
}

func defaultConfig() config {
	return config{
		cutoffHz:  defaultCutoffHz,
		resonance: defaultResonance,
		response:  Lowpass,
	}
}

// WithCutoffHz sets the corner frequency.
func WithCutoffHz(cutoffHz float64) Option {
	return func(cfg *config) error {
		if cutoffHz < minCutoffHz || math.IsNaN(cutoffHz) || math.IsInf(cutoffHz, 0) {
			return fmt.Errorf("svf: cutoff must be >= %g: %f", minCutoffHz, cutoffHz)
		}
		cfg.cutoffHz = cutoffHz
		return nil
	}
}

// WithResonance sets Q in [0.7, 5].
func WithResonance(q float64) Option {
	return func(cfg *config) error {
		if q < MinResonance || q > MaxResonance || math.IsNaN(q) {
			return fmt.Errorf("svf: resonance must be in [%g, %g]: %f", MinResonance, MaxResonance, q)
		}
		cfg.resonance = q
		return nil
	}
}

// WithResponse selects the output used by ProcessSample and the block
// methods.
func WithResponse(r Response) Option {
	return func(cfg *config) error {
		if r < Lowpass || r > Highpass {
			return fmt.Errorf("svf: invalid response: %d", r)
		}
		cfg.response = r
		return nil
	}
}

// State is the integrator state, for save/restore.
type State struct {
	IC1 float64
	IC2 float64
}

// Outputs holds the three simultaneous responses of one sample.
type Outputs struct {
	Low  float64
	Band float64
	High float64
}

// Filter is a mono TPT state-variable filter.
type Filter struct {
	sampleRate float64
	cutoffHz   float64
	resonance  float64
	response   Response

	k, a1, a2, a3 float64

	ic1, ic2 float64
}

// New creates a filter. The cutoff must be below 0.49 * sampleRate.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("svf: sample rate must be > 0: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Filter{
		sampleRate: sampleRate,
		response:   cfg.response,
	}
	if err := f.SetCutoffHz(cfg.cutoffHz); err != nil {
		return nil, err
	}
	if err := f.SetResonance(cfg.resonance); err != nil {
		return nil, err
	}
	return f, nil
}

// SetCutoffHz retunes the filter without touching its state.
func (f *Filter) SetCutoffHz(cutoffHz float64) error {
	limit := maxCutoffFactor * f.sampleRate
	if cutoffHz < minCutoffHz || cutoffHz > limit || math.IsNaN(cutoffHz) {
		return fmt.Errorf("svf: cutoff must be in [%g, %g]: %f", minCutoffHz, limit, cutoffHz)
	}
	f.cutoffHz = cutoffHz
	f.updateCoefficients()
	return nil
}

// SetResonance sets Q in [0.7, 5].
func (f *Filter) SetResonance(q float64) error {
	if q < MinResonance || q > MaxResonance || math.IsNaN(q) {
		return fmt.Errorf("svf: resonance must be in [%g, %g]: %f", MinResonance, MaxResonance, q)
	}
	f.resonance = q
	f.updateCoefficients()
	return nil
}

func (f *Filter) updateCoefficients() {
	if f.resonance == 0 {
		return
	}
	g := math.Tan(math.Pi * f.cutoffHz / f.sampleRate)
	f.k = 1 / f.resonance
	f.a1 = 1 / (1 + g*(g+f.k))
	f.a2 = g * f.a1
	f.a3 = g * f.a2
}

func (f *Filter) CutoffHz() float64   { return f.cutoffHz }
func (f *Filter) Resonance() float64  { return f.resonance }
func (f *Filter) SampleRate() float64 { return f.sampleRate }
func (f *Filter) Response() Response  { return f.response }

// Tick advances the filter by one sample and returns all three outputs.
func (f *Filter) Tick(x float64) Outputs {
	v3 := x - f.ic2
	v1 := f.a1*f.ic1 + f.a2*v3
	v2 := f.ic2 + f.a2*f.ic1 + f.a3*v3
	f.ic1 = 2*v1 - f.ic1
	f.ic2 = 2*v2 - f.ic2

	return Outputs{Low: v2, Band: v1, High: x - f.k*v1 - v2}
}

// ProcessSample returns the selected response for one sample.
func (f *Filter) ProcessSample(x float64) float64 {
	o := f.Tick(x)
	switch f.response {
	case Bandpass:
		return o.Band
	case Highpass:
		return o.High
	default:
		return o.Low
	}
}

// ProcessInPlace filters buf in place with the selected response.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// ProcessBlock filters src into dst with the selected response. dst must
// be at least len(src) long.
func (f *Filter) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

// State returns the integrator state.
func (f *Filter) State() State { return State{IC1: f.ic1, IC2: f.ic2} }

// SetState restores integrator state.
func (f *Filter) SetState(s State) {
	f.ic1 = s.IC1
	f.ic2 = s.IC2
}

// Reset clears the integrator state.
func (f *Filter) Reset() {
	f.ic1 = 0
	f.ic2 = 0
}
