package signal

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
)

// Shape selects the oscillator waveform.
type Shape int

const (
	// Sine is a continuous sine tone.
	Sine Shape = iota
	// Burst is a sine tone gated on for the first part of every period,
	// which makes delay repeats easy to hear.
	Burst
	// Noise is uniform white noise.
	Noise
)

func (s Shape) String() string {
	switch s {
	case Sine:
		return "sine"
	case Burst:
		return "burst"
	case Noise:
		return "noise"
	default:
		return "unknown"
	}
}

// ParseShape returns the shape named by s.
func ParseShape(s string) (Shape, error) {
	for _, shape := range []Shape{Sine, Burst, Noise} {
		if shape.String() == s {
			return shape, nil
		}
	}
	return 0, fmt.Errorf("unknown oscillator shape: %q", s)
}

// Option configures an Oscillator.
type Option func(*Oscillator) error

// WithShape sets the waveform.
func WithShape(shape Shape) Option {
	return func(o *Oscillator) error {
		if shape < Sine || shape > Noise {
			return fmt.Errorf("oscillator shape invalid: %d", shape)
		}
		o.shape = shape
		return nil
	}
}

// WithFrequency sets the tone frequency in Hz.
func WithFrequency(hz float64) Option {
	return func(o *Oscillator) error {
		if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
			return fmt.Errorf("oscillator frequency must be > 0: %f", hz)
		}
		o.freqHz = hz
		return nil
	}
}

// WithAmplitude sets the peak amplitude in [0, 1].
func WithAmplitude(amplitude float64) Option {
	return func(o *Oscillator) error {
		if amplitude < 0 || amplitude > 1 || math.IsNaN(amplitude) {
			return fmt.Errorf("oscillator amplitude must be in [0, 1]: %f", amplitude)
		}
		o.amplitude = amplitude
		return nil
	}
}

// WithBurst sets the gate period and the on time of the Burst shape.
func WithBurst(period, on float64) Option {
	return func(o *Oscillator) error {
		if period <= 0 || on <= 0 || on > period {
			return fmt.Errorf("oscillator burst must satisfy 0 < on <= period: on=%f period=%f", on, period)
		}
		o.burstPeriod = period
		o.burstOn = on
		return nil
	}
}

// WithSeed sets the noise seed.
func WithSeed(seed uint64) Option {
	return func(o *Oscillator) error {
		o.rng = rand.New(rand.NewPCG(seed, seed))
		return nil
	}
}

// Oscillator is a streaming block source used as test input.
type Oscillator struct {
	cfg core.ProcessorConfig

	shape       Shape
	freqHz      float64
	amplitude   float64
	burstPeriod float64 // seconds
	burstOn     float64 // seconds

	phase   float64 // radians
	elapsed int64   // samples
	rng     *rand.Rand
}

// NewOscillator creates an oscillator. It defaults to a 220 Hz sine at
// half scale.
func NewOscillator(coreOpts []core.ProcessorOption, opts ...Option) (*Oscillator, error) {
	o := &Oscillator{
		cfg:         core.ApplyProcessorOptions(coreOpts...),
		shape:       Sine,
		freqHz:      220,
		amplitude:   0.5,
		burstPeriod: 1,
		burstOn:     0.1,
		rng:         rand.New(rand.NewPCG(1, 1)),
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Config returns the processor configuration.
func (o *Oscillator) Config() core.ProcessorConfig { return o.cfg }

// Shape returns the waveform.
func (o *Oscillator) Shape() Shape { return o.shape }

// Fill writes the next len(dst) samples into dst.
func (o *Oscillator) Fill(dst []float64) {
	step := 2 * math.Pi * o.freqHz / o.cfg.SampleRate
	periodSamples := int64(o.burstPeriod * o.cfg.SampleRate)
	onSamples := int64(o.burstOn * o.cfg.SampleRate)

	for i := range dst {
		switch o.shape {
		case Noise:
			dst[i] = (o.rng.Float64()*2 - 1) * o.amplitude
		case Burst:
			if periodSamples > 0 && o.elapsed%periodSamples < onSamples {
				dst[i] = o.amplitude * math.Sin(o.phase)
			} else {
				dst[i] = 0
			}
		default:
			dst[i] = o.amplitude * math.Sin(o.phase)
		}

		o.phase += step
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
		o.elapsed++
	}
}

// Reset rewinds phase and the burst gate.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.elapsed = 0
}
