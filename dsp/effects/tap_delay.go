package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
	"github.com/cwbudde/algo-chaosdelay/dsp/delay"
)

const (
	defaultTapCount          = 2
	defaultTapMaxSeconds     = 0.3
	defaultTapSmoothingMs    = 10.0
	maxTapCount              = 8
	minTapSmoothingMs        = 0.1
	maxTapSmoothingMs        = 1000.0
	tapSnapThresholdSamples  = 1e-6
	tapDelayInterpGuardWidth = 4
)

// TapDelayOption mutates tap delay construction parameters.
type TapDelayOption func(*tapDelayConfig) error

type tapDelayConfig struct {
	taps        int
	maxSeconds  float64
	smoothingMs float64
	mode        delay.Option
}

func defaultTapDelayConfig() tapDelayConfig {
	return tapDelayConfig{
		taps:        defaultTapCount,
		maxSeconds:  defaultTapMaxSeconds,
		smoothingMs: defaultTapSmoothingMs,
	}
}

// WithTapCount sets the number of read taps in [1, 8].
func WithTapCount(n int) TapDelayOption {
	return func(cfg *tapDelayConfig) error {
		if n < 1 || n > maxTapCount {
			return fmt.Errorf("tap delay tap count must be in [1, %d]: %d", maxTapCount, n)
		}
		cfg.taps = n
		return nil
	}
}

// WithTapMaxTime sets the longest reachable delay in seconds.
func WithTapMaxTime(seconds float64) TapDelayOption {
	return func(cfg *tapDelayConfig) error {
		if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("tap delay max time must be > 0: %f", seconds)
		}
		cfg.maxSeconds = seconds
		return nil
	}
}

// WithTapSmoothing sets the time constant of the tap time smoother in ms.
func WithTapSmoothing(ms float64) TapDelayOption {
	return func(cfg *tapDelayConfig) error {
		if ms < minTapSmoothingMs || ms > maxTapSmoothingMs || math.IsNaN(ms) {
			return fmt.Errorf("tap delay smoothing must be in [%g, %g]: %f",
				minTapSmoothingMs, maxTapSmoothingMs, ms)
		}
		cfg.smoothingMs = ms
		return nil
	}
}

// WithTapInterpolation selects the fractional read mode of the line.
func WithTapInterpolation(opt delay.Option) TapDelayOption {
	return func(cfg *tapDelayConfig) error {
		cfg.mode = opt
		return nil
	}
}

type tap struct {
	current float64 // samples
	target  float64 // samples
}

// TapDelay is a multi-tap delay over a single delay line. Each tap has its
// own delay time which glides toward its target with a one-pole smoother,
// so pot movement does not click. TapDelay has no internal feedback path;
// regeneration is the job of the surrounding graph.
type TapDelay struct {
	sampleRate float64
	maxSamples float64
	smoothCoef float64
	smoothMs   float64

	line *delay.Line
	taps []tap
}

// NewTapDelay creates a tap delay with optional configuration overrides.
func NewTapDelay(sampleRate float64, opts ...TapDelayOption) (*TapDelay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("tap delay sample rate must be > 0: %f", sampleRate)
	}

	cfg := defaultTapDelayConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	maxSamples := math.Ceil(cfg.maxSeconds * sampleRate)

	var lineOpts []delay.Option
	if cfg.mode != nil {
		lineOpts = append(lineOpts, cfg.mode)
	}
	line, err := delay.New(int(maxSamples)+tapDelayInterpGuardWidth, lineOpts...)
	if err != nil {
		return nil, err
	}

	d := &TapDelay{
		sampleRate: sampleRate,
		maxSamples: maxSamples,
		smoothMs:   cfg.smoothingMs,
		line:       line,
		taps:       make([]tap, cfg.taps),
	}
	d.updateSmoothing()
	for i := range d.taps {
		d.taps[i] = tap{current: 1, target: 1}
	}
	return d, nil
}

// SetTime sets the delay of tap i in seconds and snaps to it immediately.
func (d *TapDelay) SetTime(i int, seconds float64) error {
	samples, err := d.toSamples(i, seconds)
	if err != nil {
		return err
	}
	d.taps[i] = tap{current: samples, target: samples}
	return nil
}

// SetTargetTime sets the delay of tap i in seconds. The effective delay
// glides toward it while samples are processed.
func (d *TapDelay) SetTargetTime(i int, seconds float64) error {
	samples, err := d.toSamples(i, seconds)
	if err != nil {
		return err
	}
	d.taps[i].target = samples
	return nil
}

// SetTargetTimeClamped sets the target of every tap to seconds after
// clamping it to the reachable range. It never fails.
func (d *TapDelay) SetTargetTimeClamped(seconds float64) {
	samples := seconds * d.sampleRate
	if math.IsNaN(samples) || samples < 1 {
		samples = 1
	}
	if samples > d.maxSamples {
		samples = d.maxSamples
	}
	for i := range d.taps {
		d.taps[i].target = samples
	}
}

func (d *TapDelay) toSamples(i int, seconds float64) (float64, error) {
	if i < 0 || i >= len(d.taps) {
		return 0, fmt.Errorf("tap delay tap index must be in [0, %d]: %d", len(d.taps)-1, i)
	}
	maxSeconds := d.maxSamples / d.sampleRate
	if seconds <= 0 || seconds > maxSeconds || math.IsNaN(seconds) {
		return 0, fmt.Errorf("tap delay time must be in (0, %g]: %f", maxSeconds, seconds)
	}
	samples := seconds * d.sampleRate
	if samples < 1 {
		samples = 1
	}
	return samples, nil
}

// Taps returns the number of read taps.
func (d *TapDelay) Taps() int { return len(d.taps) }

// CurrentDelaySamples returns the effective delay of tap i in samples.
func (d *TapDelay) CurrentDelaySamples(i int) float64 { return d.taps[i].current }

// TargetDelaySamples returns the requested delay of tap i in samples.
func (d *TapDelay) TargetDelaySamples(i int) float64 { return d.taps[i].target }

// MaxDelaySamples returns the longest reachable delay in samples.
func (d *TapDelay) MaxDelaySamples() float64 { return d.maxSamples }

// SampleRate returns the sample rate in Hz.
func (d *TapDelay) SampleRate() float64 { return d.sampleRate }

// Reset clears the line and snaps every tap to its target.
func (d *TapDelay) Reset() {
	d.line.Reset()
	for i := range d.taps {
		d.taps[i].current = d.taps[i].target
	}
}

// ProcessBlock feeds in through the line. outs[t], when present and non-nil,
// receives tap t. Each output must be at least len(in) long. Taps are read
// before the write, so a delay of n samples yields the input from exactly n
// samples ago. Denormal-range input is stored as zero.
func (d *TapDelay) ProcessBlock(in []float64, outs ...[]float64) {
	for n, x := range in {
		for t := range d.taps {
			tp := &d.taps[t]
			if diff := tp.target - tp.current; math.Abs(diff) > tapSnapThresholdSamples {
				tp.current += diff * d.smoothCoef
			} else {
				tp.current = tp.target
			}
			if t < len(outs) && outs[t] != nil {
				outs[t][n] = d.line.ReadFractional(tp.current)
			}
		}
		d.line.Write(core.FlushDenormals(x))
	}
}

// ProcessInPlace runs tap 0 over buf in place.
func (d *TapDelay) ProcessInPlace(buf []float64) {
	d.ProcessBlock(buf, buf)
}

func (d *TapDelay) updateSmoothing() {
	d.smoothCoef = 1 - math.Exp(-1/(d.smoothMs*0.001*d.sampleRate))
}
