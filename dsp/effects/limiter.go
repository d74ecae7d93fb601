package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
)

const (
	defaultLimiterThresholdDB = -1.0
	defaultLimiterAttackMs    = 5.0
	defaultLimiterReleaseMs   = 100.0
	defaultLimiterHoldMs      = 50.0

	minLimiterThresholdDB = -24.0
	maxLimiterThresholdDB = 0.0
	minLimiterAttackMs    = 0.1
	maxLimiterAttackMs    = 1000.0
	minLimiterReleaseMs   = 1.0
	maxLimiterReleaseMs   = 5000.0
	minLimiterHoldMs      = 0.0
	maxLimiterHoldMs      = 5000.0

	// log2(10)/20 converts dB to log2 of linear gain.
	log2Of10Div20 = 0.166096404744368117393515971474
)

// LimiterOption mutates limiter construction parameters.
type LimiterOption func(*limiterConfig) error

type limiterConfig struct {
	thresholdDB float64
	attackMs    float64
	releaseMs   float64
	holdMs      float64
}

func defaultLimiterConfig() limiterConfig {
	return limiterConfig{
		thresholdDB: defaultLimiterThresholdDB,
		attackMs:    defaultLimiterAttackMs,
		releaseMs:   defaultLimiterReleaseMs,
		holdMs:      defaultLimiterHoldMs,
	}
}

// WithLimiterThreshold sets the ceiling in dBFS.
func WithLimiterThreshold(dB float64) LimiterOption {
	return func(cfg *limiterConfig) error {
		if err := checkRange("limiter threshold", dB, minLimiterThresholdDB, maxLimiterThresholdDB); err != nil {
			return err
		}
		cfg.thresholdDB = dB
		return nil
	}
}

// WithLimiterAttack sets the attack time in milliseconds.
func WithLimiterAttack(ms float64) LimiterOption {
	return func(cfg *limiterConfig) error {
		if err := checkRange("limiter attack", ms, minLimiterAttackMs, maxLimiterAttackMs); err != nil {
			return err
		}
		cfg.attackMs = ms
		return nil
	}
}

// WithLimiterRelease sets the release time in milliseconds.
func WithLimiterRelease(ms float64) LimiterOption {
	return func(cfg *limiterConfig) error {
		if err := checkRange("limiter release", ms, minLimiterReleaseMs, maxLimiterReleaseMs); err != nil {
			return err
		}
		cfg.releaseMs = ms
		return nil
	}
}

// WithLimiterHold sets how long the envelope holds a peak before releasing.
func WithLimiterHold(ms float64) LimiterOption {
	return func(cfg *limiterConfig) error {
		if err := checkRange("limiter hold", ms, minLimiterHoldMs, maxLimiterHoldMs); err != nil {
			return err
		}
		cfg.holdMs = ms
		return nil
	}
}

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || math.IsNaN(v) {
		return fmt.Errorf("%s must be in [%g, %g]: %f", name, lo, hi, v)
	}
	return nil
}

// Limiter is a peak limiter driven by an attack/hold/release envelope
// follower. While the envelope is above the threshold the gain is
// threshold/envelope, computed in the log2 domain.
type Limiter struct {
	sampleRate  float64
	thresholdDB float64
	attackMs    float64
	releaseMs   float64
	holdMs      float64

	thresholdLin  float64
	thresholdLog2 float64
	attackCoeff   float64
	releaseCoeff  float64
	holdSamples   int

	envelope    float64
	holdCounter int
}

// NewLimiter creates a limiter with optional configuration overrides.
func NewLimiter(sampleRate float64, opts ...LimiterOption) (*Limiter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("limiter sample rate must be > 0: %f", sampleRate)
	}

	cfg := defaultLimiterConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	l := &Limiter{
		sampleRate:  sampleRate,
		thresholdDB: cfg.thresholdDB,
		attackMs:    cfg.attackMs,
		releaseMs:   cfg.releaseMs,
		holdMs:      cfg.holdMs,
	}
	l.update()
	return l, nil
}

// SetThreshold sets the ceiling in dBFS.
func (l *Limiter) SetThreshold(dB float64) error {
	if err := checkRange("limiter threshold", dB, minLimiterThresholdDB, maxLimiterThresholdDB); err != nil {
		return err
	}
	l.thresholdDB = dB
	l.update()
	return nil
}

// SetAttack sets the attack time in milliseconds.
func (l *Limiter) SetAttack(ms float64) error {
	if err := checkRange("limiter attack", ms, minLimiterAttackMs, maxLimiterAttackMs); err != nil {
		return err
	}
	l.attackMs = ms
	l.update()
	return nil
}

// SetRelease sets the release time in milliseconds.
func (l *Limiter) SetRelease(ms float64) error {
	if err := checkRange("limiter release", ms, minLimiterReleaseMs, maxLimiterReleaseMs); err != nil {
		return err
	}
	l.releaseMs = ms
	l.update()
	return nil
}

// SetHold sets the hold time in milliseconds.
func (l *Limiter) SetHold(ms float64) error {
	if err := checkRange("limiter hold", ms, minLimiterHoldMs, maxLimiterHoldMs); err != nil {
		return err
	}
	l.holdMs = ms
	l.update()
	return nil
}

// SetSampleRate updates the sample rate.
func (l *Limiter) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("limiter sample rate must be > 0: %f", sampleRate)
	}
	l.sampleRate = sampleRate
	l.update()
	return nil
}

func (l *Limiter) Threshold() float64  { return l.thresholdDB }
func (l *Limiter) Attack() float64     { return l.attackMs }
func (l *Limiter) Release() float64    { return l.releaseMs }
func (l *Limiter) Hold() float64       { return l.holdMs }
func (l *Limiter) SampleRate() float64 { return l.sampleRate }

// Envelope returns the current envelope level (linear).
func (l *Limiter) Envelope() float64 { return l.envelope }

// ProcessSample limits one sample.
func (l *Limiter) ProcessSample(input float64) float64 {
	level := math.Abs(input)

	switch {
	case level >= l.envelope:
		l.envelope += (level - l.envelope) * l.attackCoeff
		l.holdCounter = l.holdSamples
	case l.holdCounter > 0:
		l.holdCounter--
	default:
		l.envelope = level + (l.envelope-level)*l.releaseCoeff
	}

	if l.envelope <= l.thresholdLin {
		return input
	}

	return input * mathPower2(l.thresholdLog2-mathLog2(l.envelope))
}

// ProcessInPlace limits buf in place.
func (l *Limiter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = l.ProcessSample(buf[i])
	}
}

// Reset clears the envelope state.
func (l *Limiter) Reset() {
	l.envelope = 0
	l.holdCounter = 0
}

func (l *Limiter) update() {
	l.thresholdLog2 = l.thresholdDB * log2Of10Div20
	l.thresholdLin = core.DBToLinear(l.thresholdDB)
	l.attackCoeff = 1 - math.Exp(-math.Ln2/(l.attackMs*0.001*l.sampleRate))
	l.releaseCoeff = math.Exp(-math.Ln2 / (l.releaseMs * 0.001 * l.sampleRate))
	l.holdSamples = int(math.Round(l.holdMs * 0.001 * l.sampleRate))
}
