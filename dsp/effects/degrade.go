package effects

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
)

const (
	// MaxNoiseAmount is the upper bound of the noise amount in device units.
	MaxNoiseAmount = 60
	// MaxDensity is the upper bound of the firing probability in percent.
	MaxDensity = 100

	minCrushBits = 2
	maxCrushBits = 8

	defaultDegraderSeed = 0x5eed
)

// Rand is the random source consumed by Degrade. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// CrushBits returns the effective bit depth for a noise amount:
// 8 - noiseAmount/10 with integer division, limited to [2, 8].
func CrushBits(noiseAmount int) int {
	return core.ClampInt(maxCrushBits-noiseAmount/10, minCrushBits, maxCrushBits)
}

// Degrade applies probabilistic bit degradation to one sample.
//
// A uniform integer in [0, 100) is drawn for every call. When it is at or
// above density the sample is returned unchanged. Otherwise the sample is
// truncated toward zero onto a 2^CrushBits(noiseAmount) grid, uniform noise
// in [-1, 1) scaled by noiseAmount/100 is added, and the result is hard
// clipped to [-1, 1].
//
// density selects whether the effect fires, noiseAmount how harsh it is.
func Degrade(sample float64, noiseAmount, density int, rng Rand) float64 {
	if rng.IntN(MaxDensity) >= density {
		return sample
	}

	steps := float64(int(1) << CrushBits(noiseAmount))
	crushed := math.Trunc(sample*steps) / steps

	noise := (2*rng.Float64() - 1) * (float64(noiseAmount) / 100)

	return core.Clamp(crushed+noise, -1, 1)
}

// DegraderOption mutates degrader construction parameters.
type DegraderOption func(*degraderConfig) error

type degraderConfig struct {
	seed        uint64
	noiseAmount int
	density     int
}

func defaultDegraderConfig() degraderConfig {
	return degraderConfig{seed: defaultDegraderSeed}
}

// WithDegraderSeed sets the seed of the internal PCG source.
func WithDegraderSeed(seed uint64) DegraderOption {
	return func(cfg *degraderConfig) error {
		cfg.seed = seed
		return nil
	}
}

// WithDegraderNoiseAmount sets the noise amount in [0, 60].
func WithDegraderNoiseAmount(amount int) DegraderOption {
	return func(cfg *degraderConfig) error {
		if amount < 0 || amount > MaxNoiseAmount {
			return fmt.Errorf("degrader noise amount must be in [0, %d]: %d", MaxNoiseAmount, amount)
		}
		cfg.noiseAmount = amount
		return nil
	}
}

// WithDegraderDensity sets the firing probability in percent, [0, 100].
func WithDegraderDensity(density int) DegraderOption {
	return func(cfg *degraderConfig) error {
		if density < 0 || density > MaxDensity {
			return fmt.Errorf("degrader density must be in [0, %d]: %d", MaxDensity, density)
		}
		cfg.density = density
		return nil
	}
}

// Degrader owns a random source and the current amounts, and applies
// [Degrade] to samples and blocks. It is not safe for concurrent use; the
// audio context owns it.
type Degrader struct {
	src *rand.PCG
	rng *rand.Rand

	seed        uint64
	noiseAmount int
	density     int
}

// NewDegrader creates a degrader with optional configuration overrides.
func NewDegrader(opts ...DegraderOption) (*Degrader, error) {
	cfg := defaultDegraderConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	src := rand.NewPCG(cfg.seed, cfg.seed)
	return &Degrader{
		src:         src,
		rng:         rand.New(src),
		seed:        cfg.seed,
		noiseAmount: cfg.noiseAmount,
		density:     cfg.density,
	}, nil
}

// Reseed restarts the random sequence from seed.
func (d *Degrader) Reseed(seed uint64) {
	d.seed = seed
	d.src.Seed(seed, seed)
}

// SetNoiseAmount sets the noise amount in [0, 60].
func (d *Degrader) SetNoiseAmount(amount int) error {
	if amount < 0 || amount > MaxNoiseAmount {
		return fmt.Errorf("degrader noise amount must be in [0, %d]: %d", MaxNoiseAmount, amount)
	}
	d.noiseAmount = amount
	return nil
}

// SetDensity sets the firing probability in [0, 100].
func (d *Degrader) SetDensity(density int) error {
	if density < 0 || density > MaxDensity {
		return fmt.Errorf("degrader density must be in [0, %d]: %d", MaxDensity, density)
	}
	d.density = density
	return nil
}

// SetAmounts clamps and stores both amounts. It never fails and is meant
// for the audio path, where values come from already bounded controls.
func (d *Degrader) SetAmounts(noiseAmount, density int) {
	d.noiseAmount = core.ClampInt(noiseAmount, 0, MaxNoiseAmount)
	d.density = core.ClampInt(density, 0, MaxDensity)
}

// ProcessSample degrades one sample.
func (d *Degrader) ProcessSample(input float64) float64 {
	return Degrade(input, d.noiseAmount, d.density, d.rng)
}

// ProcessInPlace degrades buf in place.
func (d *Degrader) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = Degrade(buf[i], d.noiseAmount, d.density, d.rng)
	}
}

// ProcessBlock degrades src into dst. Both slices must have equal length.
func (d *Degrader) ProcessBlock(dst, src []float64) {
	for i := range dst {
		dst[i] = Degrade(src[i], d.noiseAmount, d.density, d.rng)
	}
}

// Seed returns the seed of the current random sequence.
func (d *Degrader) Seed() uint64 { return d.seed }

// NoiseAmount returns the noise amount.
func (d *Degrader) NoiseAmount() int { return d.noiseAmount }

// Density returns the firing probability in percent.
func (d *Degrader) Density() int { return d.density }
