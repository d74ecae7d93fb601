package testutil

import (
	"math"
	"math/rand/v2"
)

// NewRand returns a PCG-backed generator for reproducible tests.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude).
func DeterministicNoise(seed uint64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := NewRand(seed)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at pos.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Blocks splits signal into consecutive blocks of blockSize samples. A short
// trailing remainder is zero padded.
func Blocks(signal []float64, blockSize int) [][]float64 {
	if blockSize <= 0 {
		return nil
	}
	n := (len(signal) + blockSize - 1) / blockSize
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, blockSize)
		copy(out[i], signal[i*blockSize:])
	}
	return out
}

// ScriptedRand replays fixed draws. IntN returns Ints in order (reduced
// modulo n) and Float64 returns Floats in order; both wrap around. Empty
// scripts yield 0.
type ScriptedRand struct {
	Ints   []int
	Floats []float64

	intPos   int
	floatPos int
}

// IntN returns the next scripted integer.
func (r *ScriptedRand) IntN(n int) int {
	if len(r.Ints) == 0 || n <= 0 {
		return 0
	}
	v := r.Ints[r.intPos%len(r.Ints)]
	r.intPos++
	return ((v % n) + n) % n
}

// Float64 returns the next scripted float.
func (r *ScriptedRand) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0
	}
	v := r.Floats[r.floatPos%len(r.Floats)]
	r.floatPos++
	return v
}

// Draws returns how many integers and floats have been consumed.
func (r *ScriptedRand) Draws() (ints, floats int) {
	return r.intPos, r.floatPos
}
