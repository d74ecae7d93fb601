package analysis

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-chaosdelay/dsp/window"
)

const (
	defaultFrameSize = 2048
	minFrameSize     = 64
)

// ErrInvalidFrameSize is returned for frame sizes that are not a power of
// two of at least 64.
var ErrInvalidFrameSize = errors.New("analysis: frame size must be a power of two >= 64")

// Report is a snapshot of the meter.
type Report struct {
	Peak       float64
	RMS        float64
	CentroidHz float64
	Samples    int64
}

// Option configures a Meter.
type Option func(*config) error

type config struct {
	frameSize int
	window    window.Type
}

// WithWindow sets the analysis window (periodic Hann by default).
func WithWindow(t window.Type) Option {
	return func(cfg *config) error {
		cfg.window = t
		return nil
	}
}

// WithFrameSize sets the FFT frame used for the spectral centroid.
func WithFrameSize(n int) Option {
	return func(cfg *config) error {
		if n < minFrameSize || n&(n-1) != 0 {
			return fmt.Errorf("%w: %d", ErrInvalidFrameSize, n)
		}
		cfg.frameSize = n
		return nil
	}
}

// Meter accumulates blocks. It allocates only at construction.
type Meter struct {
	sampleRate float64
	frameSize  int

	plan   *algofft.Plan[complex128]
	window []float64

	ring    []float64
	ringPos int

	ordered []float64
	fftIn   []complex128
	fftOut  []complex128
	re, im  []float64
	mag     []float64

	peak  float64
	sumSq float64
	count int64
}

// NewMeter creates a meter for the given sample rate.
func NewMeter(sampleRate float64, opts ...Option) (*Meter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("analysis: sample rate must be > 0: %f", sampleRate)
	}

	cfg := config{frameSize: defaultFrameSize, window: window.TypeHann}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	n := cfg.frameSize
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("analysis: fft plan: %w", err)
	}

	win, err := window.Generate(cfg.window, n, true)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	bins := n/2 + 1
	return &Meter{
		sampleRate: sampleRate,
		frameSize:  n,
		plan:       plan,
		window:     win,
		ring:       make([]float64, n),
		ordered:    make([]float64, n),
		fftIn:      make([]complex128, n),
		fftOut:     make([]complex128, n),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
	}, nil
}

// FrameSize returns the analysis frame length.
func (m *Meter) FrameSize() int { return m.frameSize }

// Add accumulates one block.
func (m *Meter) Add(block []float64) {
	if len(block) == 0 {
		return
	}
	if p := vecmath.MaxAbs(block); p > m.peak {
		m.peak = p
	}
	m.sumSq += vecmath.DotProduct(block, block)
	m.count += int64(len(block))

	for _, x := range block {
		m.ring[m.ringPos] = x
		m.ringPos++
		if m.ringPos == m.frameSize {
			m.ringPos = 0
		}
	}
}

// Report returns peak and RMS since the last Reset and the centroid of the
// newest frameSize samples.
func (m *Meter) Report() (Report, error) {
	r := Report{Peak: m.peak, Samples: m.count}
	if m.count > 0 {
		r.RMS = math.Sqrt(m.sumSq / float64(m.count))
	}

	centroid, err := m.centroid()
	if err != nil {
		return r, err
	}
	r.CentroidHz = centroid
	return r, nil
}

func (m *Meter) centroid() (float64, error) {
	tail := copy(m.ordered, m.ring[m.ringPos:])
	copy(m.ordered[tail:], m.ring[:m.ringPos])
	vecmath.MulBlockInPlace(m.ordered, m.window)

	for i, x := range m.ordered {
		m.fftIn[i] = complex(x, 0)
	}
	if err := m.plan.Forward(m.fftOut, m.fftIn); err != nil {
		return 0, fmt.Errorf("analysis: fft forward: %w", err)
	}

	for k := range m.re {
		m.re[k] = real(m.fftOut[k])
		m.im[k] = imag(m.fftOut[k])
	}
	vecmath.Magnitude(m.mag, m.re, m.im)

	binHz := m.sampleRate / float64(m.frameSize)
	var weighted, total float64
	for k, a := range m.mag {
		weighted += float64(k) * binHz * a
		total += a
	}
	if total == 0 {
		return 0, nil
	}
	return weighted / total, nil
}

// Reset clears the level accumulators and the frame.
func (m *Meter) Reset() {
	m.peak = 0
	m.sumSq = 0
	m.count = 0
	m.ringPos = 0
	for i := range m.ring {
		m.ring[i] = 0
	}
}
