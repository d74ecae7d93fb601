// Package engine is the audio-block engine around the mixer: it runs the
// pre-mix stages of a patch, offers their tap blocks to the mixer, and runs
// the post-mix stages on what the mixer submits.
//
// Process, Acquire, Release, Submit and Render belong to the audio
// context. SetDelayTime, SetFeedback, SetFilter and SetLimiter may be
// called from any goroutine; they publish through atomics and take effect
// at the next period.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-chaosdelay/dsp/buffer"
	"github.com/cwbudde/algo-chaosdelay/dsp/core"
	"github.com/cwbudde/algo-chaosdelay/dsp/effects"
	"github.com/cwbudde/algo-chaosdelay/dsp/filter/svf"
	"github.com/cwbudde/algo-chaosdelay/pedal/params"
	"github.com/cwbudde/algo-chaosdelay/pedal/patch"
)

// ErrNoPatch is returned when the patch offers no taps to mix.
var ErrNoPatch = errors.New("engine: patch has no taps")

// Option configures an Engine.
type Option func(*config) error

type config struct {
	procOpts   []core.ProcessorOption
	graph      patch.Graph
	maxDelayMs float64
	delayMs    float64
	inputGain  float64
}

func defaultConfig() config {
	return config{
		graph:      patch.Default(),
		maxDelayMs: params.MaxDelayMs,
		delayMs:    params.DefaultDelayMs,
		inputGain:  1,
	}
}

// WithProcessorOptions sets sample rate and block size.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(cfg *config) error {
		cfg.procOpts = append(cfg.procOpts, opts...)
		return nil
	}
}

// WithPatch replaces the default patch.
func WithPatch(g patch.Graph) Option {
	return func(cfg *config) error {
		cfg.graph = g
		return nil
	}
}

// WithInitialDelay sets the delay time at power-on, in ms.
func WithInitialDelay(ms float64) Option {
	return func(cfg *config) error {
		if ms < params.MinDelayMs || ms > params.MaxDelayMs || math.IsNaN(ms) {
			return fmt.Errorf("engine initial delay must be in [%d, %d]: %f", params.MinDelayMs, params.MaxDelayMs, ms)
		}
		cfg.delayMs = ms
		return nil
	}
}

// WithInputGain sets the gain of the dry path into the feedback mixer.
func WithInputGain(gain float64) Option {
	return func(cfg *config) error {
		if gain < 0 || gain > 1 || math.IsNaN(gain) {
			return fmt.Errorf("engine input gain must be in [0, 1]: %f", gain)
		}
		cfg.inputGain = gain
		return nil
	}
}

// Stats are cumulative engine counters.
type Stats struct {
	Periods     uint64
	Overruns    uint64
	Submitted   [Channels]uint64
	Outstanding int64
}

type filterRequest struct {
	cutoffHz  float64
	resonance float64
}

type limiterRequest struct {
	attackMs  float64
	releaseMs float64
	holdMs    float64
}

// Engine runs a compiled patch one block at a time.
type Engine struct {
	cfg       core.ProcessorConfig
	compiled  *patch.Compiled
	pre       []*stage
	post      []*stage
	sink      *stage
	inputGain float64

	pool      *buffer.Pool
	slots     [Channels][2]slot
	submitted [Channels]bool
	seq       uint64

	input      []float64
	outL, outR []float64

	delayMs    atomic.Uint64 // float64 bits
	feedback   atomic.Uint64 // float64 bits
	loopGain   float64
	filterReq  atomic.Pointer[filterRequest]
	limiterReq atomic.Pointer[limiterRequest]

	periods        atomic.Uint64
	overruns       atomic.Uint64
	submittedCount [Channels]atomic.Uint64
}

// New builds an engine from the patch in opts (patch.Default otherwise).
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	proc := core.ApplyProcessorOptions(cfg.procOpts...)
	if err := proc.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	compiled, err := patch.Compile(cfg.graph)
	if err != nil {
		return nil, err
	}
	if len(compiled.Taps()) == 0 {
		return nil, ErrNoPatch
	}

	e := &Engine{
		cfg:       proc,
		compiled:  compiled,
		inputGain: cfg.inputGain,
		pool:      buffer.NewPool(proc.BlockSize),
	}
	if err := e.build(cfg); err != nil {
		return nil, err
	}
	e.SetDelayTime(cfg.delayMs)
	e.SetFeedback(params.DefaultFeedback)
	e.applyControls()
	for _, st := range e.pre {
		if st.delay != nil {
			st.delay.Reset()
		}
	}
	return e, nil
}

// Config returns the processor configuration.
func (e *Engine) Config() core.ProcessorConfig { return e.cfg }

// Patch returns the compiled patch.
func (e *Engine) Patch() *patch.Compiled { return e.compiled }

// SetDelayTime sets the delay of every tap in ms, clamped to [1, 300].
func (e *Engine) SetDelayTime(ms float64) {
	e.delayMs.Store(math.Float64bits(core.Clamp(ms, params.MinDelayMs, params.MaxDelayMs)))
}

// SetFeedback sets the loop-back gain, clamped to [0, MaxFeedback].
func (e *Engine) SetFeedback(gain float64) {
	e.feedback.Store(math.Float64bits(core.Clamp(gain, params.MinFeedback, params.MaxFeedback)))
}

// DelayTime returns the requested delay in ms.
func (e *Engine) DelayTime() float64 { return math.Float64frombits(e.delayMs.Load()) }

// Feedback returns the requested loop-back gain.
func (e *Engine) Feedback() float64 { return math.Float64frombits(e.feedback.Load()) }

// SetFilter retunes every filter stage.
func (e *Engine) SetFilter(cutoffHz, resonance float64) error {
	if _, err := svf.New(e.cfg.SampleRate, svf.WithCutoffHz(cutoffHz), svf.WithResonance(resonance)); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	e.filterReq.Store(&filterRequest{cutoffHz: cutoffHz, resonance: resonance})
	return nil
}

// SetLimiter sets the envelope times of every limiter stage.
func (e *Engine) SetLimiter(attackMs, releaseMs, holdMs float64) error {
	_, err := effects.NewLimiter(e.cfg.SampleRate,
		effects.WithLimiterAttack(attackMs),
		effects.WithLimiterRelease(releaseMs),
		effects.WithLimiterHold(holdMs),
	)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	e.limiterReq.Store(&limiterRequest{attackMs: attackMs, releaseMs: releaseMs, holdMs: holdMs})
	return nil
}

// Process runs the pre-mix stages for one period. in shorter than the block
// size is zero padded.
func (e *Engine) Process(in []float64) {
	e.applyControls()
	e.seq++
	e.input = in
	for _, st := range e.pre {
		e.run(st)
	}
	e.input = nil
	e.periods.Add(1)
}

// Render runs the post-mix stages and writes the output. A channel the
// mixer did not submit this period renders from silence.
func (e *Engine) Render(outL, outR []float64) {
	clear(outL)
	clear(outR)
	e.outL, e.outR = outL, outR
	for _, st := range e.post {
		e.run(st)
	}
	e.outL, e.outR = nil, nil
	e.submitted = [Channels]bool{}
}

// Ready reports whether the tap block for ch is available to acquire.
func (e *Engine) Ready(ch int, tap Tap) bool {
	s := e.slotFor(ch, tap)
	return s != nil && s.block != nil && !s.held
}

// Acquire hands the tap block for ch to the caller until Release. It
// returns nil when the block is not ready.
func (e *Engine) Acquire(ch int, tap Tap) *Block {
	s := e.slotFor(ch, tap)
	if s == nil || s.block == nil || s.held {
		return nil
	}
	s.held = true
	return s.block
}

// Release returns the tap block for ch to the pool so the tap can produce
// again next period.
func (e *Engine) Release(ch int, tap Tap) {
	s := e.slotFor(ch, tap)
	if s == nil || s.block == nil {
		return
	}
	e.pool.Put(s.block.buf)
	s.block.buf = nil
	s.block = nil
	s.held = false
}

// Submit copies block into the post-mix input of channel ch. The caller
// keeps ownership of block.
func (e *Engine) Submit(ch int, block *Block) {
	if ch < 0 || ch >= Channels || block == nil || e.sink == nil {
		return
	}
	dst := e.sink.outs[ch]
	n := copy(dst, block.Samples())
	clear(dst[n:])
	e.submitted[ch] = true
	e.submittedCount[ch].Add(1)
}

// Stats returns the cumulative counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Periods:     e.periods.Load(),
		Overruns:    e.overruns.Load(),
		Outstanding: e.pool.Outstanding(),
	}
	for ch := range s.Submitted {
		s.Submitted[ch] = e.submittedCount[ch].Load()
	}
	return s
}

// Reset clears all stage state and drops unreleased blocks.
func (e *Engine) Reset() {
	for _, st := range e.pre {
		st.reset()
	}
	for _, st := range e.post {
		st.reset()
	}
	for ch := range e.slots {
		for tap := range e.slots[ch] {
			e.slots[ch][tap].held = false
			e.Release(ch, Tap(tap))
		}
	}
	e.submitted = [Channels]bool{}
}

func (e *Engine) slotFor(ch int, tap Tap) *slot {
	if ch < 0 || ch >= Channels || tap < Clean || tap > Dirty {
		return nil
	}
	return &e.slots[ch][tap]
}

func (e *Engine) emit(ch int, tap Tap, src []float64) {
	s := &e.slots[ch][tap]
	if s.block != nil {
		e.overruns.Add(1)
		return
	}
	buf := e.pool.Get()
	buf.CopyFrom(src)
	s.wrapper = Block{Seq: e.seq, buf: buf}
	s.block = &s.wrapper
}

func (e *Engine) applyControls() {
	seconds := e.DelayTime() * 0.001
	e.loopGain = e.Feedback()

	filterReq := e.filterReq.Swap(nil)
	limiterReq := e.limiterReq.Swap(nil)

	// Stages of every kind may sit on either side of the mix.
	for _, st := range e.pre {
		st.applyControls(seconds, filterReq, limiterReq)
	}
	for _, st := range e.post {
		st.applyControls(seconds, filterReq, limiterReq)
	}
}
