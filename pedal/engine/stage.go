package engine

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-chaosdelay/dsp/effects"
	"github.com/cwbudde/algo-chaosdelay/dsp/filter/svf"
	"github.com/cwbudde/algo-chaosdelay/pedal/patch"
)

// stage is one patch node bound to its processor and port buffers.
type stage struct {
	node patch.Node

	// outs are owned by the stage and keep their content until the stage
	// runs again, which is what feedback edges read.
	outs [][]float64
	// ins alias the single source of a port, or a sum buffer when the
	// port has several sources, or a zero buffer when it has none.
	ins     [][]float64
	sources [][][]float64
	scratch []float64

	filter   *svf.Filter
	delay    *effects.TapDelay
	limiters [Channels]*effects.Limiter
	tap      Tap
}

func (e *Engine) build(cfg config) error {
	n := e.cfg.BlockSize
	stages := make(map[string]*stage, len(e.compiled.Nodes))

	for id, node := range e.compiled.Nodes {
		ins, outs, _ := node.Kind.Ports()
		st := &stage{
			node:    node,
			outs:    make([][]float64, outs),
			ins:     make([][]float64, ins),
			sources: make([][][]float64, ins),
		}
		for p := range st.outs {
			st.outs[p] = make([]float64, n)
		}
		if err := e.bindProcessor(st, cfg); err != nil {
			return fmt.Errorf("engine: stage %q: %w", id, err)
		}
		stages[id] = st
	}

	for id, st := range stages {
		for _, edge := range e.compiled.Incoming[id] {
			src := stages[edge.From].outs[edge.FromPort]
			st.sources[edge.ToPort] = append(st.sources[edge.ToPort], src)
		}
		for p, srcs := range st.sources {
			if len(srcs) == 1 {
				st.ins[p] = srcs[0]
			} else {
				st.ins[p] = make([]float64, n)
			}
		}
	}

	for _, id := range e.compiled.Pre {
		e.pre = append(e.pre, stages[id])
	}
	for _, id := range e.compiled.Post {
		st := stages[id]
		e.post = append(e.post, st)
		if e.sink == nil && st.node.Kind == patch.KindSink {
			e.sink = st
		}
	}
	return nil
}

func (e *Engine) bindProcessor(st *stage, cfg config) error {
	sr := e.cfg.SampleRate
	var err error

	switch st.node.Kind {
	case patch.KindFilter:
		st.filter, err = svf.New(sr)
	case patch.KindFeedback:
		st.scratch = make([]float64, e.cfg.BlockSize)
	case patch.KindDelay:
		maxSeconds := cfg.maxDelayMs*0.001 + e.cfg.BlockPeriodSeconds()
		st.delay, err = effects.NewTapDelay(sr, effects.WithTapMaxTime(maxSeconds))
	case patch.KindLimiter:
		for ch := range st.limiters {
			if st.limiters[ch], err = effects.NewLimiter(sr); err != nil {
				return err
			}
		}
	case patch.KindTap:
		st.tap = Clean
		if st.node.Role == patch.TapDirty {
			st.tap = Dirty
		}
	}
	return err
}

func (e *Engine) run(st *stage) {
	st.sumInputs()

	switch st.node.Kind {
	case patch.KindInput:
		n := copy(st.outs[0], e.input)
		clear(st.outs[0][n:])

	case patch.KindFilter:
		st.filter.ProcessBlock(st.outs[0], st.ins[0])

	case patch.KindFeedback:
		vecmath.ScaleBlock(st.outs[0], st.ins[0], e.inputGain)
		vecmath.ScaleBlock(st.scratch, st.ins[1], e.loopGain)
		vecmath.AddBlockInPlace(st.outs[0], st.scratch)

	case patch.KindDelay:
		st.delay.ProcessBlock(st.ins[0], st.outs[0], st.outs[1])

	case patch.KindTap:
		e.emit(st.node.Channel, st.tap, st.ins[0])

	case patch.KindSink:
		for ch, out := range st.outs {
			if !e.submitted[ch] {
				clear(out)
			}
		}

	case patch.KindLimiter:
		for ch, l := range st.limiters {
			copy(st.outs[ch], st.ins[ch])
			l.ProcessInPlace(st.outs[ch])
		}

	case patch.KindOutput:
		copy(e.outL, st.ins[0])
		copy(e.outR, st.ins[1])
	}
}

func (st *stage) reset() {
	for _, out := range st.outs {
		clear(out)
	}
	if st.filter != nil {
		st.filter.Reset()
	}
	if st.delay != nil {
		st.delay.Reset()
	}
	for _, l := range st.limiters {
		if l != nil {
			l.Reset()
		}
	}
}

// sumInputs folds multi-source ports. Single-source ports alias their
// source and need no work.
func (st *stage) sumInputs() {
	for p, srcs := range st.sources {
		if len(srcs) < 2 {
			continue
		}
		dst := st.ins[p]
		copy(dst, srcs[0])
		for _, src := range srcs[1:] {
			vecmath.AddBlockInPlace(dst, src)
		}
	}
}

func (st *stage) applyControls(delaySeconds float64, filterReq *filterRequest, limiterReq *limiterRequest) {
	if st.delay != nil {
		st.delay.SetTargetTimeClamped(delaySeconds)
	}
	if st.filter != nil && filterReq != nil {
		_ = st.filter.SetCutoffHz(filterReq.cutoffHz)
		_ = st.filter.SetResonance(filterReq.resonance)
	}
	if limiterReq == nil {
		return
	}
	for _, l := range st.limiters {
		if l == nil {
			continue
		}
		_ = l.SetAttack(limiterReq.attackMs)
		_ = l.SetRelease(limiterReq.releaseMs)
		_ = l.SetHold(limiterReq.holdMs)
	}
}
