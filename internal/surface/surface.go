// Package surface provides the host control surfaces of the chaosdelay
// binary: an idle surface with fixed pots, the terminal keyboard and a MIDI
// controller. All of them report raw 10-bit pot readings and button
// states through control.Surface.
package surface

import (
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-chaosdelay/pedal/control"
	"github.com/cwbudde/algo-chaosdelay/pedal/params"
)

// RawFor returns the smallest raw reading that maps to value on a pot
// spanning [lo, hi].
func RawFor(value, lo, hi int) int {
	if hi <= lo {
		return 0
	}
	value = min(max(value, lo), hi)
	return ((value-lo)*control.RawMax + (hi - lo) - 1) / (hi - lo)
}

// DefaultPots returns raw readings that reproduce the power-on parameters.
func DefaultPots() [control.NumPots]int {
	var pots [control.NumPots]int
	pots[control.PotDelay] = RawFor(params.DefaultDelayMs, params.MinDelayMs, params.MaxDelayMs)
	pots[control.PotFeedback] = RawFor(int(params.DefaultFeedback*100), 0, 95)
	pots[control.PotNoise] = RawFor(params.DefaultNoise, params.MinNoise, params.MaxNoise)
	pots[control.PotDensity] = RawFor(params.DefaultDensity, params.MinDensity, params.MaxDensity)
	pots[control.PotMix] = RawFor(int(params.DefaultMix*100), 0, 100)
	return pots
}

// State is a surface whose pots and buttons are set programmatically. It
// is safe for one writer and any number of readers.
type State struct {
	pots    [control.NumPots]atomic.Int32
	release [control.NumButtons]atomic.Int64 // unix nanos; pressed while now < release
	held    [control.NumButtons]atomic.Bool
	now     func() time.Time
}

// NewState returns a surface at the power-on pot positions with no button
// held.
func NewState() *State {
	s := &State{now: time.Now}
	for id, raw := range DefaultPots() {
		s.pots[id].Store(int32(raw))
	}
	return s
}

// Idle returns a surface that never changes.
func Idle() *State { return NewState() }

// Pot implements control.Surface.
func (s *State) Pot(id control.PotID) int {
	if id < 0 || id >= control.NumPots {
		return 0
	}
	return int(s.pots[id].Load())
}

// Pressed implements control.Surface.
func (s *State) Pressed(id control.ButtonID) bool {
	if id < 0 || id >= control.NumButtons {
		return false
	}
	if s.held[id].Load() {
		return true
	}
	return s.now().UnixNano() < s.release[id].Load()
}

// SetPot stores a raw reading, clamped to [0, control.RawMax].
func (s *State) SetPot(id control.PotID, raw int) {
	if id < 0 || id >= control.NumPots {
		return
	}
	s.pots[id].Store(int32(min(max(raw, 0), control.RawMax)))
}

// NudgePot moves a pot by delta raw steps and returns the new reading.
func (s *State) NudgePot(id control.PotID, delta int) int {
	s.SetPot(id, s.Pot(id)+delta)
	return s.Pot(id)
}

// SetHeld holds or releases a button.
func (s *State) SetHeld(id control.ButtonID, held bool) {
	if id < 0 || id >= control.NumButtons {
		return
	}
	s.held[id].Store(held)
}

// Pulse reports id as pressed for d from now, for sources that only
// deliver key-down events.
func (s *State) Pulse(id control.ButtonID, d time.Duration) {
	if id < 0 || id >= control.NumButtons {
		return
	}
	s.release[id].Store(s.now().Add(d).UnixNano())
}
