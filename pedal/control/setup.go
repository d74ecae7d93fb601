package control

import (
	"fmt"

	"github.com/cwbudde/algo-chaosdelay/pedal/params"
)

// Tone receives the fixed tone settings at startup.
type Tone interface {
	SetFilter(cutoffHz, resonance float64) error
	SetLimiter(attackMs, releaseMs, holdMs float64) error
}

// Startup holds the power-on configuration of the signal path.
type Startup struct {
	DelayMs          int
	FilterCutoffHz   float64
	FilterResonance  float64
	LimiterAttackMs  float64
	LimiterReleaseMs float64
	LimiterHoldMs    float64
}

// DefaultStartup returns the power-on configuration of the device.
func DefaultStartup() Startup {
	return Startup{
		DelayMs:          params.DefaultDelayMs,
		FilterCutoffHz:   500,
		FilterResonance:  0.7,
		LimiterAttackMs:  5,
		LimiterReleaseMs: 100,
		LimiterHoldMs:    50,
	}
}

// Setup applies s to the tone stages and the delay network, and resets the
// shared delay time to match.
func Setup(t Tone, n Network, p *params.Params, s Startup) error {
	if err := t.SetFilter(s.FilterCutoffHz, s.FilterResonance); err != nil {
		return fmt.Errorf("control setup filter: %w", err)
	}
	if err := t.SetLimiter(s.LimiterAttackMs, s.LimiterReleaseMs, s.LimiterHoldMs); err != nil {
		return fmt.Errorf("control setup limiter: %w", err)
	}
	p.SetDelayMs(s.DelayMs)
	ForwardNetwork(n, p)
	return nil
}
