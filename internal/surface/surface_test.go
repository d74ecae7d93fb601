package surface

import (
	"errors"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-chaosdelay/pedal/control"
	"github.com/cwbudde/algo-chaosdelay/pedal/params"
)

func TestDefaultPotsReproducePowerOn(t *testing.T) {
	s := Idle()
	if got := control.MapDelay(s.Pot(control.PotDelay)); got != params.DefaultDelayMs {
		t.Errorf("delay = %d, want %d", got, params.DefaultDelayMs)
	}
	if got := control.MapFeedback(s.Pot(control.PotFeedback)); got != params.DefaultFeedback {
		t.Errorf("feedback = %g, want %g", got, params.DefaultFeedback)
	}
	if got := control.MapNoise(s.Pot(control.PotNoise)); got != params.DefaultNoise {
		t.Errorf("noise = %d, want %d", got, params.DefaultNoise)
	}
	if got := control.MapDensity(s.Pot(control.PotDensity)); got != params.DefaultDensity {
		t.Errorf("density = %d, want %d", got, params.DefaultDensity)
	}
	if got := control.MapMix(s.Pot(control.PotMix)); got != params.DefaultMix {
		t.Errorf("mix = %g, want %g", got, params.DefaultMix)
	}
}

func TestRawForInvertsMapping(t *testing.T) {
	for v := params.MinDelayMs; v <= params.MaxDelayMs; v++ {
		if got := control.MapDelay(RawFor(v, params.MinDelayMs, params.MaxDelayMs)); got != v {
			t.Fatalf("MapDelay(RawFor(%d)) = %d", v, got)
		}
	}
	if got := RawFor(5, 3, 3); got != 0 {
		t.Fatalf("RawFor on empty span = %d", got)
	}
}

func TestStatePulseAndHold(t *testing.T) {
	now := time.Unix(100, 0)
	s := NewState()
	s.now = func() time.Time { return now }

	s.Pulse(control.ButtonReseed, 100*time.Millisecond)
	if !s.Pressed(control.ButtonReseed) {
		t.Fatal("pulse not pressed")
	}
	now = now.Add(100 * time.Millisecond)
	if s.Pressed(control.ButtonReseed) {
		t.Fatal("pulse still pressed after its duration")
	}

	s.SetHeld(control.ButtonReset, true)
	if !s.Pressed(control.ButtonReset) {
		t.Fatal("held button not pressed")
	}
	s.SetHeld(control.ButtonReset, false)
	if s.Pressed(control.ButtonReset) || s.Pressed(control.NumButtons) {
		t.Fatal("released or unknown button pressed")
	}
}

func TestSetPotClamps(t *testing.T) {
	s := NewState()
	s.SetPot(control.PotMix, 5000)
	if got := s.Pot(control.PotMix); got != control.RawMax {
		t.Fatalf("pot = %d, want %d", got, control.RawMax)
	}
	if got := s.NudgePot(control.PotMix, -2000); got != 0 {
		t.Fatalf("nudged pot = %d, want 0", got)
	}
	if s.Pot(control.NumPots) != 0 {
		t.Fatal("unknown pot returned a reading")
	}
}

func TestKeysHandleKey(t *testing.T) {
	k := NewKeys(nil, nil)
	start := k.Pot(control.PotNoise)
	if !k.HandleKey('e') || k.Pot(control.PotNoise) != start+KeyStep {
		t.Fatalf("noise pot = %d, want %d", k.Pot(control.PotNoise), start+KeyStep)
	}
	if !k.HandleKey('D') || k.Pot(control.PotNoise) != start {
		t.Fatalf("uppercase key not handled, pot = %d", k.Pot(control.PotNoise))
	}
	if !k.HandleKey(' ') || !k.Pressed(control.ButtonReseed) {
		t.Fatal("space did not press the reseed button")
	}
	if k.HandleKey('z') {
		t.Fatal("unbound key reported as handled")
	}
	select {
	case <-k.Quit():
		t.Fatal("quit closed early")
	default:
	}
	k.HandleKey(0x03)
	k.HandleKey(0x03)
	select {
	case <-k.Quit():
	default:
		t.Fatal("ctrl-c did not quit")
	}
	if err := k.Stop(); err != nil {
		t.Fatalf("Stop() without Start = %v", err)
	}
}

func TestMIDIHandleMessage(t *testing.T) {
	m := NewMIDI(DefaultMIDIMap(), nil)

	if !m.HandleMessage(gomidi.ControlChange(0, 24, 127)) {
		t.Fatal("mix CC not handled")
	}
	if got := m.Pot(control.PotMix); got != control.RawMax {
		t.Fatalf("mix pot = %d, want %d", got, control.RawMax)
	}
	m.HandleMessage(gomidi.ControlChange(3, 20, 0))
	if got := m.Pot(control.PotDelay); got != 0 {
		t.Fatalf("delay pot = %d, want 0", got)
	}
	if m.HandleMessage(gomidi.ControlChange(0, 7, 100)) {
		t.Fatal("unmapped CC handled")
	}

	m.HandleMessage(gomidi.NoteOn(0, 60, 100))
	if !m.Pressed(control.ButtonReseed) {
		t.Fatal("note on did not press reseed")
	}
	m.HandleMessage(gomidi.NoteOff(0, 60))
	if m.Pressed(control.ButtonReseed) {
		t.Fatal("note off did not release reseed")
	}
	m.HandleMessage(gomidi.NoteOn(0, 62, 90))
	m.HandleMessage(gomidi.NoteOn(0, 62, 0))
	if m.Pressed(control.ButtonReset) {
		t.Fatal("zero-velocity note on did not release reset")
	}
}

func TestCCToRaw(t *testing.T) {
	tests := []struct {
		cc   uint8
		want int
	}{
		{0, 0},
		{64, 515},
		{127, control.RawMax},
	}
	for _, tt := range tests {
		if got := ccToRaw(tt.cc); got != tt.want {
			t.Errorf("ccToRaw(%d) = %d, want %d", tt.cc, got, tt.want)
		}
	}
}

func TestFindInPortEmpty(t *testing.T) {
	if _, err := findInPort(nil, ""); !errors.Is(err, ErrNoMIDIPort) {
		t.Fatalf("findInPort() = %v", err)
	}
	if _, err := findInPort(nil, "launch"); !errors.Is(err, ErrNoMIDIPort) {
		t.Fatalf("findInPort(launch) = %v", err)
	}
}
