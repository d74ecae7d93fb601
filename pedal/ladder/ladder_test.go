package ladder

import (
	"testing"

	"github.com/cwbudde/algo-chaosdelay/pedal/params"
)

type recordingDisplay struct {
	levels []int
}

func (d *recordingDisplay) SetLevel(level int) { d.levels = append(d.levels, level) }

func TestRaiseSaturatesAndResetClears(t *testing.T) {
	p := params.New()
	disp := &recordingDisplay{}
	l := New(p, disp)

	for i := 1; i <= 8; i++ {
		if got := l.Raise(); got != i {
			t.Fatalf("raise %d: level = %d", i, got)
		}
	}
	if got := l.Raise(); got != 8 {
		t.Fatalf("9th raise: level = %d, want 8", got)
	}
	if p.Noise() != 60 || p.Density() != 85 {
		t.Fatalf("level 8 preset = (%d, %d), want (60, 85)", p.Noise(), p.Density())
	}

	if got := l.Reset(); got != 0 {
		t.Fatalf("Reset() = %d", got)
	}
	if p.Noise() != 20 || p.Density() != 5 {
		t.Fatalf("reset preset = (%d, %d), want (20, 5)", p.Noise(), p.Density())
	}

	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 8, 0}
	if len(disp.levels) != len(want) {
		t.Fatalf("display saw %v, want %v", disp.levels, want)
	}
	for i := range want {
		if disp.levels[i] != want[i] {
			t.Fatalf("display saw %v, want %v", disp.levels, want)
		}
	}
}

func TestPreset(t *testing.T) {
	tests := []struct {
		level, noise, density int
	}{
		{0, 20, 5},
		{1, 25, 15},
		{4, 40, 45},
		{8, 60, 85},
		{12, 60, 100},
		{-3, 20, 5},
	}
	for _, tt := range tests {
		noise, density := Preset(tt.level)
		if noise != tt.noise || density != tt.density {
			t.Errorf("Preset(%d) = (%d, %d), want (%d, %d)", tt.level, noise, density, tt.noise, tt.density)
		}
	}
}

func TestTransitionsBumpSeedEpoch(t *testing.T) {
	p := params.New()
	l := New(p, nil)
	l.Raise()
	l.Reset()
	l.Reset()
	if got := p.SeedEpoch(); got != 3 {
		t.Fatalf("SeedEpoch() = %d, want 3", got)
	}
}
