package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
	"github.com/cwbudde/algo-chaosdelay/internal/testutil"
)

func TestLimiterPassesQuietSignal(t *testing.T) {
	l, err := NewLimiter(44100)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}
	in := testutil.DeterministicSine(220, 44100, 0.5, 4096)
	got := append([]float64(nil), in...)
	l.ProcessInPlace(got)
	testutil.RequireSliceEqual(t, got, in)
}

func TestLimiterHoldsSustainedPeakAtThreshold(t *testing.T) {
	l, err := NewLimiter(48000, WithLimiterThreshold(-6))
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}

	buf := testutil.DC(2, 48000)
	l.ProcessInPlace(buf)

	ceiling := core.DBToLinear(-6)
	if got := buf[len(buf)-1]; math.Abs(got-ceiling) > 1e-6 {
		t.Fatalf("steady-state output = %v, want %v", got, ceiling)
	}
	testutil.RequireBounded(t, buf, 0, 2)
}

func TestLimiterHoldDelaysRelease(t *testing.T) {
	const sampleRate = 1000.0

	l, err := NewLimiter(sampleRate,
		WithLimiterAttack(0.1),
		WithLimiterHold(50),
		WithLimiterRelease(100),
	)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}

	l.ProcessInPlace(testutil.DC(1, 100))
	peak := l.Envelope()

	for i := range 50 {
		l.ProcessSample(0.1)
		if l.Envelope() != peak {
			t.Fatalf("envelope moved during hold at quiet sample %d", i)
		}
	}

	l.ProcessSample(0.1)
	if l.Envelope() >= peak {
		t.Fatalf("envelope did not release after hold: %v >= %v", l.Envelope(), peak)
	}
}

func TestLimiterReset(t *testing.T) {
	l, _ := NewLimiter(44100)
	l.ProcessInPlace(testutil.DC(1.5, 512))
	if l.Envelope() == 0 {
		t.Fatal("envelope should have risen")
	}
	l.Reset()
	if l.Envelope() != 0 {
		t.Fatalf("Envelope() after Reset = %v", l.Envelope())
	}
}

func TestLimiterSetters(t *testing.T) {
	l, err := NewLimiter(44100)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}

	if err := l.SetAttack(2); err != nil || l.Attack() != 2 {
		t.Fatalf("SetAttack: err=%v attack=%v", err, l.Attack())
	}
	if err := l.SetRelease(250); err != nil || l.Release() != 250 {
		t.Fatalf("SetRelease: err=%v release=%v", err, l.Release())
	}
	if err := l.SetHold(0); err != nil || l.Hold() != 0 {
		t.Fatalf("SetHold: err=%v hold=%v", err, l.Hold())
	}
	if err := l.SetThreshold(-3); err != nil || l.Threshold() != -3 {
		t.Fatalf("SetThreshold: err=%v threshold=%v", err, l.Threshold())
	}
	if err := l.SetSampleRate(48000); err != nil || l.SampleRate() != 48000 {
		t.Fatalf("SetSampleRate: err=%v rate=%v", err, l.SampleRate())
	}

	tests := []struct {
		name string
		err  error
	}{
		{"attack", l.SetAttack(0)},
		{"release", l.SetRelease(math.NaN())},
		{"hold", l.SetHold(-1)},
		{"threshold", l.SetThreshold(3)},
		{"sample rate", l.SetSampleRate(0)},
	}
	for _, tt := range tests {
		if tt.err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestNewLimiterValidation(t *testing.T) {
	if _, err := NewLimiter(-1); err == nil {
		t.Fatal("expected sample rate error")
	}
	if _, err := NewLimiter(44100, WithLimiterAttack(2000)); err == nil {
		t.Fatal("expected attack error")
	}
	if _, err := NewLimiter(44100, nil, WithLimiterRelease(20)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func BenchmarkLimiterProcessInPlace(b *testing.B) {
	l, _ := NewLimiter(44100)
	buf := testutil.DeterministicSine(440, 44100, 1.5, 128)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		l.ProcessInPlace(buf)
	}
}
