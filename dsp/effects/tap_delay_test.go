package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-chaosdelay/dsp/delay"
	"github.com/cwbudde/algo-chaosdelay/dsp/interp"
	"github.com/cwbudde/algo-chaosdelay/internal/testutil"
)

func TestTapDelayImpulsePerTap(t *testing.T) {
	const sampleRate = 1000.0

	d, err := NewTapDelay(sampleRate)
	if err != nil {
		t.Fatalf("NewTapDelay: %v", err)
	}
	if err := d.SetTime(0, 0.010); err != nil {
		t.Fatalf("SetTime(0): %v", err)
	}
	if err := d.SetTime(1, 0.025); err != nil {
		t.Fatalf("SetTime(1): %v", err)
	}

	in := testutil.Impulse(64, 0)
	left := make([]float64, len(in))
	right := make([]float64, len(in))
	d.ProcessBlock(in, left, right)

	testutil.RequireSliceEqual(t, left, testutil.Impulse(64, 10))
	testutil.RequireSliceEqual(t, right, testutil.Impulse(64, 25))
}

func TestTapDelayFlushesDenormalTail(t *testing.T) {
	d, err := NewTapDelay(1000, WithTapCount(1))
	if err != nil {
		t.Fatalf("NewTapDelay: %v", err)
	}
	if err := d.SetTime(0, 0.004); err != nil {
		t.Fatalf("SetTime: %v", err)
	}

	in := []float64{1e-35, -1e-32, 0.5, 0, 0, 0, 0, 0}
	out := make([]float64, len(in))
	d.ProcessBlock(in, out)
	testutil.RequireSliceEqual(t, out, []float64{0, 0, 0, 0, 0, 0, 0.5, 0})
}

func TestTapDelayStateCarriesAcrossBlocks(t *testing.T) {
	d, err := NewTapDelay(1000, WithTapCount(1))
	if err != nil {
		t.Fatalf("NewTapDelay: %v", err)
	}
	if err := d.SetTime(0, 0.012); err != nil {
		t.Fatalf("SetTime: %v", err)
	}

	blocks := testutil.Blocks(testutil.Impulse(32, 0), 8)
	var out []float64
	for _, blk := range blocks {
		d.ProcessInPlace(blk)
		out = append(out, blk...)
	}
	testutil.RequireSliceEqual(t, out, testutil.Impulse(32, 12))
}

func TestTapDelaySetTargetTimeRampsGradually(t *testing.T) {
	const sampleRate = 1000.0

	d, err := NewTapDelay(sampleRate)
	if err != nil {
		t.Fatalf("NewTapDelay: %v", err)
	}
	if err := d.SetTime(0, 0.25); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	start := d.CurrentDelaySamples(0)

	if err := d.SetTargetTime(0, 0.01); err != nil {
		t.Fatalf("SetTargetTime: %v", err)
	}
	d.ProcessBlock(make([]float64, 10))

	current := d.CurrentDelaySamples(0)
	if current >= start {
		t.Errorf("delay did not ramp: current=%v, start=%v", current, start)
	}
	if current <= 10 {
		t.Errorf("delay reached target too fast: current=%v", current)
	}
	if d.CurrentDelaySamples(1) != 1 {
		t.Errorf("untouched tap moved: %v", d.CurrentDelaySamples(1))
	}
}

func TestTapDelaySetTargetTimeConverges(t *testing.T) {
	const sampleRate = 1000.0

	d, err := NewTapDelay(sampleRate)
	if err != nil {
		t.Fatalf("NewTapDelay: %v", err)
	}
	if err := d.SetTime(0, 0.25); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	if err := d.SetTargetTime(0, 0.01); err != nil {
		t.Fatalf("SetTargetTime: %v", err)
	}

	// Well past 5 time constants of the 10 ms smoother.
	d.ProcessBlock(make([]float64, 500))

	if got := d.CurrentDelaySamples(0); math.Abs(got-10) > 0.5 {
		t.Errorf("did not converge: got=%v, want=10", got)
	}
}

func TestTapDelaySetTargetTimeClamped(t *testing.T) {
	d, err := NewTapDelay(1000, WithTapMaxTime(0.1))
	if err != nil {
		t.Fatalf("NewTapDelay: %v", err)
	}

	d.SetTargetTimeClamped(5)
	for i := range d.Taps() {
		if got := d.TargetDelaySamples(i); got != d.MaxDelaySamples() {
			t.Fatalf("tap %d target = %v, want %v", i, got, d.MaxDelaySamples())
		}
	}

	d.SetTargetTimeClamped(math.NaN())
	if got := d.TargetDelaySamples(0); got != 1 {
		t.Fatalf("NaN target = %v, want 1", got)
	}
}

func TestTapDelayLinearInterpolation(t *testing.T) {
	d, err := NewTapDelay(1000, WithTapCount(1), WithTapInterpolation(delay.WithMode(interp.Linear)))
	if err != nil {
		t.Fatalf("NewTapDelay: %v", err)
	}
	if err := d.SetTime(0, 0.0025); err != nil {
		t.Fatalf("SetTime: %v", err)
	}

	out := make([]float64, 8)
	d.ProcessBlock(testutil.Impulse(8, 0), out)
	// 2.5 samples splits the impulse between samples 2 and 3.
	testutil.RequireSliceNearlyEqual(t, out, []float64{0, 0, 0.5, 0.5, 0, 0, 0, 0}, 1e-12)
}

func TestTapDelayValidation(t *testing.T) {
	if _, err := NewTapDelay(0); err == nil {
		t.Fatal("expected sample rate error")
	}
	if _, err := NewTapDelay(1000, WithTapCount(0)); err == nil {
		t.Fatal("expected tap count error")
	}
	if _, err := NewTapDelay(1000, WithTapMaxTime(-1)); err == nil {
		t.Fatal("expected max time error")
	}
	if _, err := NewTapDelay(1000, WithTapSmoothing(0)); err == nil {
		t.Fatal("expected smoothing error")
	}

	d, err := NewTapDelay(1000)
	if err != nil {
		t.Fatalf("NewTapDelay: %v", err)
	}
	if err := d.SetTime(2, 0.01); err == nil {
		t.Fatal("expected tap index error")
	}
	if err := d.SetTime(0, 1); err == nil {
		t.Fatal("expected time range error")
	}
}

func TestTapDelayReset(t *testing.T) {
	d, _ := NewTapDelay(1000, WithTapCount(1))
	_ = d.SetTime(0, 0.005)
	d.ProcessBlock(testutil.DC(1, 16))

	d.Reset()
	out := make([]float64, 16)
	d.ProcessBlock(make([]float64, 16), out)
	testutil.RequireSliceEqual(t, out, make([]float64, 16))
}

func BenchmarkTapDelayProcessBlock(b *testing.B) {
	d, _ := NewTapDelay(44100)
	d.SetTargetTimeClamped(0.2)
	in := testutil.DeterministicSine(440, 44100, 0.5, 128)
	left := make([]float64, 128)
	right := make([]float64, 128)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		d.ProcessBlock(in, left, right)
	}
}
