package hostaudio

import (
	"encoding/binary"
	"math"
	"testing"
)

func counting() (BlockFunc, *int) {
	calls := 0
	return func(outL, outR []float64) {
		for i := range outL {
			outL[i] = float64(calls*len(outL) + i)
			outR[i] = -outL[i]
		}
		calls++
	}, &calls
}

func frame(p []byte, i int) (l, r float32) {
	off := i * bytesPerFrame
	l = math.Float32frombits(binary.LittleEndian.Uint32(p[off:]))
	r = math.Float32frombits(binary.LittleEndian.Uint32(p[off+4:]))
	return l, r
}

func TestStreamInterleaves(t *testing.T) {
	render, calls := counting()
	s, err := NewStream(4, render)
	if err != nil {
		t.Fatal(err)
	}
	p := make([]byte, 10*bytesPerFrame)
	n, err := s.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	for i := range 10 {
		l, r := frame(p, i)
		if l != float32(i) || r != -float32(i) {
			t.Fatalf("frame %d = (%g, %g), want (%d, %d)", i, l, r, i, -i)
		}
	}
	if *calls != 3 || s.Blocks() != 3 {
		t.Fatalf("rendered %d blocks, want 3", *calls)
	}
}

func TestStreamSplitFrames(t *testing.T) {
	render, _ := counting()
	s, err := NewStream(2, render)
	if err != nil {
		t.Fatal(err)
	}
	var all []byte
	for _, size := range []int{3, 7, 1, 13, 8} {
		p := make([]byte, size)
		if _, err := s.Read(p); err != nil {
			t.Fatal(err)
		}
		all = append(all, p...)
	}
	for i := range len(all) / bytesPerFrame {
		if l, r := frame(all, i); l != float32(i) || r != -float32(i) {
			t.Fatalf("frame %d = (%g, %g)", i, l, r)
		}
	}
}

func TestNewStreamRejects(t *testing.T) {
	render, _ := counting()
	if _, err := NewStream(0, render); err == nil {
		t.Fatal("expected block size error")
	}
	if _, err := NewStream(8, nil); err == nil {
		t.Fatal("expected nil render error")
	}
}

func BenchmarkStreamRead(b *testing.B) {
	s, err := NewStream(128, func(outL, outR []float64) {})
	if err != nil {
		b.Fatal(err)
	}
	p := make([]byte, 4096)
	b.ReportAllocs()
	for b.Loop() {
		_, _ = s.Read(p)
	}
}
