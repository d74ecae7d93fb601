package window

import (
	"math"
	"testing"
)

func TestGenerateEndpoints(t *testing.T) {
	tests := []struct {
		typ        Type
		first, mid float64
	}{
		{TypeHann, 0, 1},
		{TypeHamming, 0.08, 1},
		{TypeBlackman, 0, 1},
		{TypeRectangular, 1, 1},
	}
	for _, tt := range tests {
		w, err := Generate(tt.typ, 9, false)
		if err != nil {
			t.Fatalf("%s: %v", tt.typ, err)
		}
		if math.Abs(w[0]-tt.first) > 1e-12 || math.Abs(w[8]-tt.first) > 1e-12 {
			t.Errorf("%s endpoints = %g, %g, want %g", tt.typ, w[0], w[8], tt.first)
		}
		if math.Abs(w[4]-tt.mid) > 1e-12 {
			t.Errorf("%s centre = %g, want %g", tt.typ, w[4], tt.mid)
		}
	}
}

func TestPeriodicHann(t *testing.T) {
	w, err := Generate(TypeHann, 64, true)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(w[32]-1) > 1e-12 || w[0] != 0 {
		t.Fatalf("periodic hann w[0]=%g w[32]=%g", w[0], w[32])
	}
	var sum float64
	for _, c := range w {
		sum += c
	}
	if math.Abs(sum/64-0.5) > 1e-12 {
		t.Fatalf("mean = %g, want 0.5", sum/64)
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := Generate(TypeHann, 0, true); err == nil {
		t.Error("expected size error")
	}
	if _, err := Generate(Type(42), 8, true); err == nil {
		t.Error("expected type error")
	}
	if w, err := Generate(TypeBlackman, 1, false); err != nil || w[0] != 1 {
		t.Errorf("single-sample window = %v, %v", w, err)
	}
}

func TestParseType(t *testing.T) {
	for typ := range names {
		got, err := ParseType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseType("kaiser"); err == nil {
		t.Error("expected error for unknown name")
	}
}
