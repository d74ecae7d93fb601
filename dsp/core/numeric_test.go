package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
		{name: "nan", value: math.NaN(), min: -1, max: 1, expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(70, 20, 60); got != 60 {
		t.Fatalf("ClampInt(70) = %d, want 60", got)
	}
	if got := ClampInt(-3, 0, 8); got != 0 {
		t.Fatalf("ClampInt(-3) = %d, want 0", got)
	}
	if got := ClampInt(4, 8, 0); got != 4 {
		t.Fatalf("ClampInt(swapped) = %d, want 4", got)
	}
}

func TestMapRange(t *testing.T) {
	tests := []struct {
		x, inMin, inMax, outMin, outMax int
		want                            int
	}{
		{0, 0, 1023, 1, 300, 1},
		{1023, 0, 1023, 1, 300, 300},
		{511, 0, 1023, 1, 300, 150},
		{512, 0, 1023, 0, 60, 30},
		{1023, 0, 1023, 0, 100, 100},
		{1, 0, 1023, 0, 100, 0},
		{5, 3, 3, 7, 9, 7},
	}

	for _, tt := range tests {
		got := MapRange(tt.x, tt.inMin, tt.inMax, tt.outMin, tt.outMax)
		if got != tt.want {
			t.Errorf("MapRange(%d, %d, %d, %d, %d) = %d, want %d",
				tt.x, tt.inMin, tt.inMax, tt.outMin, tt.outMax, got, tt.want)
		}
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
}

func TestFlushDenormals(t *testing.T) {
	if got := FlushDenormals(1e-35); got != 0 {
		t.Fatalf("FlushDenormals(1e-35) = %g, want 0", got)
	}
	if got := FlushDenormals(-0.25); got != -0.25 {
		t.Fatalf("FlushDenormals(-0.25) = %g, want -0.25", got)
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}
