// Package window generates the analysis windows used by the output meter.
package window

import (
	"fmt"
	"math"
)

// Type selects a window shape.
type Type int

const (
	TypeHann Type = iota
	TypeHamming
	TypeBlackman
	TypeRectangular
)

var names = map[Type]string{
	TypeHann:        "hann",
	TypeHamming:     "hamming",
	TypeBlackman:    "blackman",
	TypeRectangular: "rectangular",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType returns the window named s.
func ParseType(s string) (Type, error) {
	for t, name := range names {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown window type: %q", s)
}

// Generate returns size coefficients of window t. The periodic form omits
// the closing sample of the symmetric form, as used before an FFT.
func Generate(t Type, size int, periodic bool) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be > 0: %d", size)
	}
	if _, ok := names[t]; !ok {
		return nil, fmt.Errorf("unknown window type: %d", int(t))
	}
	out := make([]float64, size)
	if size == 1 {
		out[0] = 1
		return out, nil
	}
	span := float64(size - 1)
	if periodic {
		span = float64(size)
	}
	for i := range out {
		x := 2 * math.Pi * float64(i) / span
		switch t {
		case TypeHann:
			out[i] = 0.5 - 0.5*math.Cos(x)
		case TypeHamming:
			out[i] = 0.54 - 0.46*math.Cos(x)
		case TypeBlackman:
			out[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
		default:
			out[i] = 1
		}
	}
	return out, nil
}
