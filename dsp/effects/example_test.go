package effects_test

import (
	"fmt"

	"github.com/cwbudde/algo-chaosdelay/dsp/effects"
)

type fixedRand struct {
	r int
	f float64
}

func (f fixedRand) IntN(int) int      { return f.r }
func (f fixedRand) Float64() float64 { return f.f }

func ExampleDegrade() {
	// r=0 fires at any density > 0; f=0.5 adds no noise.
	rng := fixedRand{r: 0, f: 0.5}
	fmt.Println(effects.CrushBits(20))
	fmt.Println(effects.Degrade(0.3, 20, 5, rng))
	fmt.Println(effects.Degrade(0.3, 20, 0, rng))
	// Output:
	// 6
	// 0.296875
	// 0.3
}

func ExampleTapDelay() {
	d, err := effects.NewTapDelay(1000)
	if err != nil {
		panic(err)
	}
	_ = d.SetTime(0, 0.002)
	_ = d.SetTime(1, 0.003)

	in := []float64{1, 0, 0, 0, 0}
	left := make([]float64, len(in))
	right := make([]float64, len(in))
	d.ProcessBlock(in, left, right)
	fmt.Println(left)
	fmt.Println(right)
	// Output:
	// [0 0 1 0 0]
	// [0 0 0 1 0]
}
