package ladder_test

import (
	"fmt"

	"github.com/cwbudde/algo-chaosdelay/pedal/ladder"
	"github.com/cwbudde/algo-chaosdelay/pedal/params"
)

func ExampleLadder() {
	p := params.New()
	l := ladder.New(p, nil)
	l.Raise()
	l.Raise()
	fmt.Println(l.Level(), p.Noise(), p.Density())
	l.Reset()
	fmt.Println(l.Level(), p.Noise(), p.Density())
	// Output:
	// 2 30 25
	// 0 20 5
}
