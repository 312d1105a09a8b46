package signal_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fidelity/dsp/core"
	"github.com/cwbudde/algo-fidelity/dsp/signal"
)

func ExampleGenerator_Sine() {
	g := signal.NewGenerator(core.WithSampleRate(1000))
	s, err := g.Sine(250, 1, 5)
	if err != nil {
		panic(err)
	}
	x := s.Real()
	for i := range x {
		if math.Abs(x[i]) < 1e-12 {
			x[i] = 0
		}
	}

	fmt.Printf("%.0f %.0f %.0f %.0f %.0f\n", x[0], x[1], x[2], x[3], x[4])

	// Output:
	// 0 1 0 -1 0
}

func ExampleSignal_Normalized() {
	s, err := signal.FromInt16([]int16{-16384, 8192}, 48000, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(s.Normalized().Real())

	// Output:
	// [-0.5 0.25]
}
