package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-synth/dsp/core"
)

func ExampleMIDIToHz() {
	fmt.Printf("%.2f %.2f %.2f\n", core.MIDIToHz(57), core.MIDIToHz(69), core.MIDIToHz(60))

	// Output:
	// 220.00 440.00 261.63
}

func ExampleEnsureLen() {
	buf := make([]float32, 2, 4)
	buf[0], buf[1] = 1, 2
	buf = core.EnsureLen(buf, 4)
	buf[2], buf[3] = 3, 4
	fmt.Println(len(buf), cap(buf), buf)

	core.Zero(buf[:2])
	fmt.Println(buf)

	// Output:
	// 4 4 [1 2 3 4]
	// [0 0 3 4]
}
