// Package dotprod configuration constants
package dotprod

import "github.com/LynnColeArt/dotprod/kernels"

// Kernel dispatch parameters
const (
	// Kernel entry point looked up in the Metal library
	DefaultFunction = kernels.DotProductFunction

	// Threadgroup ceiling used by the emulated backend. Apple GPUs report
	// 1024 from maxTotalThreadsPerThreadgroup for simple kernels.
	EmulatedMaxThreadgroup = 1024

	// Size of one operand element in bytes
	ElementSize = 4
)

// ExampleOperands returns fresh copies of the demonstration input.
func ExampleOperands() (a, b []uint32) {
	return []uint32{3, 4, 1, 7, 10, 20}, []uint32{2, 5, 6, 9, 5, 10}
}

// ExampleResult is the elementwise product of ExampleOperands.
func ExampleResult() []uint32 {
	return []uint32{6, 20, 6, 63, 50, 200}
}
