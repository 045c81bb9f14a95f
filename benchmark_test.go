package dotprod

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/LynnColeArt/dotprod/metal"
)

func benchOperands(n int) (a, b []uint32) {
	a = make([]uint32, n)
	b = make([]uint32, n)
	for i := range a {
		a[i] = uint32(i)
		b[i] = uint32(3*i + 1)
	}
	return a, b
}

// Benchmark each backend at sizes from one threadgroup up. The GPU number
// includes the full one-shot setup: device, library, pipeline, buffers.
func BenchmarkExecute(b *testing.B) {
	sizes := []int{6, 1024, 65536, 1 << 20}
	ctx := context.Background()

	for _, e := range []Executor{NewCPU(), NewEmulated(), NewGPU()} {
		for _, n := range sizes {
			b.Run(fmt.Sprintf("%s/N_%d", backendOf(e), n), func(b *testing.B) {
				x, y := benchOperands(n)
				if _, err := e.Execute(ctx, x, y); err != nil {
					if errors.Is(err, metal.ErrUnavailable) || errors.Is(err, metal.ErrNoDevice) {
						b.Skipf("Metal not available: %v", err)
					}
					b.Fatal(err)
				}

				b.SetBytes(int64(3 * n * ElementSize)) // Read a, read b, write result
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := e.Execute(ctx, x, y); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
