package dotprod

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LynnColeArt/dotprod/kernels"
	"github.com/LynnColeArt/dotprod/metal"
)

func TestDispatchSize(t *testing.T) {
	tests := []struct {
		n, max      int
		wantThreads int
		wantGroup   int
	}{
		{6, 1024, 6, 6},
		{1024, 1024, 1024, 1024},
		{5000, 1024, 5000, 1024},
		{5000, 0, 5000, 5000},
		{1, 32, 1, 1},
	}
	for _, tt := range tests {
		threads, group := dispatchSize(tt.n, tt.max)
		assert.Equal(t, tt.wantThreads, threads, "n=%d max=%d", tt.n, tt.max)
		assert.Equal(t, tt.wantGroup, group, "n=%d max=%d", tt.n, tt.max)
	}
}

func TestUint32ByteLayout(t *testing.T) {
	v := []uint32{1, 0x01020304, 0xffffffff}
	p := uint32Bytes(v)
	assert.Equal(t, []byte{
		1, 0, 0, 0,
		4, 3, 2, 1,
		0xff, 0xff, 0xff, 0xff,
	}, p)
	assert.Equal(t, v, bytesUint32(p))
	assert.Empty(t, bytesUint32(nil))
}

// gpuOrSkip runs the example on the GPU once and skips the test when
// Metal is unusable here.
func gpuOrSkip(t *testing.T, opts ...Option) *GPU {
	t.Helper()
	g := NewGPU(opts...)
	a, b := ExampleOperands()
	_, err := g.Execute(context.Background(), a, b)
	SkipIfNoGPU(t, err)
	return g
}

func TestGPUUnavailableIsDeviceError(t *testing.T) {
	a, b := ExampleOperands()
	_, err := NewGPU().Execute(context.Background(), a, b)
	if err == nil {
		t.Skip("Metal device present")
	}
	if errors.Is(err, metal.ErrUnavailable) || errors.Is(err, metal.ErrNoDevice) {
		assert.True(t, IsDeviceError(err))
		assert.Contains(t, err.Error(), "no device found")
	}
}

func TestGPUExampleScenario(t *testing.T) {
	g := gpuOrSkip(t)
	a, b := ExampleOperands()
	assert.Equal(t, ExampleResult(), ExecuteOrFail(t, g, a, b))
}

func TestGPUMatchesCPU(t *testing.T) {
	g := gpuOrSkip(t)

	// Larger than one threadgroup so the clamped dispatch is exercised.
	const n = 5000
	a := make([]uint32, n)
	b := make([]uint32, n)
	for i := range a {
		a[i] = uint32(i*2654435761) ^ 0x9e3779b9
		b[i] = uint32(i + 7)
	}

	p, err := Verify(context.Background(), a, b, NewCPU(), g)
	require.NoError(t, err)
	assert.True(t, p.OK(), p.String())
}

func TestGPURuntimeSourceCompile(t *testing.T) {
	g := gpuOrSkip(t, WithLibrary(kernels.Source{MSL: kernels.MSL()}))
	a, b := ExampleOperands()
	assert.Equal(t, ExampleResult(), ExecuteOrFail(t, g, a, b))
}

func TestGPUMissingFunction(t *testing.T) {
	gpuOrSkip(t)
	g := NewGPU(WithFunction("no_such_kernel"))

	a, b := ExampleOperands()
	_, err := g.Execute(context.Background(), a, b)
	require.Error(t, err)
	assert.True(t, IsFunctionError(err))
	assert.True(t, errors.Is(err, metal.ErrFunctionNotFound))
}

func TestGPUBadLibrary(t *testing.T) {
	gpuOrSkip(t)
	a, b := ExampleOperands()

	_, err := NewGPU(WithLibrary(kernels.Source{MetalLib: []byte("garbage")})).Execute(context.Background(), a, b)
	assert.True(t, IsLibraryError(err))

	_, err = NewGPU(WithLibrary(kernels.Source{})).Execute(context.Background(), a, b)
	assert.True(t, IsLibraryError(err))
	assert.True(t, errors.Is(err, metal.ErrLibrary))

	_, err = NewGPU(WithLibrary(kernels.Source{MSL: "kernel void broken("})).Execute(context.Background(), a, b)
	assert.True(t, IsLibraryError(err))
}
