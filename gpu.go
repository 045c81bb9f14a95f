package dotprod

import (
	"context"
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/LynnColeArt/dotprod/kernels"
	"github.com/LynnColeArt/dotprod/metal"
)

// GPU runs the dot_product kernel on the system default Metal device.
//
// Every Execute call is a complete one-shot dispatch: it opens the device,
// loads the library, builds the pipeline, allocates buffers, encodes one
// compute pass, waits for it and releases everything. Nothing is cached
// between calls. A failure at any step is returned; there is no retry and
// no fallback to the CPU.
type GPU struct {
	log      *zap.Logger
	library  kernels.Source
	function string
}

// NewGPU returns a GPU executor.
func NewGPU(opts ...Option) *GPU {
	o := buildOptions(opts)
	return &GPU{log: o.logger, library: o.library, function: o.function}
}

// Backend reports BackendGPU.
func (g *GPU) Backend() Backend { return BackendGPU }

// Execute implements Executor. It blocks until the GPU finishes; ctx is
// only checked before the work is committed.
func (g *GPU) Execute(ctx context.Context, a, b []uint32) ([]uint32, error) {
	const op = "GPU.Execute"
	g.log.Info("using the GPU")

	if err := checkOperands(op, a, b); err != nil {
		return nil, err
	}
	n := len(a)
	if n == 0 {
		return []uint32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	device, err := metal.SystemDefaultDevice()
	if err != nil {
		return nil, NewDeviceError(op, "no device found", err)
	}
	defer device.Release()
	g.log.Debug("selected Metal device", zap.String("device", device.Name()))

	lib, err := g.loadLibrary(device)
	if err != nil {
		return nil, newError(ErrTypeLibrary, op, "failed to load kernel library", err)
	}
	defer lib.Release()

	fn, err := lib.Function(g.function)
	if err != nil {
		return nil, newError(ErrTypeFunction, op, "kernel function "+g.function+" not found", err)
	}
	defer fn.Release()

	// Building the pipeline compiles the function for this device.
	pipeline, err := device.NewComputePipelineState(fn)
	if err != nil {
		return nil, newError(ErrTypePipeline, op, "failed to build compute pipeline", err)
	}
	defer pipeline.Release()

	size := n * ElementSize
	bufA, err := device.NewBufferWithBytes(uint32Bytes(a), metal.StorageModeShared)
	if err != nil {
		return nil, newError(ErrTypeBuffer, op, "failed to allocate operand buffer", err)
	}
	defer bufA.Release()

	bufB, err := device.NewBufferWithBytes(uint32Bytes(b), metal.StorageModeShared)
	if err != nil {
		return nil, newError(ErrTypeBuffer, op, "failed to allocate operand buffer", err)
	}
	defer bufB.Release()

	bufResult, err := device.NewBuffer(size, metal.StorageModeShared)
	if err != nil {
		return nil, newError(ErrTypeBuffer, op, "failed to allocate result buffer", err)
	}
	defer bufResult.Release()

	queue, err := device.NewCommandQueue()
	if err != nil {
		return nil, NewExecutionError(op, "failed to create command queue", err)
	}
	defer queue.Release()

	cmdBuf, err := queue.CommandBuffer()
	if err != nil {
		return nil, NewExecutionError(op, "failed to create command buffer", err)
	}
	defer cmdBuf.Release()

	encoder, err := cmdBuf.ComputeCommandEncoder()
	if err != nil {
		return nil, NewExecutionError(op, "failed to create compute encoder", err)
	}
	defer encoder.Release()

	threads, group := dispatchSize(n, pipeline.MaxTotalThreadsPerThreadgroup())
	g.log.Debug("dispatching",
		zap.String("function", g.function),
		zap.Int("threads", threads),
		zap.Int("threadgroup", group))

	encoder.SetComputePipelineState(pipeline)
	encoder.SetBuffers(0, bufA, bufB, bufResult)
	encoder.DispatchThreads(metal.NewSize(threads, 1, 1), metal.NewSize(group, 1, 1))
	encoder.EndEncoding()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmdBuf.Commit()
	cmdBuf.WaitUntilCompleted()

	if err := cmdBuf.Err(); err != nil {
		return nil, NewExecutionError(op, "command buffer failed", err)
	}
	return bytesUint32(bufResult.Contents()), nil
}

// DeviceInfo describes the Metal device and the dot_product pipeline
// built on it.
type DeviceInfo struct {
	Name                          string
	Precompiled                   bool // library came from a .metallib
	MaxTotalThreadsPerThreadgroup int
	ThreadExecutionWidth          int
}

// Describe opens the default device and builds the kernel pipeline
// without dispatching anything.
func (g *GPU) Describe() (DeviceInfo, error) {
	const op = "GPU.Describe"

	device, err := metal.SystemDefaultDevice()
	if err != nil {
		return DeviceInfo{}, NewDeviceError(op, "no device found", err)
	}
	defer device.Release()

	info := DeviceInfo{Name: device.Name(), Precompiled: g.library.Precompiled()}

	lib, err := g.loadLibrary(device)
	if err != nil {
		return info, newError(ErrTypeLibrary, op, "failed to load kernel library", err)
	}
	defer lib.Release()

	fn, err := lib.Function(g.function)
	if err != nil {
		return info, newError(ErrTypeFunction, op, "kernel function "+g.function+" not found", err)
	}
	defer fn.Release()

	pipeline, err := device.NewComputePipelineState(fn)
	if err != nil {
		return info, newError(ErrTypePipeline, op, "failed to build compute pipeline", err)
	}
	defer pipeline.Release()

	info.MaxTotalThreadsPerThreadgroup = pipeline.MaxTotalThreadsPerThreadgroup()
	info.ThreadExecutionWidth = pipeline.ThreadExecutionWidth()
	return info, nil
}

func (g *GPU) loadLibrary(device *metal.Device) (*metal.Library, error) {
	switch {
	case g.library.Precompiled():
		return device.NewLibraryWithData(g.library.MetalLib)
	case g.library.MSL != "":
		g.log.Debug("no precompiled Metal library, compiling kernel source")
		return device.NewLibraryWithSource(g.library.MSL)
	default:
		return nil, metal.ErrLibrary
	}
}

// dispatchSize returns the grid and threadgroup widths for n elements.
// The threadgroup is clamped to the pipeline limit; a non-positive limit
// means unknown and leaves it at n.
func dispatchSize(n, maxGroup int) (threads, group int) {
	group = n
	if maxGroup > 0 && group > maxGroup {
		group = maxGroup
	}
	return n, group
}

// uint32Bytes lays v out the way the GPU reads it. Apple Silicon is
// little-endian.
func uint32Bytes(v []uint32) []byte {
	out := make([]byte, len(v)*ElementSize)
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*ElementSize:], x)
	}
	return out
}

func bytesUint32(p []byte) []uint32 {
	out := make([]uint32, len(p)/ElementSize)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(p[i*ElementSize:])
	}
	return out
}
