package dotprod

import (
	"context"

	"go.uber.org/zap"

	"github.com/LynnColeArt/dotprod/compute"
)

// Emulated runs the dot_product kernel body on host goroutines with the
// same grid and threadgroup sizing the GPU path uses.
type Emulated struct {
	log            *zap.Logger
	maxThreadgroup int
}

// NewEmulated returns an Emulated executor.
func NewEmulated(opts ...Option) *Emulated {
	o := buildOptions(opts)
	return &Emulated{log: o.logger, maxThreadgroup: EmulatedMaxThreadgroup}
}

// Backend reports BackendEmulated.
func (e *Emulated) Backend() Backend { return BackendEmulated }

// Execute implements Executor.
func (e *Emulated) Execute(ctx context.Context, a, b []uint32) ([]uint32, error) {
	const op = "Emulated.Execute"
	e.log.Info("using the emulated GPU")

	if err := checkOperands(op, a, b); err != nil {
		return nil, err
	}
	n := len(a)
	result := make([]uint32, n)
	if n == 0 {
		return result, nil
	}

	threads, group := dispatchSize(n, e.maxThreadgroup)
	e.log.Debug("dispatching",
		zap.Int("threads", threads),
		zap.Int("threadgroup", group))

	kernel := func(tid compute.ThreadID) {
		i := tid.Global()
		result[i] = a[i] * b[i]
	}
	if err := compute.LaunchThreads(ctx, kernel, compute.D1(threads), compute.D1(group)); err != nil {
		return nil, NewExecutionError(op, "kernel launch failed", err)
	}
	return result, nil
}
