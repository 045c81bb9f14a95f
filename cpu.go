package dotprod

import (
	"context"

	"go.uber.org/zap"
)

// CPU computes the product on the calling goroutine.
type CPU struct {
	log *zap.Logger
}

// NewCPU returns a CPU executor.
func NewCPU(opts ...Option) *CPU {
	o := buildOptions(opts)
	return &CPU{log: o.logger}
}

// Backend reports BackendCPU.
func (c *CPU) Backend() Backend { return BackendCPU }

// Execute implements Executor.
func (c *CPU) Execute(ctx context.Context, a, b []uint32) ([]uint32, error) {
	c.log.Info("using the CPU")

	if err := checkOperands("CPU.Execute", a, b); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]uint32, len(a))
	for i := range a {
		result[i] = a[i] * b[i]
	}
	return result, nil
}
