package dotprod

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/LynnColeArt/dotprod/kernels"
)

// Executor runs the elementwise product of two equal-length vectors.
type Executor interface {
	Execute(ctx context.Context, a, b []uint32) ([]uint32, error)
}

// Backend selects an Executor implementation.
type Backend int

const (
	BackendGPU Backend = iota
	BackendCPU
	BackendEmulated
)

// Backends lists every backend in display order.
var Backends = []Backend{BackendGPU, BackendCPU, BackendEmulated}

func (b Backend) String() string {
	switch b {
	case BackendGPU:
		return "gpu"
	case BackendCPU:
		return "cpu"
	case BackendEmulated:
		return "emulated"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend maps a backend name to a Backend. Matching ignores case.
func ParseBackend(s string) (Backend, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, b := range Backends {
		if b.String() == name {
			return b, nil
		}
	}
	return 0, NewInvalidArgError("ParseBackend", fmt.Sprintf("unknown backend %q", s))
}

type options struct {
	logger   *zap.Logger
	library  kernels.Source
	function string
}

// Option configures an Executor.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLibrary replaces the embedded kernel library used by the GPU backend.
func WithLibrary(src kernels.Source) Option {
	return func(o *options) { o.library = src }
}

// WithFunction replaces the kernel function name used by the GPU backend.
func WithFunction(name string) Option {
	return func(o *options) { o.function = name }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		library:  kernels.Default(),
		function: DefaultFunction,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the CPU executor when useCPU is set and the GPU executor
// otherwise.
func New(useCPU bool, opts ...Option) Executor {
	if useCPU {
		return NewCPU(opts...)
	}
	return NewGPU(opts...)
}

// NewBackend returns the executor for b.
func NewBackend(b Backend, opts ...Option) (Executor, error) {
	switch b {
	case BackendGPU:
		return NewGPU(opts...), nil
	case BackendCPU:
		return NewCPU(opts...), nil
	case BackendEmulated:
		return NewEmulated(opts...), nil
	default:
		return nil, NewInvalidArgError("NewBackend", fmt.Sprintf("unknown backend %v", b))
	}
}

// checkOperands enforces the equal-length invariant before any work.
func checkOperands(op string, a, b []uint32) error {
	if len(a) != len(b) {
		return NewLengthMismatchError(op, len(a), len(b))
	}
	return nil
}

// backendOf names the backend of e, or its type when it is not one of
// ours.
func backendOf(e Executor) string {
	if b, ok := e.(interface{ Backend() Backend }); ok {
		return b.Backend().String()
	}
	return fmt.Sprintf("%T", e)
}
