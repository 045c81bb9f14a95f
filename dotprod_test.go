package dotprod

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// hostExecutors are the executors that run on every platform.
func hostExecutors() []Executor {
	return []Executor{NewCPU(), NewEmulated()}
}

func TestExampleScenario(t *testing.T) {
	a, b := ExampleOperands()
	for _, e := range hostExecutors() {
		t.Run(backendOf(e), func(t *testing.T) {
			got := ExecuteOrFail(t, e, a, b)
			if diff := cmp.Diff(ExampleResult(), got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecuteDoesNotModifyOperands(t *testing.T) {
	a, b := ExampleOperands()
	wantA, wantB := ExampleOperands()
	for _, e := range hostExecutors() {
		ExecuteOrFail(t, e, a, b)
	}
	assert.Equal(t, wantA, a)
	assert.Equal(t, wantB, b)
}

func TestLengthMismatchFailsCleanly(t *testing.T) {
	executors := append(hostExecutors(), NewGPU())
	for _, e := range executors {
		t.Run(backendOf(e), func(t *testing.T) {
			out, err := e.Execute(context.Background(), []uint32{1, 2, 3}, []uint32{1, 2})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrLengthMismatch))
			assert.True(t, IsInvalidArgError(err))
			assert.Contains(t, err.Error(), "got 3 and 2")
		})
	}
}

func TestEmptyOperands(t *testing.T) {
	executors := append(hostExecutors(), NewGPU())
	for _, e := range executors {
		t.Run(backendOf(e), func(t *testing.T) {
			out := ExecuteOrFail(t, e, nil, []uint32{})
			assert.NotNil(t, out)
			assert.Empty(t, out)
		})
	}
}

func TestProductWrapsOnOverflow(t *testing.T) {
	a := []uint32{math.MaxUint32, 1 << 16, 65537}
	b := []uint32{2, 1 << 16, 65537}
	want := []uint32{math.MaxUint32 - 1, 0, 131073}

	for _, e := range hostExecutors() {
		assert.Equal(t, want, ExecuteOrFail(t, e, a, b), backendOf(e))
	}
}

func TestOutputLengthMatchesInput(t *testing.T) {
	for _, n := range []int{1, 7, 1024, 1025, 4099} {
		a := make([]uint32, n)
		b := make([]uint32, n)
		for i := range a {
			a[i] = uint32(i)
			b[i] = uint32(n - i)
		}
		for _, e := range hostExecutors() {
			out := ExecuteOrFail(t, e, a, b)
			require.Len(t, out, n, "%s n=%d", backendOf(e), n)
			for i := range out {
				require.Equal(t, a[i]*b[i], out[i], "%s n=%d index %d", backendOf(e), n, i)
			}
		}
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, b := ExampleOperands()
	_, err := NewCPU().Execute(ctx, a, b)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewEmulated().Execute(ctx, a, b)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsExecutionError(err))
}

func TestNewSelectsStrategy(t *testing.T) {
	assert.IsType(t, &CPU{}, New(true))
	assert.IsType(t, &GPU{}, New(false))
}

func TestNewBackend(t *testing.T) {
	for _, b := range Backends {
		e, err := NewBackend(b)
		require.NoError(t, err)
		assert.Equal(t, b.String(), backendOf(e))
	}

	_, err := NewBackend(Backend(42))
	assert.True(t, IsInvalidArgError(err))
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
	}{
		{"gpu", BackendGPU},
		{"CPU", BackendCPU},
		{" emulated ", BackendEmulated},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseBackend("tpu")
	assert.True(t, IsInvalidArgError(err))
	_, err = ParseBackend("")
	assert.Error(t, err)

	assert.Equal(t, "Backend(9)", Backend(9).String())
}

func TestExecutorsLogBackend(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	a, b := ExampleOperands()
	ExecuteOrFail(t, NewCPU(WithLogger(logger)), a, b)
	ExecuteOrFail(t, NewEmulated(WithLogger(logger)), a, b)

	assert.Equal(t, 1, logs.FilterMessage("using the CPU").Len())
	assert.Equal(t, 1, logs.FilterMessage("using the emulated GPU").Len())
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	c := NewCPU(WithLogger(nil))
	require.NotNil(t, c.log)
	a, b := ExampleOperands()
	ExecuteOrFail(t, c, a, b)
}
