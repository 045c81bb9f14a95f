package dotprod

import (
	"context"
	"errors"
	"testing"

	"github.com/LynnColeArt/dotprod/metal"
)

// ExecuteOrFail runs e and fails the test if it returns an error.
func ExecuteOrFail(t testing.TB, e Executor, a, b []uint32) []uint32 {
	t.Helper()
	out, err := e.Execute(context.Background(), a, b)
	if err != nil {
		t.Fatalf("%s Execute failed: %v", backendOf(e), err)
	}
	return out
}

// SkipIfNoGPU skips the test when err says Metal is unusable on this host.
func SkipIfNoGPU(t testing.TB, err error) {
	t.Helper()
	if errors.Is(err, metal.ErrUnavailable) || errors.Is(err, metal.ErrNoDevice) {
		t.Skipf("Metal not available: %v", err)
	}
}
