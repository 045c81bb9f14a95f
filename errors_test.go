package dotprod

import (
	"errors"
	"fmt"
	"testing"

	"github.com/LynnColeArt/dotprod/metal"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		wantMsg  string
		checkFn  func(error) bool
	}{
		{
			name:     "Length Mismatch",
			err:      NewLengthMismatchError("CPU.Execute", 2, 1),
			wantType: ErrTypeInvalidArg,
			wantOp:   "CPU.Execute",
			wantMsg:  "length mismatch: got 2 and 1",
			checkFn:  IsInvalidArgError,
		},
		{
			name:     "No Device",
			err:      NewDeviceError("GPU.Execute", "no device found", metal.ErrNoDevice),
			wantType: ErrTypeDevice,
			wantOp:   "GPU.Execute",
			wantMsg:  "no device found",
			checkFn:  IsDeviceError,
		},
		{
			name:     "Library",
			err:      newError(ErrTypeLibrary, "GPU.Execute", "failed to load library", metal.ErrLibrary),
			wantType: ErrTypeLibrary,
			wantOp:   "GPU.Execute",
			wantMsg:  "failed to load library",
			checkFn:  IsLibraryError,
		},
		{
			name:     "Function",
			err:      newError(ErrTypeFunction, "GPU.Execute", "kernel function not found", metal.ErrFunctionNotFound),
			wantType: ErrTypeFunction,
			wantOp:   "GPU.Execute",
			wantMsg:  "kernel function not found",
			checkFn:  IsFunctionError,
		},
		{
			name:     "Pipeline",
			err:      newError(ErrTypePipeline, "GPU.Execute", "failed to build pipeline", metal.ErrPipeline),
			wantType: ErrTypePipeline,
			wantOp:   "GPU.Execute",
			wantMsg:  "failed to build pipeline",
			checkFn:  IsPipelineError,
		},
		{
			name:     "Buffer",
			err:      newError(ErrTypeBuffer, "GPU.Execute", "failed to allocate buffer", metal.ErrBuffer),
			wantType: ErrTypeBuffer,
			wantOp:   "GPU.Execute",
			wantMsg:  "failed to allocate buffer",
			checkFn:  IsBufferError,
		},
		{
			name:     "Execution",
			err:      NewExecutionError("GPU.Execute", "command buffer failed", metal.ErrExecution),
			wantType: ErrTypeExecution,
			wantOp:   "GPU.Execute",
			wantMsg:  "command buffer failed",
			checkFn:  IsExecutionError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e *DotProdError
			if !errors.As(tt.err, &e) {
				t.Fatalf("Expected DotProdError, got %T", tt.err)
			}

			if e.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", e.Type, tt.wantType)
			}
			if e.Op != tt.wantOp {
				t.Errorf("Op = %v, want %v", e.Op, tt.wantOp)
			}
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %v, want %v", e.Message, tt.wantMsg)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("Type check function returned false")
			}
			if tt.err.Error() == "" {
				t.Error("Error string is empty")
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := NewDeviceError("GPU.Execute", "no device found", metal.ErrNoDevice)

	if !errors.Is(err, metal.ErrNoDevice) {
		t.Error("errors.Is() should find the metal sentinel")
	}
	if IsExecutionError(err) {
		t.Error("device error reported as execution error")
	}

	wrapped := fmt.Errorf("running example: %w", err)
	if !IsDeviceError(wrapped) {
		t.Error("predicate should see through fmt.Errorf wrapping")
	}
}

func TestLengthMismatchIs(t *testing.T) {
	err := NewLengthMismatchError("Execute", 6, 5)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Error("expected errors.Is(err, ErrLengthMismatch)")
	}
	want := "dotprod InvalidArgument error in Execute: length mismatch: got 6 and 5 (caused by: operand length mismatch)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrTypeInvalidArg, "InvalidArgument"},
		{ErrTypeDevice, "Device"},
		{ErrTypeLibrary, "Library"},
		{ErrTypeFunction, "Function"},
		{ErrTypePipeline, "Pipeline"},
		{ErrTypeBuffer, "Buffer"},
		{ErrTypeExecution, "Execution"},
		{ErrorType(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.errType.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTypeOfPlainError(t *testing.T) {
	if _, ok := TypeOf(errors.New("plain")); ok {
		t.Error("TypeOf should not match a plain error")
	}
}
