// Package dotprod structured error types for better error handling
package dotprod

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Invalid argument errors
	ErrTypeInvalidArg ErrorType = iota
	// No usable compute device
	ErrTypeDevice
	// Kernel library could not be loaded or compiled
	ErrTypeLibrary
	// Kernel function missing from the library
	ErrTypeFunction
	// Compute pipeline could not be built
	ErrTypePipeline
	// Device buffer allocation errors
	ErrTypeBuffer
	// Command encoding or execution errors
	ErrTypeExecution
)

// DotProdError represents a structured error with context
type DotProdError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *DotProdError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dotprod %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("dotprod %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *DotProdError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeDevice:
		return "Device"
	case ErrTypeLibrary:
		return "Library"
	case ErrTypeFunction:
		return "Function"
	case ErrTypePipeline:
		return "Pipeline"
	case ErrTypeBuffer:
		return "Buffer"
	case ErrTypeExecution:
		return "Execution"
	default:
		return "Unknown"
	}
}

// ErrLengthMismatch is wrapped by every operand length check failure.
var ErrLengthMismatch = errors.New("operand length mismatch")

func newError(t ErrorType, op, message string, err error) error {
	return &DotProdError{
		Type:    t,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return newError(ErrTypeInvalidArg, op, message, nil)
}

// NewLengthMismatchError reports operands of different lengths.
func NewLengthMismatchError(op string, a, b int) error {
	return newError(ErrTypeInvalidArg, op,
		fmt.Sprintf("length mismatch: got %d and %d", a, b), ErrLengthMismatch)
}

// NewDeviceError creates a device error
func NewDeviceError(op string, message string, err error) error {
	return newError(ErrTypeDevice, op, message, err)
}

// NewExecutionError creates an execution error
func NewExecutionError(op string, message string, err error) error {
	return newError(ErrTypeExecution, op, message, err)
}

// TypeOf returns the ErrorType of the first DotProdError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var e *DotProdError
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

func isType(err error, t ErrorType) bool {
	got, ok := TypeOf(err)
	return ok && got == t
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool { return isType(err, ErrTypeInvalidArg) }

// IsDeviceError checks if an error is a device error
func IsDeviceError(err error) bool { return isType(err, ErrTypeDevice) }

// IsLibraryError checks if an error is a library load error
func IsLibraryError(err error) bool { return isType(err, ErrTypeLibrary) }

// IsFunctionError checks if an error is a missing kernel function error
func IsFunctionError(err error) bool { return isType(err, ErrTypeFunction) }

// IsPipelineError checks if an error is a pipeline creation error
func IsPipelineError(err error) bool { return isType(err, ErrTypePipeline) }

// IsBufferError checks if an error is a buffer allocation error
func IsBufferError(err error) bool { return isType(err, ErrTypeBuffer) }

// IsExecutionError checks if an error is an execution error
func IsExecutionError(err error) bool { return isType(err, ErrTypeExecution) }
