// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metal is a small cgo bridge to the Metal compute API.
//
// It exposes only what a one-shot compute dispatch needs: the system
// default device, libraries, functions, compute pipelines, shared
// buffers, and a command queue/buffer/encoder chain. Every handle wraps a
// retained Objective-C object and must be released with Release when the
// caller is done with it.
//
// The real bridge is only built on darwin/arm64 with cgo enabled. On any
// other target SystemDefaultDevice returns ErrUnavailable.
package metal

import (
	"errors"
	"fmt"
	"unsafe"
)

// Sentinel errors. Errors carrying an NSError description wrap one of
// these, so callers can test with errors.Is.
var (
	ErrUnavailable      = errors.New("metal: not available on this platform")
	ErrNoDevice         = errors.New("metal: no system default device")
	ErrLibrary          = errors.New("metal: library load failed")
	ErrFunctionNotFound = errors.New("metal: function not found")
	ErrPipeline         = errors.New("metal: compute pipeline creation failed")
	ErrBuffer           = errors.New("metal: buffer allocation failed")
	ErrCommand          = errors.New("metal: command encoding failed")
	ErrExecution        = errors.New("metal: command buffer execution failed")
	ErrReleased         = errors.New("metal: object already released")
)

// Size mirrors MTLSize.
type Size struct {
	Width, Height, Depth int
}

// NewSize returns a Size with the given extents.
func NewSize(width, height, depth int) Size {
	return Size{Width: width, Height: height, Depth: depth}
}

// Count returns the number of threads the size covers.
func (s Size) Count() int {
	return s.Width * s.Height * s.Depth
}

// ResourceOptions mirrors MTLResourceOptions.
type ResourceOptions uint

const (
	// StorageModeShared places the buffer in memory visible to both the
	// CPU and the GPU. On Apple Silicon this is unified memory.
	StorageModeShared ResourceOptions = 0 << 4
	// StorageModeManaged is macOS-only and unused on Apple Silicon.
	StorageModeManaged ResourceOptions = 1 << 4
	// StorageModePrivate is GPU-only memory.
	StorageModePrivate ResourceOptions = 2 << 4
)

// CommandBufferStatus mirrors MTLCommandBufferStatus.
type CommandBufferStatus int

const (
	StatusNotEnqueued CommandBufferStatus = iota
	StatusEnqueued
	StatusCommitted
	StatusScheduled
	StatusCompleted
	StatusError
)

func (s CommandBufferStatus) String() string {
	switch s {
	case StatusNotEnqueued:
		return "NotEnqueued"
	case StatusEnqueued:
		return "Enqueued"
	case StatusCommitted:
		return "Committed"
	case StatusScheduled:
		return "Scheduled"
	case StatusCompleted:
		return "Completed"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("CommandBufferStatus(%d)", int(s))
	}
}

// Device is an MTLDevice.
type Device struct {
	ptr unsafe.Pointer
}

// Library is an MTLLibrary.
type Library struct {
	ptr unsafe.Pointer
}

// Function is an MTLFunction.
type Function struct {
	ptr  unsafe.Pointer
	name string
}

// Name returns the kernel function name the handle was looked up by.
func (f *Function) Name() string {
	return f.name
}

// ComputePipelineState is an MTLComputePipelineState.
type ComputePipelineState struct {
	ptr unsafe.Pointer
}

// Buffer is an MTLBuffer.
type Buffer struct {
	ptr    unsafe.Pointer
	length int
}

// Length returns the buffer size in bytes.
func (b *Buffer) Length() int {
	return b.length
}

// CommandQueue is an MTLCommandQueue.
type CommandQueue struct {
	ptr unsafe.Pointer
}

// CommandBuffer is an MTLCommandBuffer.
type CommandBuffer struct {
	ptr unsafe.Pointer
}

// ComputeCommandEncoder is an MTLComputeCommandEncoder.
type ComputeCommandEncoder struct {
	ptr unsafe.Pointer
}

func wrapMessage(sentinel error, msg string) error {
	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
