// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !(darwin && arm64 && cgo)

package metal

// SystemDefaultDevice always fails off Apple Silicon.
func SystemDefaultDevice() (*Device, error) {
	return nil, ErrUnavailable
}

// The methods below are unreachable without a Device; they exist so
// callers compile on every platform.

func (d *Device) Name() string { return "" }
func (d *Device) Release()     {}

func (d *Device) NewLibraryWithData([]byte) (*Library, error)  { return nil, ErrUnavailable }
func (d *Device) NewLibraryWithSource(string) (*Library, error) { return nil, ErrUnavailable }

func (d *Device) NewComputePipelineState(*Function) (*ComputePipelineState, error) {
	return nil, ErrUnavailable
}

func (d *Device) NewBufferWithBytes([]byte, ResourceOptions) (*Buffer, error) {
	return nil, ErrUnavailable
}
func (d *Device) NewBuffer(int, ResourceOptions) (*Buffer, error) { return nil, ErrUnavailable }
func (d *Device) NewCommandQueue() (*CommandQueue, error)         { return nil, ErrUnavailable }

func (l *Library) Function(string) (*Function, error) { return nil, ErrUnavailable }
func (l *Library) Release()                            {}

func (f *Function) Release() {}

func (p *ComputePipelineState) MaxTotalThreadsPerThreadgroup() int { return 0 }
func (p *ComputePipelineState) ThreadExecutionWidth() int          { return 0 }
func (p *ComputePipelineState) Release()                           {}

func (b *Buffer) Contents() []byte { return nil }
func (b *Buffer) Release()         {}

func (q *CommandQueue) CommandBuffer() (*CommandBuffer, error) { return nil, ErrUnavailable }
func (q *CommandQueue) Release()                               {}

func (cb *CommandBuffer) ComputeCommandEncoder() (*ComputeCommandEncoder, error) {
	return nil, ErrUnavailable
}
func (cb *CommandBuffer) Commit()                     {}
func (cb *CommandBuffer) WaitUntilCompleted()         {}
func (cb *CommandBuffer) Status() CommandBufferStatus { return StatusNotEnqueued }
func (cb *CommandBuffer) Err() error                  { return ErrUnavailable }
func (cb *CommandBuffer) Release()                    {}

func (e *ComputeCommandEncoder) SetComputePipelineState(*ComputePipelineState) {}
func (e *ComputeCommandEncoder) SetBuffers(int, ...*Buffer)                     {}
func (e *ComputeCommandEncoder) DispatchThreads(Size, Size)                     {}
func (e *ComputeCommandEncoder) EndEncoding()                                   {}
func (e *ComputeCommandEncoder) Release()                                       {}
