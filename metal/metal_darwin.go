// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin && arm64 && cgo

package metal

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework Metal -framework Foundation

#import <Metal/Metal.h>
#import <Foundation/Foundation.h>
#include <stdlib.h>
#include <string.h>

// Objects cross the cgo boundary as retained void pointers
// (__bridge_retained) and are dropped with mtl_release.

static char *mtl_copy_error(NSError *err) {
	if (err == nil) {
		return NULL;
	}
	return strdup([[err localizedDescription] UTF8String]);
}

static void mtl_release(void *obj) {
	if (obj != NULL) {
		CFRelease(obj);
	}
}

static void *mtl_default_device(void) {
	@autoreleasepool {
		id<MTLDevice> dev = MTLCreateSystemDefaultDevice();
		if (dev == nil) {
			return NULL;
		}
		return (__bridge_retained void *)dev;
	}
}

static char *mtl_device_name(void *dev) {
	@autoreleasepool {
		id<MTLDevice> d = (__bridge id<MTLDevice>)dev;
		return strdup([[d name] UTF8String]);
	}
}

static void *mtl_new_library_with_data(void *dev, const void *data, size_t len, char **errOut) {
	@autoreleasepool {
		id<MTLDevice> d = (__bridge id<MTLDevice>)dev;
		// DISPATCH_DATA_DESTRUCTOR_DEFAULT copies the bytes, so the Go
		// slice is not referenced after this call returns.
		dispatch_data_t blob = dispatch_data_create(data, len, NULL, DISPATCH_DATA_DESTRUCTOR_DEFAULT);
		NSError *err = nil;
		id<MTLLibrary> lib = [d newLibraryWithData:blob error:&err];
		if (lib == nil) {
			*errOut = mtl_copy_error(err);
			return NULL;
		}
		return (__bridge_retained void *)lib;
	}
}

static void *mtl_new_library_with_source(void *dev, const char *src, char **errOut) {
	@autoreleasepool {
		id<MTLDevice> d = (__bridge id<MTLDevice>)dev;
		NSString *source = [NSString stringWithUTF8String:src];
		NSError *err = nil;
		id<MTLLibrary> lib = [d newLibraryWithSource:source options:nil error:&err];
		if (lib == nil) {
			*errOut = mtl_copy_error(err);
			return NULL;
		}
		return (__bridge_retained void *)lib;
	}
}

static void *mtl_new_function(void *lib, const char *name) {
	@autoreleasepool {
		id<MTLLibrary> l = (__bridge id<MTLLibrary>)lib;
		id<MTLFunction> fn = [l newFunctionWithName:[NSString stringWithUTF8String:name]];
		if (fn == nil) {
			return NULL;
		}
		return (__bridge_retained void *)fn;
	}
}

static void *mtl_new_compute_pipeline(void *dev, void *fn, char **errOut) {
	@autoreleasepool {
		id<MTLDevice> d = (__bridge id<MTLDevice>)dev;
		id<MTLFunction> f = (__bridge id<MTLFunction>)fn;
		NSError *err = nil;
		id<MTLComputePipelineState> p = [d newComputePipelineStateWithFunction:f error:&err];
		if (p == nil) {
			*errOut = mtl_copy_error(err);
			return NULL;
		}
		return (__bridge_retained void *)p;
	}
}

static unsigned long mtl_pipeline_max_threads(void *pipeline) {
	id<MTLComputePipelineState> p = (__bridge id<MTLComputePipelineState>)pipeline;
	return (unsigned long)[p maxTotalThreadsPerThreadgroup];
}

static unsigned long mtl_pipeline_execution_width(void *pipeline) {
	id<MTLComputePipelineState> p = (__bridge id<MTLComputePipelineState>)pipeline;
	return (unsigned long)[p threadExecutionWidth];
}

static void *mtl_new_buffer_with_bytes(void *dev, const void *bytes, unsigned long len, unsigned long opts) {
	@autoreleasepool {
		id<MTLDevice> d = (__bridge id<MTLDevice>)dev;
		id<MTLBuffer> buf = [d newBufferWithBytes:bytes length:len options:(MTLResourceOptions)opts];
		if (buf == nil) {
			return NULL;
		}
		return (__bridge_retained void *)buf;
	}
}

static void *mtl_new_buffer(void *dev, unsigned long len, unsigned long opts) {
	@autoreleasepool {
		id<MTLDevice> d = (__bridge id<MTLDevice>)dev;
		id<MTLBuffer> buf = [d newBufferWithLength:len options:(MTLResourceOptions)opts];
		if (buf == nil) {
			return NULL;
		}
		return (__bridge_retained void *)buf;
	}
}

static void *mtl_buffer_contents(void *buf) {
	id<MTLBuffer> b = (__bridge id<MTLBuffer>)buf;
	return [b contents];
}

static void *mtl_new_command_queue(void *dev) {
	@autoreleasepool {
		id<MTLDevice> d = (__bridge id<MTLDevice>)dev;
		id<MTLCommandQueue> q = [d newCommandQueue];
		if (q == nil) {
			return NULL;
		}
		return (__bridge_retained void *)q;
	}
}

static void *mtl_command_buffer(void *queue) {
	@autoreleasepool {
		id<MTLCommandQueue> q = (__bridge id<MTLCommandQueue>)queue;
		id<MTLCommandBuffer> cb = [q commandBuffer];
		if (cb == nil) {
			return NULL;
		}
		return (__bridge_retained void *)cb;
	}
}

static void *mtl_compute_encoder(void *cmdbuf) {
	@autoreleasepool {
		id<MTLCommandBuffer> cb = (__bridge id<MTLCommandBuffer>)cmdbuf;
		id<MTLComputeCommandEncoder> enc = [cb computeCommandEncoder];
		if (enc == nil) {
			return NULL;
		}
		return (__bridge_retained void *)enc;
	}
}

static void mtl_set_pipeline(void *encoder, void *pipeline) {
	id<MTLComputeCommandEncoder> enc = (__bridge id<MTLComputeCommandEncoder>)encoder;
	[enc setComputePipelineState:(__bridge id<MTLComputePipelineState>)pipeline];
}

static void mtl_set_buffer(void *encoder, void *buf, unsigned long offset, unsigned long index) {
	id<MTLComputeCommandEncoder> enc = (__bridge id<MTLComputeCommandEncoder>)encoder;
	[enc setBuffer:(__bridge id<MTLBuffer>)buf offset:offset atIndex:index];
}

static void mtl_dispatch_threads(void *encoder,
		unsigned long gw, unsigned long gh, unsigned long gd,
		unsigned long tw, unsigned long th, unsigned long td) {
	id<MTLComputeCommandEncoder> enc = (__bridge id<MTLComputeCommandEncoder>)encoder;
	[enc dispatchThreads:MTLSizeMake(gw, gh, gd) threadsPerThreadgroup:MTLSizeMake(tw, th, td)];
}

static void mtl_end_encoding(void *encoder) {
	id<MTLComputeCommandEncoder> enc = (__bridge id<MTLComputeCommandEncoder>)encoder;
	[enc endEncoding];
}

static void mtl_commit(void *cmdbuf) {
	id<MTLCommandBuffer> cb = (__bridge id<MTLCommandBuffer>)cmdbuf;
	[cb commit];
}

static void mtl_wait_until_completed(void *cmdbuf) {
	id<MTLCommandBuffer> cb = (__bridge id<MTLCommandBuffer>)cmdbuf;
	[cb waitUntilCompleted];
}

static long mtl_command_buffer_status(void *cmdbuf) {
	id<MTLCommandBuffer> cb = (__bridge id<MTLCommandBuffer>)cmdbuf;
	return (long)[cb status];
}

static char *mtl_command_buffer_error(void *cmdbuf) {
	@autoreleasepool {
		id<MTLCommandBuffer> cb = (__bridge id<MTLCommandBuffer>)cmdbuf;
		return mtl_copy_error([cb error]);
	}
}
*/
import "C"

import (
	"unsafe"
)

// takeString converts a malloc'd C string to Go and frees it.
func takeString(s *C.char) string {
	if s == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(s))
	return C.GoString(s)
}

// SystemDefaultDevice returns the device Metal picks for this system.
func SystemDefaultDevice() (*Device, error) {
	ptr := C.mtl_default_device()
	if ptr == nil {
		return nil, ErrNoDevice
	}
	return &Device{ptr: ptr}, nil
}

// Name returns the device's marketing name, e.g. "Apple M2".
func (d *Device) Name() string {
	if d == nil || d.ptr == nil {
		return ""
	}
	return takeString(C.mtl_device_name(d.ptr))
}

// Release drops the device reference.
func (d *Device) Release() {
	if d != nil && d.ptr != nil {
		C.mtl_release(d.ptr)
		d.ptr = nil
	}
}

// NewLibraryWithData loads a precompiled .metallib blob.
func (d *Device) NewLibraryWithData(data []byte) (*Library, error) {
	if d == nil || d.ptr == nil {
		return nil, ErrReleased
	}
	if len(data) == 0 {
		return nil, wrapMessage(ErrLibrary, "empty library data")
	}
	var cerr *C.char
	ptr := C.mtl_new_library_with_data(d.ptr, unsafe.Pointer(&data[0]), C.size_t(len(data)), &cerr)
	if ptr == nil {
		return nil, wrapMessage(ErrLibrary, takeString(cerr))
	}
	return &Library{ptr: ptr}, nil
}

// NewLibraryWithSource compiles Metal Shading Language source at runtime.
func (d *Device) NewLibraryWithSource(src string) (*Library, error) {
	if d == nil || d.ptr == nil {
		return nil, ErrReleased
	}
	if src == "" {
		return nil, wrapMessage(ErrLibrary, "empty library source")
	}
	csrc := C.CString(src)
	defer C.free(unsafe.Pointer(csrc))

	var cerr *C.char
	ptr := C.mtl_new_library_with_source(d.ptr, csrc, &cerr)
	if ptr == nil {
		return nil, wrapMessage(ErrLibrary, takeString(cerr))
	}
	return &Library{ptr: ptr}, nil
}

// Release drops the library reference.
func (l *Library) Release() {
	if l != nil && l.ptr != nil {
		C.mtl_release(l.ptr)
		l.ptr = nil
	}
}

// Function looks up a kernel function by name.
func (l *Library) Function(name string) (*Function, error) {
	if l == nil || l.ptr == nil {
		return nil, ErrReleased
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	ptr := C.mtl_new_function(l.ptr, cname)
	if ptr == nil {
		return nil, wrapMessage(ErrFunctionNotFound, name)
	}
	return &Function{ptr: ptr, name: name}, nil
}

// Release drops the function reference.
func (f *Function) Release() {
	if f != nil && f.ptr != nil {
		C.mtl_release(f.ptr)
		f.ptr = nil
	}
}

// NewComputePipelineState compiles fn into a pipeline. This is the
// expensive step of a dispatch.
func (d *Device) NewComputePipelineState(fn *Function) (*ComputePipelineState, error) {
	if d == nil || d.ptr == nil || fn == nil || fn.ptr == nil {
		return nil, ErrReleased
	}
	var cerr *C.char
	ptr := C.mtl_new_compute_pipeline(d.ptr, fn.ptr, &cerr)
	if ptr == nil {
		return nil, wrapMessage(ErrPipeline, takeString(cerr))
	}
	return &ComputePipelineState{ptr: ptr}, nil
}

// MaxTotalThreadsPerThreadgroup is the largest threadgroup the pipeline
// can be dispatched with.
func (p *ComputePipelineState) MaxTotalThreadsPerThreadgroup() int {
	if p == nil || p.ptr == nil {
		return 0
	}
	return int(C.mtl_pipeline_max_threads(p.ptr))
}

// ThreadExecutionWidth is the SIMD group width of the pipeline.
func (p *ComputePipelineState) ThreadExecutionWidth() int {
	if p == nil || p.ptr == nil {
		return 0
	}
	return int(C.mtl_pipeline_execution_width(p.ptr))
}

// Release drops the pipeline reference.
func (p *ComputePipelineState) Release() {
	if p != nil && p.ptr != nil {
		C.mtl_release(p.ptr)
		p.ptr = nil
	}
}

// NewBufferWithBytes allocates a buffer and copies data into it.
func (d *Device) NewBufferWithBytes(data []byte, opts ResourceOptions) (*Buffer, error) {
	if d == nil || d.ptr == nil {
		return nil, ErrReleased
	}
	if len(data) == 0 {
		return nil, wrapMessage(ErrBuffer, "zero-length buffer")
	}
	ptr := C.mtl_new_buffer_with_bytes(d.ptr, unsafe.Pointer(&data[0]), C.ulong(len(data)), C.ulong(opts))
	if ptr == nil {
		return nil, ErrBuffer
	}
	return &Buffer{ptr: ptr, length: len(data)}, nil
}

// NewBuffer allocates a zeroed buffer of length bytes.
func (d *Device) NewBuffer(length int, opts ResourceOptions) (*Buffer, error) {
	if d == nil || d.ptr == nil {
		return nil, ErrReleased
	}
	if length <= 0 {
		return nil, wrapMessage(ErrBuffer, "zero-length buffer")
	}
	ptr := C.mtl_new_buffer(d.ptr, C.ulong(length), C.ulong(opts))
	if ptr == nil {
		return nil, ErrBuffer
	}
	return &Buffer{ptr: ptr, length: length}, nil
}

// Contents copies the buffer's bytes out. Only valid for shared storage.
func (b *Buffer) Contents() []byte {
	if b == nil || b.ptr == nil {
		return nil
	}
	return C.GoBytes(C.mtl_buffer_contents(b.ptr), C.int(b.length))
}

// Release drops the buffer reference.
func (b *Buffer) Release() {
	if b != nil && b.ptr != nil {
		C.mtl_release(b.ptr)
		b.ptr = nil
	}
}

// NewCommandQueue creates a queue for submitting command buffers.
func (d *Device) NewCommandQueue() (*CommandQueue, error) {
	if d == nil || d.ptr == nil {
		return nil, ErrReleased
	}
	ptr := C.mtl_new_command_queue(d.ptr)
	if ptr == nil {
		return nil, wrapMessage(ErrCommand, "command queue")
	}
	return &CommandQueue{ptr: ptr}, nil
}

// Release drops the queue reference.
func (q *CommandQueue) Release() {
	if q != nil && q.ptr != nil {
		C.mtl_release(q.ptr)
		q.ptr = nil
	}
}

// CommandBuffer creates a command buffer on the queue.
func (q *CommandQueue) CommandBuffer() (*CommandBuffer, error) {
	if q == nil || q.ptr == nil {
		return nil, ErrReleased
	}
	ptr := C.mtl_command_buffer(q.ptr)
	if ptr == nil {
		return nil, wrapMessage(ErrCommand, "command buffer")
	}
	return &CommandBuffer{ptr: ptr}, nil
}

// ComputeCommandEncoder starts a compute pass on the command buffer.
func (cb *CommandBuffer) ComputeCommandEncoder() (*ComputeCommandEncoder, error) {
	if cb == nil || cb.ptr == nil {
		return nil, ErrReleased
	}
	ptr := C.mtl_compute_encoder(cb.ptr)
	if ptr == nil {
		return nil, wrapMessage(ErrCommand, "compute encoder")
	}
	return &ComputeCommandEncoder{ptr: ptr}, nil
}

// Commit submits the command buffer to the GPU.
func (cb *CommandBuffer) Commit() {
	C.mtl_commit(cb.ptr)
}

// WaitUntilCompleted blocks the calling thread until the GPU signals
// completion. It cannot be interrupted.
func (cb *CommandBuffer) WaitUntilCompleted() {
	C.mtl_wait_until_completed(cb.ptr)
}

// Status reports the command buffer state.
func (cb *CommandBuffer) Status() CommandBufferStatus {
	return CommandBufferStatus(C.mtl_command_buffer_status(cb.ptr))
}

// Err returns the execution error, if the command buffer failed.
func (cb *CommandBuffer) Err() error {
	if cb.Status() != StatusError {
		return nil
	}
	return wrapMessage(ErrExecution, takeString(C.mtl_command_buffer_error(cb.ptr)))
}

// Release drops the command buffer reference.
func (cb *CommandBuffer) Release() {
	if cb != nil && cb.ptr != nil {
		C.mtl_release(cb.ptr)
		cb.ptr = nil
	}
}

// SetComputePipelineState binds the pipeline for subsequent dispatches.
func (e *ComputeCommandEncoder) SetComputePipelineState(p *ComputePipelineState) {
	C.mtl_set_pipeline(e.ptr, p.ptr)
}

// SetBuffers binds bufs to consecutive argument indices starting at
// index, each at offset zero.
func (e *ComputeCommandEncoder) SetBuffers(index int, bufs ...*Buffer) {
	for i, b := range bufs {
		C.mtl_set_buffer(e.ptr, b.ptr, 0, C.ulong(index+i))
	}
}

// DispatchThreads encodes a dispatch of grid threads in groups of
// group threads. The last threadgroup may be partial.
func (e *ComputeCommandEncoder) DispatchThreads(grid, group Size) {
	C.mtl_dispatch_threads(e.ptr,
		C.ulong(grid.Width), C.ulong(grid.Height), C.ulong(grid.Depth),
		C.ulong(group.Width), C.ulong(group.Height), C.ulong(group.Depth))
}

// EndEncoding closes the compute pass.
func (e *ComputeCommandEncoder) EndEncoding() {
	C.mtl_end_encoding(e.ptr)
}

// Release drops the encoder reference.
func (e *ComputeCommandEncoder) Release() {
	if e != nil && e.ptr != nil {
		C.mtl_release(e.ptr)
		e.ptr = nil
	}
}
