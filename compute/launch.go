// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compute runs GPU-style kernels on host goroutines.
//
// A kernel is launched over a grid of thread blocks, the same way a Metal
// or CUDA dispatch is described. Blocks are spread across worker
// goroutines; threads within a block run sequentially on one worker,
// which keeps each block's working set in one core's cache.
package compute

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidDims is returned for a launch with a non-positive dimension.
var ErrInvalidDims = errors.New("compute: dimensions must be positive")

// Dim3 represents 3D dimensions for grid and block configurations.
type Dim3 struct {
	X, Y, Z int
}

// D1 returns a one-dimensional Dim3.
func D1(x int) Dim3 {
	return Dim3{X: x, Y: 1, Z: 1}
}

// Size returns the total number of elements.
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

func (d Dim3) valid() bool {
	return d.X > 0 && d.Y > 0 && d.Z > 0
}

func (d Dim3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", d.X, d.Y, d.Z)
}

// ThreadID identifies a thread's position within the execution hierarchy.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid, in blocks
}

// Global returns the global thread index along X, the Metal
// thread_position_in_grid of a one-dimensional dispatch.
func (tid ThreadID) Global() int {
	return tid.GlobalX()
}

// GlobalX returns the global X index
func (tid ThreadID) GlobalX() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// GlobalY returns the global Y index
func (tid ThreadID) GlobalY() int {
	return tid.BlockIdx.Y*tid.BlockDim.Y + tid.ThreadIdx.Y
}

// GlobalZ returns the global Z index
func (tid ThreadID) GlobalZ() int {
	return tid.BlockIdx.Z*tid.BlockDim.Z + tid.ThreadIdx.Z
}

// KernelFunc is the body run once per thread. It must be safe to call
// concurrently from multiple goroutines.
type KernelFunc func(tid ThreadID)

// GroupsFor returns how many blocks of size group cover threads, rounding
// up in every dimension.
func GroupsFor(threads, group Dim3) Dim3 {
	return Dim3{
		X: ceilDiv(threads.X, group.X),
		Y: ceilDiv(threads.Y, group.Y),
		Z: ceilDiv(threads.Z, group.Z),
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// Launch runs fn for every thread of every block in grid and waits for
// all of them to finish. An empty grid is a no-op.
func Launch(ctx context.Context, fn KernelFunc, grid, block Dim3) error {
	if grid.Size() == 0 {
		return nil
	}
	if !grid.valid() || !block.valid() {
		return fmt.Errorf("%w: grid %v block %v", ErrInvalidDims, grid, block)
	}
	return launch(ctx, fn, grid, block, nil)
}

// LaunchThreads launches fn over exactly threads threads in blocks of
// group, the way Metal's dispatchThreads does: the trailing block may be
// partial, and no thread outside threads is invoked.
func LaunchThreads(ctx context.Context, fn KernelFunc, threads, group Dim3) error {
	if threads.Size() == 0 {
		return nil
	}
	if !threads.valid() || !group.valid() {
		return fmt.Errorf("%w: threads %v group %v", ErrInvalidDims, threads, group)
	}
	return launch(ctx, fn, GroupsFor(threads, group), group, &threads)
}

func launch(ctx context.Context, fn KernelFunc, grid, block Dim3, limit *Dim3) error {
	gridSize := grid.Size()
	blockSize := block.Size()

	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}

	// Each worker takes a contiguous run of blocks.
	blocksPerWorker := ceilDiv(gridSize, numWorkers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < numWorkers; w++ {
		start := w * blocksPerWorker
		end := min(start+blocksPerWorker, gridSize)

		g.Go(func() error {
			for blockID := start; blockID < end; blockID++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				blockIdx := linearTo3D(blockID, grid)
				for threadID := 0; threadID < blockSize; threadID++ {
					tid := ThreadID{
						BlockIdx:  blockIdx,
						ThreadIdx: linearTo3D(threadID, block),
						BlockDim:  block,
						GridDim:   grid,
					}
					if limit != nil && !inside(tid, *limit) {
						continue
					}
					fn(tid)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func inside(tid ThreadID, limit Dim3) bool {
	return tid.GlobalX() < limit.X && tid.GlobalY() < limit.Y && tid.GlobalZ() < limit.Z
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
