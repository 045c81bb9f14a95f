// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dotprod compares a vector product computed on the CPU with the
// same computation dispatched to an Apple Silicon GPU through Metal.
//
// Despite the name, the operation is an elementwise product, not a dot
// product: for equal-length a and b it returns out[i] = a[i] * b[i] and
// sums nothing. The name follows the Metal kernel, dot_product.
//
// Three strategies implement Executor:
//   - CPU multiplies on the calling goroutine.
//   - GPU runs the dot_product kernel through a one-shot Metal dispatch.
//   - Emulated runs the same kernel body with the GPU's dispatch geometry
//     on host goroutines, for hosts without Metal.
//
// Multiplication wraps modulo 2^32 on every path, so all three agree
// bit for bit.
//
// Example usage:
//
//	exec := dotprod.New(false, dotprod.WithLogger(logger))
//	out, err := exec.Execute(ctx, []uint32{3, 4}, []uint32{2, 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out) // [6 20]
package dotprod
