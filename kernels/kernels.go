// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kernels holds the Metal compute kernels and the build step that
// compiles them into a loadable library.
//
// The .metal source is always embedded. The compiled .metallib is embedded
// only if `go generate` produced it before the build, which requires a
// darwin/arm64 host with the Xcode command line tools.
package kernels

import (
	"embed"
)

//go:generate go run ../cmd/metallib --src dotprod.metal --air build/dotprod.air --out lib/dotprod.metallib

// DotProductFunction is the kernel entry point in dotprod.metal.
const DotProductFunction = "dot_product"

// LibraryFile is the embedded path of the compiled library.
const LibraryFile = "lib/dotprod.metallib"

//go:embed dotprod.metal
var dotprodSource string

//go:embed lib
var libFS embed.FS

// Source is a kernel library in either or both of its forms.
type Source struct {
	// MetalLib is a compiled .metallib blob, nil if none was built.
	MetalLib []byte
	// MSL is Metal Shading Language source, compiled at load time when
	// MetalLib is absent.
	MSL string
}

// Precompiled reports whether s carries a compiled library.
func (s Source) Precompiled() bool {
	return len(s.MetalLib) > 0
}

// Empty reports whether s has nothing to load.
func (s Source) Empty() bool {
	return !s.Precompiled() && s.MSL == ""
}

// Default returns the embedded dot product library.
func Default() Source {
	data, err := libFS.ReadFile(LibraryFile)
	if err != nil {
		data = nil
	}
	return Source{MetalLib: data, MSL: dotprodSource}
}

// MSL returns the embedded dot product kernel source.
func MSL() string {
	return dotprodSource
}
