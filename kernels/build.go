// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernels

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// Runner runs an external command and returns its output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// BuildOptions configures Build. Zero fields take the defaults below.
type BuildOptions struct {
	Source string // .metal input, default "dotprod.metal"
	AIR    string // intermediate output, default "build/dotprod.air"
	Out    string // .metallib output, default LibraryFile
	SDK    string // xcrun SDK, default "macosx"

	// GOOS and GOARCH select the target; they default to the host.
	GOOS   string
	GOARCH string

	Runner Runner
	Logger *zap.Logger
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Source == "" {
		o.Source = "dotprod.metal"
	}
	if o.AIR == "" {
		o.AIR = filepath.Join("build", "dotprod.air")
	}
	if o.Out == "" {
		o.Out = LibraryFile
	}
	if o.SDK == "" {
		o.SDK = "macosx"
	}
	if o.GOOS == "" {
		o.GOOS = runtime.GOOS
	}
	if o.GOARCH == "" {
		o.GOARCH = runtime.GOARCH
	}
	if o.Runner == nil {
		o.Runner = ExecRunner{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Supported reports whether Metal libraries can be built for goos/goarch.
func Supported(goos, goarch string) bool {
	return goos == "darwin" && goarch == "arm64"
}

// Build compiles a .metal source into the Apple intermediate language and
// then into a .metallib. On targets other than darwin/arm64 it does nothing.
func Build(ctx context.Context, opts BuildOptions) error {
	opts = opts.withDefaults()
	log := opts.Logger

	if !Supported(opts.GOOS, opts.GOARCH) {
		log.Info("skipping Metal library build",
			zap.String("goos", opts.GOOS), zap.String("goarch", opts.GOARCH))
		return nil
	}

	for _, dir := range []string{filepath.Dir(opts.AIR), filepath.Dir(opts.Out)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	steps := []struct {
		desc string
		args []string
	}{
		{
			desc: fmt.Sprintf("compiling %s into the Apple intermediate language", opts.Source),
			args: []string{"-sdk", opts.SDK, "metal", "-c", opts.Source, "-o", opts.AIR},
		},
		{
			desc: fmt.Sprintf("compiling %s into a Metal library", opts.AIR),
			args: []string{"-sdk", opts.SDK, "metallib", opts.AIR, "-o", opts.Out},
		},
	}

	for _, step := range steps {
		log.Info(step.desc)
		stdout, stderr, err := opts.Runner.Run(ctx, "xcrun", step.args...)
		log.Info("xcrun finished",
			zap.Int("status", exitStatus(err)),
			zap.ByteString("stdout", stdout),
			zap.ByteString("stderr", stderr))
		if err != nil {
			return fmt.Errorf("xcrun %v: %w: %s", step.args, err, bytes.TrimSpace(stderr))
		}
	}
	return nil
}

// exitStatus returns the process exit code for err, 0 on success and -1
// when the command never ran.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
