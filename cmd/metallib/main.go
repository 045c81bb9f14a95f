// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command metallib compiles a Metal kernel source into a .metallib with
// the Xcode toolchain. It is run by go generate in the kernels package and
// does nothing on hosts other than darwin/arm64.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LynnColeArt/dotprod/kernels"
	"github.com/LynnColeArt/dotprod/logging"
)

func newCmd() *cobra.Command {
	var (
		opts    kernels.BuildOptions
		verbose bool
	)

	cmd := &cobra.Command{
		Use:          "metallib",
		Short:        "Compile a .metal kernel into a .metallib",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(level, "console")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			opts.Logger = logger
			if err := kernels.Build(cmd.Context(), opts); err != nil {
				logger.Error("build failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Source, "src", "dotprod.metal", "Metal source file")
	flags.StringVar(&opts.AIR, "air", "build/dotprod.air", "intermediate AIR output")
	flags.StringVar(&opts.Out, "out", kernels.LibraryFile, "metallib output")
	flags.StringVar(&opts.SDK, "sdk", "macosx", "xcrun SDK")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func main() {
	if err := newCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
