package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LynnColeArt/dotprod"
)

func newDevicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "Show the host CPU and the Metal device the GPU backend would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "host:   %s\n", dotprod.HostInfo())

			info, err := dotprod.NewGPU(dotprod.WithLogger(a.logger)).Describe()
			if dotprod.IsDeviceError(err) {
				fmt.Fprintf(out, "metal:  not available (%v)\n", err)
				return nil
			}
			if err != nil {
				return a.fail(err)
			}

			library := "compiled from source at runtime"
			if info.Precompiled {
				library = "precompiled metallib"
			}
			fmt.Fprintf(out, "metal:  %s\n", info.Name)
			fmt.Fprintf(out, "kernel: %s (%s)\n", dotprod.DefaultFunction, library)
			fmt.Fprintf(out, "        max threads per threadgroup %d, execution width %d\n",
				info.MaxTotalThreadsPerThreadgroup, info.ThreadExecutionWidth)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dotprod version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			version, sum := dotprod.Version()
			if version == "" {
				version = "(devel)"
			}
			if sum != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "dotprod %s %s\n", version, sum)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dotprod %s\n", version)
		},
	}
}
