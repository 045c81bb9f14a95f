package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LynnColeArt/dotprod"
	"github.com/LynnColeArt/dotprod/config"
	"github.com/LynnColeArt/dotprod/logging"
)

// app holds flag values and the state built from them in
// PersistentPreRunE.
type app struct {
	useCPU     bool
	backend    string
	verify     bool
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "dotprod",
		Short: "Multiply two vectors element by element on the CPU or an Apple Silicon GPU",
		Long: `dotprod multiplies two equal-length vectors element by element and prints
the result. By default the work runs on the system's Metal GPU through the
dot_product kernel; --use-cpu runs it on the CPU instead.

Without a config file the example operands [3 4 1 7 10 20] and
[2 5 6 9 5 10] are used.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
		RunE: a.runExample,
	}

	flags := root.Flags()
	flags.BoolVarP(&a.useCPU, "use-cpu", "u", false, "use the CPU instead of the GPU")
	flags.StringVar(&a.backend, "backend", "", "backend to run: gpu, cpu or emulated")
	flags.BoolVar(&a.verify, "verify", false, "also run on the CPU and compare the results")

	pflags := root.PersistentFlags()
	pflags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	pflags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newDevicesCmd(a), newVersionCmd())
	return root
}

// setup loads config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = a.backend
	}
	if a.useCPU {
		cfg.Backend = dotprod.BackendCPU.String()
	}
	if a.verify {
		cfg.Verify = true
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) executor() (dotprod.Executor, error) {
	opts := []dotprod.Option{dotprod.WithLogger(a.logger)}
	if a.useCPU {
		return dotprod.New(true, opts...), nil
	}
	return dotprod.NewBackend(a.cfg.BackendValue(), opts...)
}

func (a *app) runExample(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	operands := a.cfg.Operands

	exec, err := a.executor()
	if err != nil {
		return a.fail(err)
	}

	if !a.cfg.Verify {
		result, err := exec.Execute(ctx, operands.A, operands.B)
		if err != nil {
			return a.fail(err)
		}
		fmt.Fprintf(out, "result is %v\n", result)
		return nil
	}

	reference := dotprod.NewCPU(dotprod.WithLogger(a.logger))
	p, err := dotprod.Verify(ctx, operands.A, operands.B, reference, exec)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(out, "result is %v\n", p.Actual)
	fmt.Fprintf(out, "verify: %s\n", p)
	if !p.OK() {
		return a.fail(errors.New("results differ between backends"))
	}
	return nil
}

func (a *app) fail(err error) error {
	a.logger.Error("run failed", zap.Error(err))
	return err
}
