// Package main provides the CLI entry point for sketchbench, the batch
// driver for the sketch inference case studies and scalability benchmarks.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiihann/sketchbench/harness"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		logger: logger,
		level:  level,
		stdout: os.Stdout,
		newInvoker: func(timeout time.Duration) harness.Invoker {
			return harness.NewExecInvoker(timeout)
		},
	}

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		logger.Error("sketchbench failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

// app carries what the commands share. Tests swap newInvoker for a
// harness.Recorder.
type app struct {
	logger     *slog.Logger
	level      *slog.LevelVar
	stdout     io.Writer
	newInvoker func(timeout time.Duration) harness.Invoker
}

func newRootCmd(a *app) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "sketchbench",
		Short: "Run the sketch inference case studies and scalability benchmarks",
		Long: `Sketchbench builds the engine binaries once, runs every case study variant,
then sweeps the attractor inference engine over the benchmark models from
smallest to largest. Engine output is passed through unchanged.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				a.level.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log each invocation to stderr")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newPlanCmd(a))
	root.AddCommand(newListCmd(a))

	return root
}
