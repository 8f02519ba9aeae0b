package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/weiihann/sketchbench/catalog"
	"github.com/weiihann/sketchbench/harness"
	"github.com/weiihann/sketchbench/report"
)

// selection holds the flags shared by run and plan.
type selection struct {
	catalogPath     string
	workDir         string
	benchDir        string
	caseStudies     []string
	models          []string
	skipBuild       bool
	skipCaseStudies bool
	skipSweep       bool
}

func (s *selection) register(flags *pflag.FlagSet) {
	flags.StringVar(&s.catalogPath, "catalog", "",
		"YAML file overriding the built-in experiment catalog")
	flags.StringVar(&s.workDir, "workdir", "",
		"Directory to run every command in (default: current directory)")
	flags.StringVar(&s.benchDir, "bench-dir", "",
		"Benchmark models directory (default: "+catalog.DefaultBenchDir+")")
	flags.StringSliceVar(&s.caseStudies, "case-study", nil,
		"Only run these case studies (e.g. tlgl,arabidopsis)")
	flags.StringSliceVar(&s.models, "model", nil,
		"Only run these benchmark models (e.g. celldivb_9v)")
	flags.BoolVar(&s.skipBuild, "skip-build", false,
		"Skip building the engine binaries")
	flags.BoolVar(&s.skipCaseStudies, "skip-case-studies", false,
		"Skip the case studies")
	flags.BoolVar(&s.skipSweep, "skip-sweep", false,
		"Skip the scalability sweep")
}

// resolve builds the catalog for this invocation. The result is not
// modified afterwards.
func (s *selection) resolve() (catalog.Catalog, harness.Options, error) {
	c := catalog.Default()

	if s.catalogPath != "" {
		var err error

		c, err = catalog.Load(s.catalogPath)
		if err != nil {
			return catalog.Catalog{}, harness.Options{}, err
		}
	}

	if s.benchDir != "" {
		c.Layout.BaseDir = s.benchDir
	}

	c, err := c.SelectCaseStudies(s.caseStudies)
	if err != nil {
		return catalog.Catalog{}, harness.Options{}, err
	}

	c, err = c.SelectEntries(s.models)
	if err != nil {
		return catalog.Catalog{}, harness.Options{}, err
	}

	if err := c.Validate(); err != nil {
		return catalog.Catalog{}, harness.Options{}, fmt.Errorf("invalid catalog: %w", err)
	}

	opts := harness.Options{
		SkipBuild:       s.skipBuild,
		SkipCaseStudies: s.skipCaseStudies,
		SkipSweep:       s.skipSweep,
		WorkDir:         s.workDir,
	}

	return c, opts, nil
}

func newRunCmd(a *app) *cobra.Command {
	var (
		sel         selection
		timeout     time.Duration
		stopOnError bool
		summary     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the engines and run every experiment",
		Long: `Build the engine binaries, run each case study variant, then run the
inference engine on every benchmark model, one process at a time.

Failed engine runs do not stop the sequence unless --stop-on-error is set.
There is no timeout by default: a hung engine stalls the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, opts, err := sel.resolve()
			if err != nil {
				return err
			}

			if stopOnError {
				opts.Policy = harness.Stop
			}

			logger := a.logger.With(
				slog.String("run_id", uuid.Must(uuid.NewV7()).String()),
			)

			h := harness.New(c, a.newInvoker(timeout), a.stdout, logger, opts)
			runErr := h.Run(cmd.Context())

			if records := h.Records(); summary && len(records) > 0 {
				if err := report.Summary(cmd.ErrOrStderr(), records); err != nil {
					return fmt.Errorf("generate summary: %w", err)
				}
			}

			return runErr
		},
	}

	sel.register(cmd.Flags())

	flags := cmd.Flags()
	flags.DurationVar(&timeout, "timeout", 0,
		"Kill any single command running longer than this (0 = wait forever)")
	flags.BoolVar(&stopOnError, "stop-on-error", false,
		"Stop at the first command that fails or exits non-zero")
	flags.BoolVar(&summary, "summary", false,
		"Print exit codes and timings to stderr when the run ends")

	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	var (
		sel        selection
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the commands run would execute, without running them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, opts, err := sel.resolve()
			if err != nil {
				return err
			}

			steps := harness.New(c, nil, io.Discard, a.logger, opts).Plan()

			if outputJSON {
				if err := report.PlanJSON(cmd.OutOrStdout(), steps); err != nil {
					return fmt.Errorf("generate JSON plan: %w", err)
				}

				return nil
			}

			if err := report.Plan(cmd.OutOrStdout(), steps); err != nil {
				return fmt.Errorf("generate plan: %w", err)
			}

			return nil
		},
	}

	sel.register(cmd.Flags())
	cmd.Flags().BoolVar(&outputJSON, "json", false,
		"Output the plan as JSON instead of a table")

	return cmd
}

func newListCmd(_ *app) *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the case studies and benchmark models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := catalog.Default()

			if catalogPath != "" {
				var err error

				c, err = catalog.Load(catalogPath)
				if err != nil {
					return err
				}
			}

			writeCatalog(cmd.OutOrStdout(), c)

			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "",
		"YAML file overriding the built-in experiment catalog")

	return cmd
}

func writeCatalog(w io.Writer, c catalog.Catalog) {
	fmt.Fprintf(w, "Build: %s\n", harness.BuildInvocation(c.Build))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Case studies:")

	for _, cs := range c.CaseStudies {
		fmt.Fprintf(w, "  %s (%s): %s\n", cs.Name, cs.Heading(), cs.Binary)

		for _, v := range cs.Variants {
			flag := v.Flag
			if flag == "" {
				flag = "-"
			}

			fmt.Fprintf(w, "    %-4s %s\n", flag, v.Label)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Benchmark models (%s, via %s):\n", c.Layout.BaseDir, c.InferenceBinary)

	for _, e := range c.Entries {
		fmt.Fprintf(w, "  %s\n", e.ID)
	}
}
