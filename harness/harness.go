package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/weiihann/sketchbench/catalog"
)

// ErrStopped is returned by Run when the Stop policy ended the run early.
var ErrStopped = errors.New("stopped after failed invocation")

// Policy decides what happens after an invocation fails.
type Policy int

const (
	// Continue moves on to the next invocation regardless of outcome.
	Continue Policy = iota
	// Stop ends the run at the first failed invocation, build included.
	Stop
)

func (p Policy) String() string {
	if p == Stop {
		return "stop"
	}

	return "continue"
}

// Options select which phases run and how failures are treated.
type Options struct {
	SkipBuild       bool
	SkipCaseStudies bool
	SkipSweep       bool
	Policy          Policy

	// WorkDir is the directory every invocation runs in. Relative binary
	// and benchmark paths in the catalog resolve against it. Empty means
	// the harness's own working directory.
	WorkDir string
}

// Harness drives one pass over a catalog. It runs one child process at a
// time and blocks on each, so console output follows declaration order.
type Harness struct {
	catalog catalog.Catalog
	opts    Options
	invoker Invoker
	out     io.Writer
	logger  *slog.Logger

	records []Record
}

// New creates a Harness. Banners are written to out; child output goes
// wherever the invoker sends it.
func New(
	c catalog.Catalog,
	invoker Invoker,
	out io.Writer,
	logger *slog.Logger,
	opts Options,
) *Harness {
	return &Harness{
		catalog: c,
		opts:    opts,
		invoker: invoker,
		out:     out,
		logger:  logger,
	}
}

// Run executes build, case studies, then the sweep, in a single pass.
func (h *Harness) Run(ctx context.Context) error {
	h.logger.InfoContext(ctx, "starting run",
		slog.Int("case_studies", len(h.catalog.CaseStudies)),
		slog.Int("models", len(h.catalog.Entries)),
		slog.String("policy", h.opts.Policy.String()),
	)

	if !h.opts.SkipBuild {
		if err := h.EnsureBuilt(ctx); err != nil {
			return fmt.Errorf("build: %w", err)
		}
	}

	if !h.opts.SkipCaseStudies {
		for _, cs := range h.catalog.CaseStudies {
			if err := h.RunCaseStudy(ctx, cs); err != nil {
				return err
			}
		}
	}

	if !h.opts.SkipSweep && len(h.catalog.Entries) > 0 {
		if err := h.RunSweep(ctx, h.catalog.Entries, h.catalog.Layout); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
	}

	h.logger.InfoContext(ctx, "run complete",
		slog.Int("invocations", len(h.records)),
		slog.Int("failed", countFailed(h.records)),
	)

	return nil
}

// Plan lists the invocations Run would make, in order, without running any.
func (h *Harness) Plan() []Step {
	var steps []Step

	if !h.opts.SkipBuild {
		steps = append(steps, Step{
			Phase:      PhaseBuild,
			Invocation: h.inWorkDir(BuildInvocation(h.catalog.Build)),
		})
	}

	if !h.opts.SkipCaseStudies {
		for _, cs := range h.catalog.CaseStudies {
			for _, v := range cs.Variants {
				steps = append(steps, Step{
					Phase:      PhaseCaseStudy,
					Subject:    cs.Name,
					Label:      v.Label,
					Invocation: h.inWorkDir(VariantInvocation(cs, v)),
				})
			}
		}
	}

	if !h.opts.SkipSweep {
		for _, e := range h.catalog.Entries {
			steps = append(steps, Step{
				Phase:   PhaseSweep,
				Subject: e.ID,
				Invocation: h.inWorkDir(
					EntryInvocation(h.catalog.InferenceBinary, h.catalog.Layout, e),
				),
			})
		}
	}

	return steps
}

// Records returns the invocations run so far with their outcomes.
func (h *Harness) Records() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)

	return out
}

func (h *Harness) inWorkDir(inv Invocation) Invocation {
	inv.Dir = h.opts.WorkDir
	return inv
}

// execute runs one step and applies the failure policy. Under Continue it
// only returns an error when ctx is done.
func (h *Harness) execute(ctx context.Context, step Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger := h.logger.With(
		slog.String("phase", string(step.Phase)),
		slog.String("command", step.Invocation.String()),
	)
	if step.Subject != "" {
		logger = logger.With(slog.String("subject", step.Subject))
	}

	logger.DebugContext(ctx, "invoking")

	outcome := h.invoker.Invoke(ctx, step.Invocation)
	h.records = append(h.records, Record{Step: step, Outcome: outcome})

	if !outcome.Failed() {
		logger.DebugContext(ctx, "invocation finished",
			slog.Duration("elapsed", outcome.Elapsed),
		)

		return nil
	}

	attrs := []any{
		slog.Int("exit_code", outcome.ExitCode),
		slog.Duration("elapsed", outcome.Elapsed),
	}
	if outcome.Err != nil {
		attrs = append(attrs, slog.String("error", outcome.Err.Error()))
	}

	logger.WarnContext(ctx, "invocation failed", attrs...)

	if h.opts.Policy == Stop {
		return fmt.Errorf("%w: %s exited with %d", ErrStopped,
			step.Invocation, outcome.ExitCode)
	}

	return nil
}

func countFailed(records []Record) int {
	n := 0

	for _, r := range records {
		if r.Outcome.Failed() {
			n++
		}
	}

	return n
}
