package harness

import (
	"context"
	"fmt"

	"github.com/weiihann/sketchbench/catalog"
)

// EntryInvocation returns the inference command for one benchmark model:
//
//	<binary> <parametrized> <attractors> -g <goal>
func EntryInvocation(binary string, layout catalog.Layout, e catalog.Entry) Invocation {
	p := layout.Paths(e)

	return Invocation{
		Program: binary,
		Args:    []string{p.Parametrized, p.Attractors, "-g", p.Goal},
	}
}

// RunSweep runs the inference engine once per entry, in exactly the order
// given. Entries are never sorted here; smallest-to-largest is up to the
// caller. Every entry's output is followed by a blank line.
func (h *Harness) RunSweep(ctx context.Context, entries []catalog.Entry, layout catalog.Layout) error {
	writePhaseBanner(h.out, "START SCALABILITY BENCHMARKS RUN")

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		writeEntryBanner(h.out, e.ID)

		step := Step{
			Phase:      PhaseSweep,
			Subject:    e.ID,
			Invocation: h.inWorkDir(EntryInvocation(h.catalog.InferenceBinary, layout, e)),
		}

		err := h.execute(ctx, step)

		writeLine(h.out, "")

		if err != nil {
			return fmt.Errorf("model %s: %w", e.ID, err)
		}
	}

	return nil
}
