package harness

import (
	"context"
	"fmt"

	"github.com/weiihann/sketchbench/catalog"
)

// VariantInvocation returns the command for one case study variant: the
// binary, followed by the variant's flag if it has one.
func VariantInvocation(cs catalog.CaseStudy, v catalog.Variant) Invocation {
	inv := Invocation{Program: cs.Binary, Args: []string{}}
	if v.Flag != "" {
		inv.Args = append(inv.Args, v.Flag)
	}

	return inv
}

// RunCaseStudy runs every variant of cs in declared order, each under its
// own banner. A failing variant does not prevent the next one from running
// under the Continue policy.
func (h *Harness) RunCaseStudy(ctx context.Context, cs catalog.CaseStudy) error {
	for _, v := range cs.Variants {
		if err := ctx.Err(); err != nil {
			return err
		}

		writePhaseBanner(h.out, caseStudyHeading(cs.Heading(), v.Label))

		step := Step{
			Phase:      PhaseCaseStudy,
			Subject:    cs.Name,
			Label:      v.Label,
			Invocation: h.inWorkDir(VariantInvocation(cs, v)),
		}

		if err := h.execute(ctx, step); err != nil {
			return fmt.Errorf("case study %s: %w", cs.Name, err)
		}
	}

	return nil
}
