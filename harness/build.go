package harness

import (
	"context"
	"log/slog"

	"github.com/weiihann/sketchbench/catalog"
)

// BuildInvocation returns the command that compiles every experiment binary.
func BuildInvocation(b catalog.Build) Invocation {
	return Invocation{
		Program: b.Program,
		Args:    append([]string{}, b.Args...),
	}
}

// EnsureBuilt runs the build command once. Its exit status is logged but
// does not stop the run unless the harness uses the Stop policy; a failed
// build otherwise shows up later as missing engine binaries.
func (h *Harness) EnsureBuilt(ctx context.Context) error {
	inv := h.inWorkDir(BuildInvocation(h.catalog.Build))

	writeLine(h.out, ">>>>>>>>>> COMPILE BINARIES: "+inv.String())

	h.logger.InfoContext(ctx, "building engines",
		slog.String("command", inv.String()),
	)

	return h.execute(ctx, Step{Phase: PhaseBuild, Invocation: inv})
}
