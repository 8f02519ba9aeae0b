// Package report renders invocation plans and end-of-run summaries.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/weiihann/sketchbench/harness"
)

// Plan writes a markdown table of the planned invocations in order.
func Plan(w io.Writer, steps []harness.Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("nothing to run")
	}

	fmt.Fprintln(w, "## Experiment Plan")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| # | Phase | Subject | Command |")
	fmt.Fprintln(w, "|---|-------|---------|---------|")

	for i, s := range steps {
		fmt.Fprintf(w, "| %d | %s | %s | `%s` |\n",
			i+1, s.Phase, subject(s), s.Invocation)
	}

	return nil
}

// PlanJSON writes the planned invocations as JSON to w.
func PlanJSON(w io.Writer, steps []harness.Step) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if steps == nil {
		steps = []harness.Step{}
	}

	return enc.Encode(steps)
}

// Summary writes a table of what each invocation exited with and how long
// it took. It does not look at engine output.
func Summary(w io.Writer, records []harness.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("no invocations to summarize")
	}

	failed := 0
	var total time.Duration

	fmt.Fprintln(w, "## Run Summary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Phase | Subject | Exit | Elapsed |")
	fmt.Fprintln(w, "|-------|---------|------|---------|")

	for _, r := range records {
		if r.Outcome.Failed() {
			failed++
		}
		total += r.Outcome.Elapsed

		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			r.Phase, subject(r.Step), formatExit(r.Outcome),
			formatElapsed(r.Outcome.Elapsed))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d invocations, %d failed, %s total\n",
		len(records), failed, formatElapsed(total))

	return nil
}

func subject(s harness.Step) string {
	switch {
	case s.Subject == "":
		return "-"
	case s.Label != "":
		return s.Subject + " (" + s.Label + ")"
	default:
		return s.Subject
	}
}

func formatExit(o harness.Outcome) string {
	if o.Err != nil {
		msg := o.Err.Error()
		msg = strings.ReplaceAll(msg, "|", "/")

		return "error: " + msg
	}

	return fmt.Sprintf("%d", o.ExitCode)
}

func formatElapsed(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}

	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}
