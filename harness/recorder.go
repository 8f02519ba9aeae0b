package harness

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Recorder is an Invoker that runs nothing. It remembers every invocation
// in order and answers with scripted outcomes, which makes it the seam for
// exercising the harness without real engine binaries.
type Recorder struct {
	// Out, when set, receives a "$ <command>" line per invocation so the
	// position of each call relative to banners can be checked.
	Out io.Writer

	// Outcomes maps an invocation's String() to the outcome to return.
	// Anything not listed succeeds.
	Outcomes map[string]Outcome

	mu    sync.Mutex
	calls []Invocation
}

func (r *Recorder) Invoke(_ context.Context, inv Invocation) Outcome {
	r.mu.Lock()
	r.calls = append(r.calls, inv)
	r.mu.Unlock()

	if r.Out != nil {
		fmt.Fprintf(r.Out, "$ %s\n", inv)
	}

	if o, ok := r.Outcomes[inv.String()]; ok {
		return o
	}

	return Outcome{}
}

// Calls returns the recorded invocations in the order they were made.
func (r *Recorder) Calls() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Invocation, len(r.calls))
	copy(out, r.calls)

	return out
}

// Commands returns the recorded invocations rendered as command lines.
func (r *Recorder) Commands() []string {
	calls := r.Calls()
	out := make([]string, 0, len(calls))

	for _, c := range calls {
		out = append(out, c.String())
	}

	return out
}
