package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Invocation is one external command the harness runs. It is built once
// and handed to an Invoker exactly once.
type Invocation struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
	Dir     string   `json:"dir,omitempty"`
}

// Argv returns the program followed by its arguments.
func (i Invocation) Argv() []string {
	argv := make([]string, 0, len(i.Args)+1)
	argv = append(argv, i.Program)

	return append(argv, i.Args...)
}

func (i Invocation) String() string {
	return strings.Join(i.Argv(), " ")
}

// Outcome is what the harness observed about a finished invocation.
// ExitCode is -1 when the process could not be started or was killed.
type Outcome struct {
	ExitCode int
	Elapsed  time.Duration
	Err      error
}

// Failed reports whether the invocation did not exit cleanly.
func (o Outcome) Failed() bool {
	return o.Err != nil || o.ExitCode != 0
}

// Invoker runs an invocation to completion.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) Outcome
}

// ExecInvoker runs invocations as child processes. The child's output is
// not captured: it goes straight to Stdout and Stderr.
//
// A zero Timeout means the harness waits for the child forever. When a
// timeout or cancellation kills the child, everything it spawned goes with
// it, so no engine process outlives its invocation.
type ExecInvoker struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Timeout time.Duration
}

// NewExecInvoker returns an ExecInvoker wired to the process's own
// standard streams.
func NewExecInvoker(timeout time.Duration) *ExecInvoker {
	return &ExecInvoker{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Timeout: timeout,
	}
}

// waitDelay bounds how long Wait keeps copying output after the child is
// gone and something else still holds its pipes.
const waitDelay = 2 * time.Second

// Invoke starts the child, blocks until it exits, and reports its status.
func (e *ExecInvoker) Invoke(ctx context.Context, inv Invocation) Outcome {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		return Outcome{Elapsed: elapsed}
	}

	if ctx.Err() != nil {
		return Outcome{
			ExitCode: -1,
			Elapsed:  elapsed,
			Err:      fmt.Errorf("%s: %w", inv.Program, ctx.Err()),
		}
	}

	// The child exited but a leftover descendant kept its pipes open past
	// waitDelay; the child's own status still stands.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		return Outcome{ExitCode: cmd.ProcessState.ExitCode(), Elapsed: elapsed}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Outcome{ExitCode: exitErr.ExitCode(), Elapsed: elapsed}
	}

	return Outcome{
		ExitCode: -1,
		Elapsed:  elapsed,
		Err:      fmt.Errorf("start %s: %w", inv.Program, err),
	}
}
