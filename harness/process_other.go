//go:build !unix

package harness

import "os/exec"

// killProcessGroup is a no-op off unix; cancellation kills the child only.
func killProcessGroup(*exec.Cmd) {}
