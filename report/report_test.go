package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/weiihann/sketchbench/harness"
)

func sampleSteps() []harness.Step {
	return []harness.Step{
		{
			Phase:      harness.PhaseBuild,
			Invocation: harness.Invocation{Program: "cargo", Args: []string{"build", "--release"}},
		},
		{
			Phase:      harness.PhaseCaseStudy,
			Subject:    "tlgl",
			Label:      "refined",
			Invocation: harness.Invocation{Program: "./cs", Args: []string{"-r"}},
		},
		{
			Phase:   harness.PhaseSweep,
			Subject: "a",
			Invocation: harness.Invocation{
				Program: "./infer",
				Args:    []string{"a/p.aeon", "a/att.txt", "-g", "a/c.aeon"},
			},
		},
	}
}

func TestPlan(t *testing.T) {
	var buf bytes.Buffer
	if err := Plan(&buf, sampleSteps()); err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"| 1 | build | - | `cargo build --release` |",
		"| 2 | case-study | tlgl (refined) | `./cs -r` |",
		"| 3 | sweep | a | `./infer a/p.aeon a/att.txt -g a/c.aeon` |",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("plan missing row %q:\n%s", want, output)
		}
	}
}

func TestPlanEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Plan(&buf, nil); err == nil {
		t.Error("expected error for empty plan")
	}
}

func TestPlanJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PlanJSON(&buf, sampleSteps()); err != nil {
		t.Fatalf("PlanJSON failed: %v", err)
	}

	var decoded []harness.Step
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal JSON: %v", err)
	}

	if len(decoded) != 3 {
		t.Fatalf("got %d steps, want 3", len(decoded))
	}
	if decoded[2].Invocation.Args[3] != "a/c.aeon" {
		t.Errorf("goal arg = %q, want a/c.aeon", decoded[2].Invocation.Args[3])
	}
	if decoded[1].Label != "refined" {
		t.Errorf("label = %q, want refined", decoded[1].Label)
	}
}

func TestPlanJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlanJSON(&buf, nil); err != nil {
		t.Fatalf("PlanJSON failed: %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty plan JSON = %q, want []", got)
	}
}

func TestSummary(t *testing.T) {
	steps := sampleSteps()
	records := []harness.Record{
		{Step: steps[0], Outcome: harness.Outcome{Elapsed: 1500 * time.Millisecond}},
		{Step: steps[1], Outcome: harness.Outcome{ExitCode: 2, Elapsed: 20 * time.Millisecond}},
		{Step: steps[2], Outcome: harness.Outcome{
			ExitCode: -1,
			Err:      errors.New("start ./infer: no such file"),
		}},
	}

	var buf bytes.Buffer
	if err := Summary(&buf, records); err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"| build | - | 0 | 1.50s |",
		"| case-study | tlgl (refined) | 2 | 20ms |",
		"| sweep | a | error: start ./infer: no such file | 0ms |",
		"3 invocations, 2 failed, 1.52s total",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("summary missing %q:\n%s", want, output)
		}
	}
}

func TestSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Summary(&buf, nil); err == nil {
		t.Error("expected error for empty summary")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{999 * time.Millisecond, "999ms"},
		{time.Second, "1.00s"},
		{90 * time.Second, "90.00s"},
	}

	for _, tt := range tests {
		if got := formatElapsed(tt.in); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
