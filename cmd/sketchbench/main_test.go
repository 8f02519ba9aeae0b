package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/sketchbench/harness"
)

type testEnv struct {
	app      *app
	recorder *harness.Recorder
	stdout   *bytes.Buffer
	timeout  time.Duration
}

func newTestEnv(outcomes map[string]harness.Outcome) *testEnv {
	env := &testEnv{stdout: &bytes.Buffer{}}
	env.recorder = &harness.Recorder{Out: env.stdout, Outcomes: outcomes}

	level := new(slog.LevelVar)
	env.app = &app{
		logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})),
		level:  level,
		stdout: env.stdout,
		newInvoker: func(timeout time.Duration) harness.Invoker {
			env.timeout = timeout
			return env.recorder
		},
	}

	return env
}

func (e *testEnv) execute(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer

	cmd := newRootCmd(e.app)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

func TestRunDefaultCatalog(t *testing.T) {
	env := newTestEnv(nil)

	_, _, err := env.execute("run")
	require.NoError(t, err)

	cmds := env.recorder.Commands()
	require.Len(t, cmds, 12)
	assert.Equal(t, "cargo build --release", cmds[0])
	assert.Equal(t, "./target/release/case-study-tlgl", cmds[1])
	assert.Equal(t, "./target/release/case-study-tlgl -r", cmds[2])
	assert.Equal(t, "./target/release/case-study-arabidopsis", cmds[3])
	assert.Equal(t, "./target/release/case-study-arabidopsis -m", cmds[4])
	assert.Equal(t,
		"./target/release/inference-with-attractors "+
			"benchmark_models/celldivb_9v/model_parametrized.aeon "+
			"benchmark_models/celldivb_9v/attractor_states.txt "+
			"-g benchmark_models/celldivb_9v/model_concrete.aeon",
		cmds[5])
	assert.Contains(t, cmds[11], "benchmark_models/macrophage_321v/")

	assert.Equal(t, time.Duration(0), env.timeout)
	assert.Contains(t, env.stdout.String(), "START SCALABILITY BENCHMARKS RUN")
}

func TestRunSelection(t *testing.T) {
	env := newTestEnv(nil)

	_, _, err := env.execute("run",
		"--skip-build",
		"--case-study", "arabidopsis",
		"--model", "nsp9_252v,eprotein_35v",
		"--bench-dir", "/data/bench",
		"--workdir", "/src/sketches",
		"--timeout", "90s",
	)
	require.NoError(t, err)

	calls := env.recorder.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "./target/release/case-study-arabidopsis", calls[0].String())
	assert.Equal(t, "/data/bench/eprotein_35v/model_parametrized.aeon", calls[2].Args[0])
	assert.Equal(t, "/data/bench/nsp9_252v/model_parametrized.aeon", calls[3].Args[0])

	for _, c := range calls {
		assert.Equal(t, "/src/sketches", c.Dir)
	}

	assert.Equal(t, 90*time.Second, env.timeout)
}

func TestRunUnknownModel(t *testing.T) {
	env := newTestEnv(nil)

	_, _, err := env.execute("run", "--model", "nope_1v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
	assert.Empty(t, env.recorder.Calls())
}

func TestRunContinuesByDefault(t *testing.T) {
	env := newTestEnv(map[string]harness.Outcome{
		"./target/release/case-study-tlgl": {ExitCode: 1},
	})

	_, _, err := env.execute("run", "--skip-sweep")
	require.NoError(t, err)
	assert.Len(t, env.recorder.Calls(), 5)
}

func TestRunStopOnError(t *testing.T) {
	env := newTestEnv(map[string]harness.Outcome{
		"./target/release/case-study-tlgl": {ExitCode: 1},
	})

	_, errOut, err := env.execute("run", "--stop-on-error", "--summary")
	require.Error(t, err)
	assert.ErrorIs(t, err, harness.ErrStopped)
	assert.Len(t, env.recorder.Calls(), 2)

	assert.Contains(t, errOut, "## Run Summary")
	assert.Contains(t, errOut, "2 invocations, 1 failed")
}

func TestRunCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
build:
  program: make
case_studies:
  - name: cns
    binary: ./cns
    variants:
      - label: baseline
inference_binary: ./infer
layout:
  base_dir: m
entries: [x]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	env := newTestEnv(nil)

	_, _, err := env.execute("run", "--catalog", path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"make",
		"./cns",
		"./infer m/x/model_parametrized.aeon m/x/attractor_states.txt -g m/x/model_concrete.aeon",
	}, env.recorder.Commands())
}

func TestPlanTable(t *testing.T) {
	env := newTestEnv(nil)

	out, _, err := env.execute("plan", "--skip-case-studies", "--model", "etc_84v")
	require.NoError(t, err)

	assert.Contains(t, out, "| 1 | build | - | `cargo build --release` |")
	assert.Contains(t, out, "| 2 | sweep | etc_84v |")
	assert.Empty(t, env.recorder.Calls())
}

func TestPlanJSON(t *testing.T) {
	env := newTestEnv(nil)

	out, _, err := env.execute("plan", "--json", "--skip-build", "--skip-sweep")
	require.NoError(t, err)

	var steps []harness.Step
	require.NoError(t, json.Unmarshal([]byte(out), &steps))
	require.Len(t, steps, 4)
	assert.Equal(t, harness.PhaseCaseStudy, steps[0].Phase)
	assert.Equal(t, []string{"-m"}, steps[3].Invocation.Args)
}

func TestList(t *testing.T) {
	env := newTestEnv(nil)

	out, _, err := env.execute("list")
	require.NoError(t, err)

	assert.Contains(t, out, "Build: cargo build --release")
	assert.Contains(t, out, "tlgl (CASE STUDY 1): ./target/release/case-study-tlgl")
	assert.Contains(t, out, "    -r   refined variant of the sketch")
	assert.Contains(t, out, "  macrophage_321v")
}

func TestVerboseLowersLogLevel(t *testing.T) {
	env := newTestEnv(nil)
	env.app.level.Set(slog.LevelWarn)

	_, _, err := env.execute("-v", "list")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, env.app.level.Level())
}
