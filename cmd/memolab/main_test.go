package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/memolab/internal/config"
	"github.com/vango-dev/memolab/internal/demo"
	"github.com/vango-dev/memolab/internal/errors"
	"github.com/vango-dev/memolab/internal/telemetry"
)

// execute runs the CLI with a small expensive computation and returns
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvPort, "")
	t.Setenv(config.EnvLogLevel, "")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "memolab.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("demo:\n  expensiveIterations: 10\nlog:\n  level: error\n"), 0644))

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func codeOf(err error) string {
	var le *errors.LabError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return ""
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Go version:")
}

func TestPages(t *testing.T) {
	out, err := execute(t, "pages")
	require.NoError(t, err)
	assert.Contains(t, out, "State Management")
	assert.Contains(t, out, "/state/jotai")
	assert.Contains(t, out, "actions: increment, decrement, unmount, mount")

	out, err = execute(t, "pages", "--json")
	require.NoError(t, err)

	var sections []demo.Section
	require.NoError(t, json.Unmarshal([]byte(out), &sections))
	assert.Len(t, sections, 2)
}

func TestRunMemo(t *testing.T) {
	out, err := execute(t, "run", "/optimisation/memo", "increment", "select=memo", "increment", "--json")
	require.NoError(t, err)

	var result runResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Steps, 3)
	assert.Equal(t, step{Action: "select", Arg: "memo"}, result.Steps[1].Step)

	assert.Equal(t, 2, result.View.Renders["BaseComponent"])
	assert.Equal(t, 1, result.View.Renders["MemoComponent"])
	assert.Equal(t, 4, result.View.Renders["Memo"])
	assert.Equal(t, "Memoised", result.View.Output)
	assert.NotEmpty(t, result.Events)
}

func TestRunText(t *testing.T) {
	out, err := execute(t, "run", "/state/useState", "increment", "increment")
	require.NoError(t, err)
	assert.Contains(t, out, "/state/useState")
	assert.Contains(t, out, "Count: 2")
	assert.Contains(t, out, "Events")

	out, err = execute(t, "run", "/state/useState", "increment", "--quiet")
	require.NoError(t, err)
	assert.NotContains(t, out, "Events")
}

func TestRunContinuesAfterScopeViolation(t *testing.T) {
	out, err := execute(t, "run", "/state/context-api", "increment", "unmount", "increment", "mount", "--json")
	require.NoError(t, err)

	var result runResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Steps, 4)

	assert.Empty(t, result.Steps[1].Error)
	assert.Equal(t, "E001", result.Steps[2].Code)
	assert.Contains(t, result.Steps[2].Error, "must be used within a provider")
	assert.Equal(t, true, result.View.State["mounted"])
	assert.Equal(t, float64(0), result.View.State["count"])
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown page", []string{"run", "/state/nope", "increment"}, "E201"},
		{"unknown action", []string{"run", "/state/useState", "explode"}, "E202"},
		{"invalid argument", []string{"run", "/optimisation/memo", "select=fancy"}, "E203"},
		{"bad step", []string{"run", "/state/useState", "=1"}, "E142"},
		{"bad log level", []string{"--log-level", "loud", "pages"}, "E122"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, codeOf(err))
		})
	}
}

func TestMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.json"), "pages"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, "E141", codeOf(err))
}

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps([]string{"increment", "select=memo", "type=a=b"})
	require.NoError(t, err)
	assert.Equal(t, []step{
		{Action: "increment"},
		{Action: "select", Arg: "memo"},
		{Action: "type", Arg: "a=b"},
	}, steps)
	assert.Equal(t, "select=memo", steps[1].String())

	_, err = parseSteps([]string{"two words"})
	assert.Error(t, err)
}

func TestNewLoggerFormat(t *testing.T) {
	cfg := config.New()
	cfg.Log.Format = "json"

	var buf bytes.Buffer
	logger, err := newLogger(&buf, cfg)
	require.NoError(t, err)
	logger.Info("hello", "page", "/state/jotai")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "/state/jotai", line["page"])
}

func TestMetricsOptionsFromConfig(t *testing.T) {
	cfg := config.New()
	cfg.Metrics.Namespace = "lab"
	cfg.Metrics.Subsystem = "tutorial"
	cfg.Metrics.ConstLabels = map[string]string{"env": "dev"}
	cfg.Metrics.Buckets = []float64{0.5, 1}

	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(metricsOptions(cfg.Metrics, reg)...)
	m.OnMiss("expensiveValue", 20*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() != "lab_tutorial_compute_duration_seconds" {
			continue
		}
		found = true
		require.Len(t, f.GetMetric(), 1)
		metric := f.GetMetric()[0]

		labels := map[string]string{}
		for _, l := range metric.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		assert.Equal(t, "dev", labels["env"])
		assert.Equal(t, "expensiveValue", labels["name"])
		assert.Len(t, metric.GetHistogram().GetBucket(), 2)
	}
	assert.True(t, found, "compute duration should be registered under namespace and subsystem")
}

func TestRunHonoursEventLogCapacity(t *testing.T) {
	cfg := config.New()
	cfg.Demo.ExpensiveIterations = 10
	cfg.Demo.EventLogCapacity = 3

	var stdout bytes.Buffer
	a := &app{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		stdout: &stdout,
		stderr: io.Discard,
	}

	result, err := a.run("/state/useState", []step{{Action: "increment"}, {Action: "increment"}, {Action: "increment"}})
	require.NoError(t, err)
	assert.Len(t, result.Events, 3)
	assert.Equal(t, 3, result.View.State["count"])
}
