package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rootfinder-mcp/internal/solver"
	"github.com/dshills/rootfinder-mcp/pkg/types"
)

// runCLI executes the root command in an isolated home and working directory
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "rootfinder dev")
	assert.Contains(t, out, "Build Mode:")
	assert.Contains(t, out, "SQLite Driver:")
}

func TestEvalCommand(t *testing.T) {
	out, err := runCLI(t, "eval", "--expr", "x^2 + 1", "--x", "2")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	_, err = runCLI(t, "eval", "--expr", "sqrt(x)", "--x=-4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "square root of a negative value")
}

func TestDiffCommand(t *testing.T) {
	out, err := runCLI(t, "diff", "--expr", "x^2")
	require.NoError(t, err)
	assert.Equal(t, "2 * x\n", out)

	out, err = runCLI(t, "diff", "--expr", "x^2", "--x", "3")
	require.NoError(t, err)
	assert.Equal(t, "2 * x\nf'(3) = 6\n", out)

	_, err = runCLI(t, "diff", "--expr", "x +")
	assert.Error(t, err)
}

func TestPlotCommand(t *testing.T) {
	out, err := runCLI(t, "plot", "--expr", "1/x", "--min=-1", "--max", "1", "--points", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "-1\t-1", lines[0])
	assert.Equal(t, "0\terror: division by zero", lines[1])
	assert.Equal(t, "1\t1", lines[2])
	assert.Equal(t, "# 1 of 3 points could not be evaluated", lines[3])

	out, err = runCLI(t, "plot", "--expr", "x - 0.1", "--min=-1", "--max", "1", "--points", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "# sign change in [0, 0.5]")

	_, err = runCLI(t, "plot", "--expr", "x", "--min", "2", "--max", "1")
	assert.Error(t, err)
}

func TestSolveCommandText(t *testing.T) {
	out, err := runCLI(t, "--no-history", "solve", "bisection", "--expr", "x^3 - x - 2", "--a", "1", "--b", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "Iteration 1: a=1.000000, b=2.000000, c=1.500000, f(c)=-0.125000", lines[0])
	assert.Equal(t, "Root: 1.521484 (converged after 9 iterations)", lines[9])
	assert.NotContains(t, out, "Run:")
}

func TestSolveCommandJSON(t *testing.T) {
	out, err := runCLI(t, "--no-history", "solve", "newton", "--expr", "x^2 - 2", "--x0", "1", "--tol", "1e-10", "--json")
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "newton_raphson", payload["method"])
	assert.Equal(t, "converged", payload["status"])
	assert.InDelta(t, 1.41421356237, payload["root"], 1e-9)
	assert.NotContains(t, payload, "run_id")
}

func TestSolveCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown method", []string{"solve", "regula", "--expr", "x"}, types.ErrUnknownMethod},
		{"missing bracket end", []string{"solve", "bisection", "--expr", "x", "--a=-1"}, types.ErrMissingParameter},
		{"missing second guess", []string{"solve", "secant", "--expr", "x", "--x0", "1"}, types.ErrMissingParameter},
		{"invalid bracket", []string{"solve", "bisection", "--expr", "x^2 + 1", "--a=-1", "--b", "1"}, solver.ErrInvalidBracket},
		{"zero tolerance", []string{"solve", "newton", "--expr", "x", "--x0", "1", "--tol", "0"}, types.ErrInvalidTolerance},
		{"over iteration limit", []string{"solve", "newton", "--expr", "x", "--x0", "1", "--max-iter", "20000"}, types.ErrInvalidMaxIterations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append([]string{"--no-history"}, tt.args...)...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSolveAndHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	out, err := runCLI(t, "--db", dbPath, "solve", "secant", "--expr", "cos(x) - x", "--x0", "0", "--x1", "1")
	require.NoError(t, err)

	match := regexp.MustCompile(`Run: (\S+)`).FindStringSubmatch(out)
	require.Len(t, match, 2)
	runID := match[1]

	_, err = runCLI(t, "--db", dbPath, "solve", "bisection", "--expr", "x^2 + 1", "--a=-1", "--b", "1")
	require.Error(t, err)

	out, err = runCLI(t, "--db", dbPath, "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "failed")
	assert.Contains(t, lines[2], runID)

	out, err = runCLI(t, "--db", dbPath, "history", "--method", "secant")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	out, err = runCLI(t, "--db", dbPath, "history", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "Method:     secant")
	assert.Contains(t, out, "Created:")
	assert.Contains(t, out, "Status:     converged")
	assert.Contains(t, out, "Iteration 1: x0=0.000000, x1=1.000000")

	_, err = runCLI(t, "--db", dbPath, "history", "missing-id")
	assert.Error(t, err)
}

func TestHistoryDisabled(t *testing.T) {
	_, err := runCLI(t, "--no-history", "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := runCLI(t, "--log-level", "loud", "eval", "--expr", "x", "--x", "1")
	assert.Error(t, err)
}
