package main_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectRoot returns the absolute path to the project root directory.
func projectRoot(tb testing.TB) string {
	tb.Helper()

	dir, err := os.Getwd()
	require.NoError(tb, err, "failed to get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			tb.Fatal("could not find project root (no go.mod found in any parent directory)")
		}
		dir = parent
	}
}

// buildBinary compiles the plotline binary with CGO disabled, which the
// pure-Go sqlite driver allows, and returns its path.
func buildBinary(tb testing.TB) string {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping binary build in -short mode")
	}

	binPath := filepath.Join(tb.TempDir(), "plotline")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/plotline/")
	cmd.Dir = projectRoot(tb)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")

	output, err := cmd.CombinedOutput()
	require.NoError(tb, err, "go build failed: %s", string(output))
	return binPath
}

func TestBinary_Version(t *testing.T) {
	bin := buildBinary(t)

	output, err := exec.Command(bin, "version").CombinedOutput()
	require.NoError(t, err, "binary execution failed with output: %s", string(output))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(output)), "plotline v"))
}

func TestBinary_ScheduleRoundTrip(t *testing.T) {
	bin := buildBinary(t)
	dir := t.TempDir()

	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command(bin, append(args, "--no-color", "--tz", "UTC")...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "plotline %v: %s", args, string(out))
		return string(out)
	}

	run("init", "--name", "e2e", "--backend", "sqlite")
	run("add", "Write report", "--start", "2024-01-02 09:00", "--estimate", "60")
	out := run("schedule")
	assert.Contains(t, out, "2024-01-02 09:00 -> 10:00")
	assert.FileExists(t, filepath.Join(dir, ".plotline", "tasks.db"))
}

func TestBinary_UnknownCommandExitsNonZero(t *testing.T) {
	bin := buildBinary(t)

	output, err := exec.Command(bin, "frobnicate").CombinedOutput()
	require.Error(t, err)
	assert.Contains(t, string(output), "Error:")
}
