package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("VOLUMEPIPE_NUM_THREADS", "")
	var out bytes.Buffer
	cfg := filepath.Join(t.TempDir(), "absent.yaml")
	require.NoError(t, run(append([]string{"-config", cfg}, args...), &out))
	return out.String()
}

func TestRunScale(t *testing.T) {
	out := runCLI(t, "-size", "8x8x4", "-threads", "2", "-op", "scale")
	assert.Contains(t, out, "scale on")
	assert.Contains(t, out, "2 threads")
}

func TestRunStats(t *testing.T) {
	out := runCLI(t, "-size", "4x4x4", "-threads", "3", "-op", "stats")
	assert.Contains(t, out, "count=64")
}

func TestRunSplitPrintsPieces(t *testing.T) {
	out := runCLI(t, "-size", "4x4x10", "-threads", "3", "-split")
	assert.Contains(t, out, "3 pieces on axis 2 (4 per piece)")
	assert.Contains(t, out, "  2: ")
}

func TestRunSplitReportsAchievedPieces(t *testing.T) {
	out := runCLI(t, "-size", "1x1x5", "-threads", "4", "-split")
	assert.Contains(t, out, "requested 4, 3 pieces on axis 2 (2 per piece)")
	assert.NotContains(t, out, "  3: ")
}

func TestRunSavesSlices(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "slices")
	runCLI(t, "-size", "4x3x2", "-threads", "2", "-op", "multiply3", "-slices-dir", dir)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunRejectsBadArguments(t *testing.T) {
	t.Setenv("VOLUMEPIPE_NUM_THREADS", "")
	cfg := filepath.Join(t.TempDir(), "absent.yaml")
	var out bytes.Buffer
	assert.Error(t, run([]string{"-config", cfg, "-op", "blur", "-size", "2x2x2"}, &out))
	assert.Error(t, run([]string{"-config", cfg, "-size", "2x2"}, &out))
}
