package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execCLI runs the root command with args, capturing combined output.
func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_ComputeRejectsBadDegree(t *testing.T) {
	dir := t.TempDir()

	_, err := execCLI(t, "compute", "--degree", "26", "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degree")

	_, err = execCLI(t, "compute", "--degree", "-1", "--data-dir", dir)
	require.Error(t, err)
}

func TestCLI_ComputeThenHeatmapAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := execCLI(t, "compute", "--degree", "3", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "degree 3")
	assert.Contains(t, out, "24 roots")

	out, err = execCLI(t, "heatmap", "--degree", "3", "--size", "100", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "grid 100x100")
	assert.Contains(t, out, "roots binned:   24")

	out, err = execCLI(t, "list", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "DEGREE")
	require.True(t, strings.Contains(out, "yes"), "run should be listed complete: %s", out)
}

func TestCLI_HeatmapRejectsBadSize(t *testing.T) {
	dir := t.TempDir()

	_, err := execCLI(t, "heatmap", "--degree", "3", "--size", "50", "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size")
}

func TestCLI_HeatmapRejectsBadResolution(t *testing.T) {
	dir := t.TempDir()

	_, err := execCLI(t, "heatmap", "--degree", "3", "--size", "100",
		"--resolution", "49", "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolution")
}

func TestCLI_ListEmptyCatalog(t *testing.T) {
	dir := t.TempDir()

	out, err := execCLI(t, "list", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "no computed runs")
}
