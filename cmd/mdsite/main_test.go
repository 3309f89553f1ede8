package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mdsite dev\n", out)
}

func TestInitBuildHistory(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--root", dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "src/index.md")
	assert.Contains(t, out, "Site initialized.")

	out, err = execute(t, "--root", dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Site already initialized.")

	_, err = execute(t, "--root", dir, "build", "--backend", "goldmark")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "target", "index.html"))
	require.NoError(t, err)

	out, err = execute(t, "--root", dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "goldmark")
	assert.Contains(t, out, "1 runs")

	out, err = execute(t, "--root", dir, "history", "--export", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"output_path": "target/index.html"`)
}

func TestBuild_InvalidPolicy(t *testing.T) {
	_, err := execute(t, "--root", t.TempDir(), "build", "--policy", "lenient")
	assert.ErrorContains(t, err, "policy")
}
