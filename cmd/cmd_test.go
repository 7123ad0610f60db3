package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/gnoverse/bitwidth/analyze"
	tt "github.com/gnoverse/bitwidth/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testSource = `package main

func mask(x uint8) uint8 {
	return x & 0x0f
}

func main() {}
`

func init() {
	color.NoColor = true
	analyze.Progress = io.Discard
}

// execute runs the root command. Flags are package state, so these tests
// are not parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags() {
	cfgFile = analyze.DefaultConfigPath
	timeout = defaultTimeout
	verbose = false
	ignoreFunctions, ignorePaths = "", ""
	jsonOutput, outPath, cacheDir, watch = false, "", "", false
	dumpFunc, dumpDot, dumpOutput = "", false, ""
	forceInit = false
}

func writeTestSource(t *testing.T) (dir, filename string) {
	t.Helper()
	dir = t.TempDir()
	filename = filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(filename, []byte(testSource), 0o644))
	return dir, filename
}

func TestAnalyzeText(t *testing.T) {
	dir, filename := writeTestSource(t)

	out, err := execute(t, "analyze", "--config", filepath.Join(dir, "none.yaml"), filename)
	require.NoError(t, err)
	assert.Contains(t, out, "info: narrow-result")
	assert.Contains(t, out, "info: narrow-value")
	assert.Contains(t, out, "result of mask needs 4 of 8 bits")
	assert.Contains(t, out, "Note: known bits: 0000UUUU")
}

func TestAnalyzeJSON(t *testing.T) {
	dir, filename := writeTestSource(t)
	jsonPath := filepath.Join(dir, "out.json")

	_, err := execute(t, "analyze", "--config", filepath.Join(dir, "none.yaml"), "--json", "-o", jsonPath, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var byFile map[string][]tt.Report
	require.NoError(t, json.Unmarshal(data, &byFile))
	require.Len(t, byFile[filename], 2)
	for _, r := range byFile[filename] {
		assert.Equal(t, "mask", r.Function)
		assert.Equal(t, "0000UUUU", r.Bits)
	}
}

func TestAnalyzeIgnoreFunctions(t *testing.T) {
	dir, filename := writeTestSource(t)

	out, err := execute(t, "analyze", "--config", filepath.Join(dir, "none.yaml"), "--ignore-functions", "mask, other", filename)
	require.NoError(t, err)
	assert.NotContains(t, out, "narrow-")
}

func TestAnalyzeWithCache(t *testing.T) {
	dir, filename := writeTestSource(t)
	cache := filepath.Join(dir, "cache")

	for i := 0; i < 2; i++ {
		out, err := execute(t, "analyze", "--config", filepath.Join(dir, "none.yaml"), "--cache-dir", cache, filename)
		require.NoError(t, err)
		assert.Contains(t, out, "result of mask needs 4 of 8 bits")
	}
	assert.FileExists(t, filepath.Join(cache, "bitwidth_cache.gob"))
}

func TestAnalyzeErrors(t *testing.T) {
	dir, _ := writeTestSource(t)

	_, err := execute(t, "analyze")
	assert.Error(t, err)

	badConfig := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("arch: vax\n"), 0o644))
	_, err = execute(t, "analyze", "--config", badConfig, dir)
	assert.ErrorContains(t, err, "unknown architecture")
}

func TestRootRunsAnalyze(t *testing.T) {
	dir, filename := writeTestSource(t)

	out, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), filename)
	require.NoError(t, err)
	assert.Contains(t, out, "narrow-value")
}

func TestDump(t *testing.T) {
	dir, filename := writeTestSource(t)
	config := filepath.Join(dir, "none.yaml")

	out, err := execute(t, "dump", "--config", config, "--func", "mask", filename)
	require.NoError(t, err)
	assert.Contains(t, out, "func mask(x u8) u8")
	assert.Contains(t, out, "bit_and")
	assert.Contains(t, out, "result       0000UUUU")
	assert.NotContains(t, out, "func main")

	out, err = execute(t, "dump", "--config", config, "--dot", filename)
	require.NoError(t, err)
	assert.Contains(t, out, `digraph "mask" {`)
	assert.Contains(t, out, `digraph "main" {`)
	assert.Contains(t, out, "=0000UUUU")

	_, err = execute(t, "dump", "--config", config, "--func", "missing", filename)
	assert.ErrorIs(t, err, errFunctionNotFound)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bitwidth.yaml")

	out, err := execute(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var config analyze.Config
	require.NoError(t, yaml.Unmarshal(data, &config))
	assert.Equal(t, analyze.DefaultConfig(), config)

	_, err = execute(t, "init", "--config", path)
	assert.ErrorIs(t, err, errConfigExists)

	_, err = execute(t, "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Nil(t, splitList(""))
}
