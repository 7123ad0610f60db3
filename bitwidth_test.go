package bitwidth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `package main

func low(x uint32) uint32 {
	return x & 0xff
}

func main() {}
`

func TestAnalyzeSource(t *testing.T) {
	t.Parallel()
	reports, err := AnalyzeSource(context.Background(), "low.go", []byte(source), DefaultSettings())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, KindSummary, reports[0].Kind)
	assert.Equal(t, "result of low needs 8 of 32 bits", reports[0].Message)
	assert.Equal(t, KindValue, reports[1].Kind)
	assert.Equal(t, 24, reports[1].Saved)
	assert.Equal(t, "low.go", reports[1].Filename)
}

func TestAnalyzeFile(t *testing.T) {
	t.Parallel()
	filename := filepath.Join(t.TempDir(), "low.go")
	require.NoError(t, os.WriteFile(filename, []byte(source), 0o644))

	settings := DefaultSettings()
	settings.MinSavedBits = 25
	reports, err := AnalyzeFile(context.Background(), filename, settings)
	require.NoError(t, err)
	assert.Empty(t, reports)

	settings.Arch = "vax"
	_, err = AnalyzeFile(context.Background(), filename, settings)
	assert.Error(t, err)
}
