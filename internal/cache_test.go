package internal

import (
	"go/token"
	"os"
	"path/filepath"
	"testing"
	"time"

	tt "github.com/gnoverse/bitwidth/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReports(filename string) []tt.Report {
	pos := token.Position{Filename: filename, Line: 3, Column: 2}
	return []tt.Report{
		{
			Kind:        tt.KindValue,
			Severity:    tt.SeverityInfo,
			Function:    "mask",
			Value:       "t0",
			Filename:    filename,
			Start:       pos,
			End:         pos,
			Bits:        "0000UUUU",
			Width:       8,
			Significant: 4,
			Saved:       4,
			Message:     "t0 (uint8) needs 4 of 8 bits",
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCache(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	t.Run("SaveAndLoad", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "test.go")
		writeFile(t, filename, "package main\n\nfunc main() {}\n")
		reports := sampleReports(filename)

		require.NoError(t, cache.Set(filename, reports))
		loaded, found := cache.Get(filename)
		assert.True(t, found)
		assert.Equal(t, reports, loaded)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := cache.Get("nonexistent.go")
		assert.False(t, found)
	})

	t.Run("FileModified", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "modified.go")
		writeFile(t, filename, "package main\n\nfunc main() {}\n")
		require.NoError(t, cache.Set(filename, sampleReports(filename)))

		writeFile(t, filename, "package main\n\nfunc main() { println(\"Hello\") }\n")
		_, found := cache.Get(filename)
		assert.False(t, found)
	})

	t.Run("Expired", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "expired.go")
		writeFile(t, filename, "package main\n")
		require.NoError(t, cache.Set(filename, sampleReports(filename)))

		cache.SetMaxAge(time.Nanosecond)
		defer cache.SetMaxAge(DefaultCacheMaxAge)
		time.Sleep(time.Millisecond)

		_, found := cache.Get(filename)
		assert.False(t, found)
	})
}

func TestCachePersistence(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	filename := filepath.Join(tmpDir, "a.go")
	writeFile(t, filename, "package a\n")

	cache, err := NewCache(cacheDir)
	require.NoError(t, err)
	require.NoError(t, cache.Set(filename, sampleReports(filename)))

	reopened, err := NewCache(cacheDir)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
	reports, found := reopened.Get(filename)
	assert.True(t, found)
	assert.Len(t, reports, 1)
}

func TestCacheDependencies(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	config := filepath.Join(tmpDir, ".bitwidth.yaml")
	filename := filepath.Join(tmpDir, "a.go")
	writeFile(t, config, "arch: amd64\n")
	writeFile(t, filename, "package a\n")

	cache, err := NewCache(cacheDir, config)
	require.NoError(t, err)
	require.NoError(t, cache.Set(filename, sampleReports(filename)))

	t.Run("unchanged dependency keeps entries", func(t *testing.T) {
		reopened, err := NewCache(cacheDir, config)
		require.NoError(t, err)
		assert.Equal(t, 1, reopened.Len())
	})

	t.Run("changed dependency drops entries", func(t *testing.T) {
		writeFile(t, config, "arch: 386\n")

		_, found := cache.Get(filename)
		assert.False(t, found)

		reopened, err := NewCache(cacheDir, config)
		require.NoError(t, err)
		assert.Equal(t, 0, reopened.Len())
	})
}

func TestCacheMissingDependency(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	filename := filepath.Join(tmpDir, "a.go")
	writeFile(t, filename, "package a\n")

	cache, err := NewCache(filepath.Join(tmpDir, "cache"), filepath.Join(tmpDir, "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cache.Set(filename, sampleReports(filename)))

	_, found := cache.Get(filename)
	assert.True(t, found)
}

func TestCacheInvalidateAll(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")

	cache, err := NewCache(cacheDir)
	require.NoError(t, err)
	for _, name := range []string{"a.go", "b.go"} {
		filename := filepath.Join(tmpDir, name)
		writeFile(t, filename, "package a\n")
		require.NoError(t, cache.Set(filename, sampleReports(filename)))
	}
	assert.Equal(t, 2, cache.Len())

	cache.InvalidateAll()
	assert.Equal(t, 0, cache.Len())

	reopened, err := NewCache(cacheDir)
	require.NoError(t, err)
	assert.Equal(t, 0, reopened.Len())
}
