// Package testutil provides fixtures shared by freezemod tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
	"github.com/stretchr/testify/require"
)

// Testdata returns the path of a fixture under internal/testutil/testdata.
// In Bazel tests, it uses runfiles to find the file.
// Outside of Bazel, it falls back to the directory of this source file.
func Testdata(t testing.TB, name string) string {
	t.Helper()

	if path, err := bazel.Runfile(filepath.Join("internal", "testutil", "testdata", name)); err == nil {
		return path
	}

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "cannot locate testutil sources")
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// CopyTestdata copies a fixture into dir and returns the new path, so tests
// can rewrite it freely.
func CopyTestdata(t testing.TB, name, dir string) string {
	t.Helper()

	content, err := os.ReadFile(Testdata(t, name))
	require.NoError(t, err)

	dst := filepath.Join(dir, filepath.Base(name))
	require.NoError(t, os.WriteFile(dst, content, 0644))
	return dst
}

// WriteTree creates files under root. Keys are slash-separated paths
// relative to root; a key ending in "/" creates an empty directory.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// ReadFile returns the content of path as a string.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}
