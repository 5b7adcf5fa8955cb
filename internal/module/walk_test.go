package module

import (
	"path/filepath"
	"testing"

	"martianoff/freezemod/internal/config"
	"martianoff/freezemod/internal/spec"
	"martianoff/freezemod/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phelloTree(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"Lib/__phello__/__init__.py":          "",
		"Lib/__phello__/spam.py":              "",
		"Lib/__phello__/README.txt":           "",
		"Lib/__phello__/ham/__init__.py":      "",
		"Lib/__phello__/ham/eggs.py":          "",
		"Lib/__phello__/ham/deep/__init__.py": "",
		"Lib/__phello__/ham/deep/x.py":        "",
		"Lib/__phello__/ns/y.py":              "",
		"Lib/__phello__/__pycache__/":         "",
		"Lib/__phello__/bad-name.py":          "",
		"Lib/__phello__/a_first.py":           "",
	})
	r := NewResolver(root, config.DefaultLayout(), false)
	return r, filepath.Join(root, "Lib", "__phello__")
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestSubmodules_Children(t *testing.T) {
	r, dir := phelloTree(t)

	entries, err := r.Submodules("__phello__", dir, spec.ChildrenMatch)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"__phello__.__init__",
		"__phello__.a_first",
		"__phello__.ham",
		"__phello__.spam",
	}, ids(entries))

	assert.Equal(t, filepath.Join(dir, "__init__.py"), entries[0].Path)
	assert.False(t, entries[0].IsPackage)
	assert.True(t, entries[2].IsPackage)
	assert.Equal(t, filepath.Join(dir, "ham", "__init__.py"), entries[2].Path)
}

func TestSubmodules_Descendants(t *testing.T) {
	r, dir := phelloTree(t)

	entries, err := r.Submodules("__phello__", dir, spec.DescendantsMatch)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"__phello__.__init__",
		"__phello__.a_first",
		"__phello__.ham",
		"__phello__.ham.__init__",
		"__phello__.ham.deep",
		"__phello__.ham.deep.__init__",
		"__phello__.ham.deep.x",
		"__phello__.ham.eggs",
		"__phello__.spam",
	}, ids(entries))
}

func TestSubmodules_NoMatch(t *testing.T) {
	r, dir := phelloTree(t)

	entries, err := r.Submodules("__phello__", dir, spec.NoMatch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmodules_MissingDir(t *testing.T) {
	r, dir := phelloTree(t)

	_, err := r.Submodules("nope", filepath.Join(dir, "nope"), spec.ChildrenMatch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list package nope")
}

func TestSubmodules_Deterministic(t *testing.T) {
	r, dir := phelloTree(t)

	first, err := r.Submodules("__phello__", dir, spec.DescendantsMatch)
	require.NoError(t, err)
	second, err := r.Submodules("__phello__", dir, spec.DescendantsMatch)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
