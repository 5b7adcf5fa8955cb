package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"martianoff/freezemod/freezeerr"
	"martianoff/freezemod/internal/config"
	"martianoff/freezemod/internal/module"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	root := t.TempDir()
	resolver := module.NewResolver(root, config.DefaultLayout(), false)
	return NewRegistry(resolver, []string{"importlib._bootstrap", "zipimport"}), root
}

func TestNewRegistry(t *testing.T) {
	r, _ := newTestRegistry(t)
	assert.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Sources())
	assert.False(t, r.Has("os"))
	assert.Nil(t, r.Get("os"))
}

func TestGetOrCreate_InfersPathAndArtifacts(t *testing.T) {
	r, root := newTestRegistry(t)

	src, err := r.GetOrCreate("importlib._bootstrap", "", "importlib._bootstrap : _frozen_importlib")
	require.NoError(t, err)

	assert.Equal(t, "importlib._bootstrap", src.ID)
	assert.Equal(t, filepath.Join(root, "Lib", "importlib", "_bootstrap.py"), src.Path)
	assert.Equal(t, filepath.Join(root, "Python", "frozen_modules", "importlib._bootstrap.h"), src.FrozenFile)
	assert.Equal(t, filepath.Join(root, "Python", "deepfreeze", "importlib._bootstrap.h"), src.DeepfreezeFile)
	assert.Equal(t, "_Py_M__importlib__bootstrap", src.Symbol)
	assert.Equal(t, "importlib__bootstrap", src.CodeName())
	assert.Equal(t, "importlib._bootstrap", src.OrigName)
	assert.True(t, src.IsBootstrap)
	assert.False(t, src.IsPackage)
}

func TestGetOrCreate_PackageAndExternalSources(t *testing.T) {
	r, root := newTestRegistry(t)

	pkg, err := r.GetOrCreate("__phello__", filepath.Join(root, "Lib", "__phello__", "__init__.py"), "<__phello__.**.*>")
	require.NoError(t, err)
	assert.True(t, pkg.IsPackage)
	assert.False(t, pkg.IsBootstrap)

	ext, err := r.GetOrCreate("frozen_only", filepath.Join(root, "Tools", "freeze", "flag.py"), "frozen_only : __hello_only__ = flag.py")
	require.NoError(t, err)
	assert.Empty(t, ext.OrigName)
	assert.False(t, ext.IsPackage)
}

func TestGetOrCreate_FirstOccurrenceWins(t *testing.T) {
	r, root := newTestRegistry(t)
	path := filepath.Join(root, "Lib", "posixpath.py")

	first, err := r.GetOrCreate("posixpath", path, "posixpath")
	require.NoError(t, err)

	again, err := r.GetOrCreate("posixpath", "", "posixpath : os.path")
	require.NoError(t, err)
	assert.Same(t, first, again)

	same, err := r.GetOrCreate("posixpath", path+string(filepath.Separator)+".", "posixpath : p = ...")
	require.NoError(t, err)
	assert.Same(t, first, same)

	assert.Equal(t, 1, r.Len())
}

func TestGetOrCreate_Conflict(t *testing.T) {
	r, root := newTestRegistry(t)

	_, err := r.GetOrCreate("m", filepath.Join(root, "p1.py"), "m : x = p1.py")
	require.NoError(t, err)

	_, err = r.GetOrCreate("m", filepath.Join(root, "p2.py"), "m : y = p2.py")
	require.Error(t, err)

	var conflict *freezeerr.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "m", conflict.ID)
	assert.Equal(t, "m : y = p2.py", conflict.Spec)
	assert.Equal(t, filepath.Join(root, "p1.py"), conflict.Existing)
	assert.Equal(t, 1, r.Len())
}

func TestSources_FirstSeenOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	for _, id := range []string{"zipimport", "abc", "codecs", "abc", "io", "zipimport"} {
		_, err := r.GetOrCreate(id, "", id)
		require.NoError(t, err)
	}

	var got []string
	for _, src := range r.Sources() {
		got = append(got, src.ID)
	}
	assert.Equal(t, []string{"zipimport", "abc", "codecs", "io"}, got)
}

func TestNewModule_Alias(t *testing.T) {
	r, root := newTestRegistry(t)
	lib, err := r.GetOrCreate("__hello__", "", "__hello__")
	require.NoError(t, err)
	ext, err := r.GetOrCreate("frozen_only", filepath.Join(root, "Tools", "flag.py"), "frozen_only")
	require.NoError(t, err)

	assert.False(t, NewModule("__hello__", false, "Test module", lib).IsAlias)
	assert.True(t, NewModule("__hello_alias__", false, "Test module", lib).IsAlias)
	assert.True(t, NewModule("frozen_only", false, "Test module", ext).IsAlias)

	m := NewModule("__phello_alias__", true, "Test module", lib)
	assert.True(t, m.IsPackage)
	assert.Equal(t, "Test module", m.Section)
	assert.Same(t, lib, m.Source)
}
