package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/freezemod/internal/config"
	"martianoff/freezemod/internal/freezer"
	"martianoff/freezemod/internal/sum"
	"martianoff/freezemod/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// tree returns a CPython-like root with Python/frozen.c in place.
func tree(t *testing.T) (root, target string) {
	t.Helper()
	root = testutil.CPythonTree(t)
	target = testutil.CopyTestdata(t, "frozen.c", filepath.Join(root, "Python"))
	return root, target
}

// freezeArtifacts writes a frozen artifact for every source of the default
// manifest, containing the source id.
func freezeArtifacts(t *testing.T, root string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RootDir = root
	f, err := freezer.New(cfg, log.New(io.Discard))
	require.NoError(t, err)
	res, err := f.Resolve()
	require.NoError(t, err)
	for _, src := range res.Registry.Sources() {
		require.NoError(t, os.WriteFile(src.FrozenFile, []byte(src.ID), 0644))
	}
}

func TestRoot_Regen(t *testing.T) {
	root, target := tree(t)

	out, err := run(t, "--root-dir", root, "--frozen-c", target, "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "updated "+target+" (29 modules, 23 sources)")
	assert.Contains(t, testutil.ReadFile(t, target), `{"os.path", "posixpath"},`)

	out, err = run(t, "regen", "--root-dir", root, "--frozen-c", target)
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged "+target)
}

func TestRoot_FrozenModulesFlag(t *testing.T) {
	root, target := tree(t)

	_, err := run(t, "regen", "--root-dir", root, "--frozen-c", target, "--frozen-modules")
	require.NoError(t, err)
	assert.Contains(t, testutil.ReadFile(t, target), `#include "frozen_modules/zipimport.h"`)
}

func TestRoot_NoTarget(t *testing.T) {
	root, _ := tree(t)
	_, err := run(t, "--root-dir", root)
	assert.ErrorIs(t, err, freezer.ErrNoTarget)
}

func TestRoot_RejectsArgs(t *testing.T) {
	_, err := run(t, "stray")
	assert.Error(t, err)
}

func TestRoot_EnvironmentAndConfigFile(t *testing.T) {
	root, target := tree(t)
	t.Setenv("FREEZEMOD_ROOT_DIR", root)
	t.Setenv("FREEZEMOD_FROZEN_C", target)

	out, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "updated "+target)

	manifest := filepath.Join(t.TempDir(), "frozen.toml")
	require.NoError(t, os.WriteFile(manifest, []byte("[[section]]\nname = \"core\"\nspecs = [\"abc\"]\n"), 0644))
	cfgFile := filepath.Join(t.TempDir(), "freezemod.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("manifest = \""+filepath.ToSlash(manifest)+"\"\n"), 0644))

	out, err = run(t, "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "(1 modules, 1 sources)")
}

func TestRoot_InvalidLayoutConfig(t *testing.T) {
	root, target := tree(t)
	cfgFile := filepath.Join(t.TempDir(), "freezemod.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("[layout]\npackage_init = \"__init__.pyw\"\n"), 0644))

	_, err := run(t, "--config", cfgFile, "--root-dir", root, "--frozen-c", target)
	assert.ErrorContains(t, err, "must end with module suffix")
}

func TestList(t *testing.T) {
	root, _ := tree(t)

	out, err := run(t, "list", "--root-dir", root)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 31)
	assert.Equal(t, []string{"MODULE", "ID", "PKG", "ALIAS", "SECTION"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"_frozen_importlib", "importlib._bootstrap", "false", "true", "import", "system"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"__hello_only__", "frozen_only", "false", "true", "Test", "module"}, strings.Fields(lines[29]))
	assert.Equal(t, "29 modules from 23 sources", lines[30])
}

func TestSummary_JSON(t *testing.T) {
	root, _ := tree(t)
	freezeArtifacts(t, root)

	out, err := run(t, "summary", "--json", "--root-dir", root)
	require.NoError(t, err)

	var records []sum.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 29)
	assert.Equal(t, "_frozen_importlib", records[0].Module)
	assert.Equal(t, "<importlib._bootstrap>", records[0].Source)
	assert.Equal(t, "importlib._bootstrap.h", records[0].Frozen)
	assert.Equal(t, "Tools/freeze/flag.py", records[28].Source)
	assert.Len(t, records[28].Checksum, 64)
}

func TestSummary_Table(t *testing.T) {
	root, _ := tree(t)
	freezeArtifacts(t, root)

	out, err := run(t, "summary", "--root-dir", root)
	require.NoError(t, err)
	assert.Contains(t, out, "CHECKSUM")
	assert.Contains(t, out, "<__phello__.ham>")
}

func TestSummary_MissingArtifacts(t *testing.T) {
	root, _ := tree(t)
	_, err := run(t, "summary", "--root-dir", root)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSumAndVerify(t *testing.T) {
	root, _ := tree(t)
	freezeArtifacts(t, root)
	sumFile := filepath.Join(t.TempDir(), "frozen.sum")

	out, err := run(t, "sum", "--root-dir", root, "--output", sumFile)
	require.NoError(t, err)
	assert.Contains(t, out, "(29 entries)")

	parsed, err := sum.ParseFile(sumFile)
	require.NoError(t, err)
	assert.Len(t, parsed.Entries, 29)

	out, err = run(t, "verify", "--root-dir", root, "--sum", sumFile)
	require.NoError(t, err)
	assert.Contains(t, out, "OK 29 modules match")

	posix := filepath.Join(root, "Python", "frozen_modules", "posixpath.h")
	require.NoError(t, os.WriteFile(posix, []byte("stale"), 0644))

	out, err = run(t, "verify", "--root-dir", root, "--sum", sumFile)
	assert.ErrorIs(t, err, ErrVerifyFailed)
	assert.Contains(t, out, "FAILED: posixpath")
	assert.Contains(t, out, "FAILED: os.path")
	assert.Contains(t, out, "2 of 29 modules failed verification")
}

func TestSum_UsesSumFileSetting(t *testing.T) {
	root, _ := tree(t)
	freezeArtifacts(t, root)
	sumFile := filepath.Join(t.TempDir(), "custom.sum")
	t.Setenv("FREEZEMOD_SUM", sumFile)

	_, err := run(t, "sum", "--root-dir", root)
	require.NoError(t, err)
	assert.FileExists(t, sumFile)
}

func TestVerify_MissingSumFile(t *testing.T) {
	root, _ := tree(t)
	_, err := run(t, "verify", "--root-dir", root, "--sum", filepath.Join(t.TempDir(), "none.sum"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "freezemod version dev\n", out)
	assert.Equal(t, "dev (built from source)", versionString())
}
