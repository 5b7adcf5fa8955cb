package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"martianoff/freezemod/internal/resolve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var posixVars = Vars{RootDir: "/src/cpython", OSPath: "posixpath"}

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	m, err := Default(posixVars)
	require.NoError(t, err)

	assert.Equal(t, []string{"importlib._bootstrap", "importlib._bootstrap_external", "zipimport"}, m.Bootstrap)
	assert.Equal(t, "Test module", m.TestSection)

	var names []string
	for _, sec := range m.Sections {
		names = append(names, sec.Name)
	}
	assert.Equal(t, []string{
		"import system",
		"stdlib - startup, without site (python -S)",
		"stdlib - startup, with site",
		"runpy - run module with -m",
		"Test module",
	}, names)

	assert.Contains(t, m.Sections[2].Specs, "posixpath : os.path")
	assert.Equal(t, "frozen_only : __hello_only__ = /src/cpython/Tools/freeze/flag.py", m.Sections[4].Specs[5])
	assert.Equal(t, 24, m.SpecCount())
}

func TestDefault_WindowsPath(t *testing.T) {
	m, err := Default(Vars{RootDir: `C:\cpython`, OSPath: "ntpath"})
	require.NoError(t, err)
	assert.Contains(t, m.Sections[2].Specs, "ntpath : os.path")
}

func TestDefaultVars(t *testing.T) {
	v := DefaultVars("/root")
	assert.Equal(t, "/root", v.RootDir)
	assert.Contains(t, []string{"posixpath", "ntpath"}, v.OSPath)
}

func TestLoad_TOML(t *testing.T) {
	path := writeManifest(t, "frozen.toml", `
bootstrap = ["zipimport"]

[[section]]
name = "core"
specs = ["zipimport", "${OS_PATH} : os.path"]

[[section]]
name = "extra"
specs = ["<json.*>"]
`)
	m, err := Load(path, posixVars)
	require.NoError(t, err)

	assert.Equal(t, DefaultTestSection, m.TestSection)
	assert.Equal(t, []resolve.Section{
		{Name: "core", Specs: []string{"zipimport", "posixpath : os.path"}},
		{Name: "extra", Specs: []string{"<json.*>"}},
	}, m.ResolveSections())
}

func TestLoad_CUE(t *testing.T) {
	path := writeManifest(t, "frozen.cue", `
bootstrap: ["importlib._bootstrap"]
test_section: "tests"
section: [
	{name: "import system", specs: ["importlib._bootstrap : _frozen_importlib"]},
	{name: "tests", specs: ["frozen_only : __hello_only__ = ${ROOT_DIR}/flag.py"]},
]
`)
	m, err := Load(path, posixVars)
	require.NoError(t, err)

	assert.Equal(t, []string{"importlib._bootstrap"}, m.Bootstrap)
	assert.Equal(t, "tests", m.TestSection)
	require.Len(t, m.Sections, 2)
	assert.Equal(t, "frozen_only : __hello_only__ = /src/cpython/flag.py", m.Sections[1].Specs[0])
}

func TestLoad_CUEDefaults(t *testing.T) {
	path := writeManifest(t, "frozen.cue", `section: [{name: "s", specs: ["abc"]}]`)
	m, err := Load(path, posixVars)
	require.NoError(t, err)
	assert.Empty(t, m.Bootstrap)
	assert.Equal(t, DefaultTestSection, m.TestSection)
}

func TestLoad_CUESchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no sections", `section: []`},
		{"unknown field", `section: [{name: "s", specs: []}], extra: 1`},
		{"bad bootstrap id", `bootstrap: ["not an id"], section: [{name: "s", specs: []}]`},
		{"empty section name", `section: [{name: "", specs: []}]`},
		{"syntax", `section: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, "m.cue", tt.content)
			_, err := Load(path, posixVars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid manifest")
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeManifest(t, "m.yaml", "a: b"), posixVars)
	assert.ErrorContains(t, err, "unsupported manifest format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"), posixVars)
	assert.ErrorContains(t, err, "failed to read manifest")

	_, err = Load(writeManifest(t, "m.toml", "section = 3"), posixVars)
	assert.ErrorContains(t, err, "failed to parse")

	_, err = Load(writeManifest(t, "m.toml", "unknown = 1\n[[section]]\nname = \"s\"\nspecs = []\n"), posixVars)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Manifest
		wantErr string
	}{
		{"no sections", Manifest{}, "no sections"},
		{"unnamed", Manifest{Sections: []Section{{Specs: []string{"a"}}}}, "has no name"},
		{"duplicate", Manifest{Sections: []Section{{Name: "a"}, {Name: "a"}}}, "declared twice"},
		{"blank spec", Manifest{Sections: []Section{{Name: "a", Specs: []string{" "}}}}, "spec 1 is empty"},
		{"ok", Manifest{Sections: []Section{{Name: "a", Specs: []string{"abc"}}}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParse_UndefinedVariables(t *testing.T) {
	data := []byte("[[section]]\nname = \"s\"\nspecs = [\"${NOPE} : a\", \"$NOPE\", \"${ALSO}\"]\n")
	_, err := Parse(data, FormatTOML, "m.toml", posixVars)
	assert.ErrorContains(t, err, "undefined variables in specs: ALSO, NOPE")
}

func TestResolveSections_Copies(t *testing.T) {
	m := &Manifest{Sections: []Section{{Name: "s", Specs: []string{"a"}}}}
	secs := m.ResolveSections()
	secs[0].Specs[0] = "b"
	assert.Equal(t, "a", m.Sections[0].Specs[0])
}
