// Package manifest loads the sectioned list of frozen module specs.
//
// A manifest is TOML or CUE. Spec strings may reference ${ROOT_DIR} and
// ${OS_PATH}, which are expanded when the manifest is loaded. Without an
// explicit manifest the embedded default, CPython's frozen set, is used.
package manifest

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/pelletier/go-toml/v2"

	"martianoff/freezemod/internal/resolve"
)

//go:embed frozen.toml
var defaultManifest []byte

//go:embed manifest_schema.cue
var schema []byte

// DefaultTestSection labels the section routed to the test table when a
// manifest does not name one.
const DefaultTestSection = "Test module"

// Manifest is the ordered list of sections to freeze.
type Manifest struct {
	Bootstrap   []string  `toml:"bootstrap" json:"bootstrap"`
	TestSection string    `toml:"test_section" json:"test_section"`
	Sections    []Section `toml:"section" json:"section"`
}

// Section is a named group of spec strings.
type Section struct {
	Name  string   `toml:"name" json:"name"`
	Specs []string `toml:"specs" json:"specs"`
}

// Format identifies a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported manifest format %q (want .toml or .cue)", filepath.Ext(path))
	}
}

// Vars are the substitutions available to spec strings.
type Vars struct {
	RootDir string // ${ROOT_DIR}
	OSPath  string // ${OS_PATH}
}

// DefaultVars returns the substitutions for root on the running platform.
func DefaultVars(root string) Vars {
	osPath := "posixpath"
	if runtime.GOOS == "windows" {
		osPath = "ntpath"
	}
	return Vars{RootDir: root, OSPath: osPath}
}

func (v Vars) lookup(name string) (string, bool) {
	switch name {
	case "ROOT_DIR":
		return v.RootDir, true
	case "OS_PATH":
		return v.OSPath, true
	default:
		return "", false
	}
}

// Default returns the embedded manifest expanded with vars.
func Default(vars Vars) (*Manifest, error) {
	return Parse(defaultManifest, FormatTOML, "frozen.toml", vars)
}

// Load reads the manifest at path. The format follows the extension.
func Load(path string, vars Vars) (*Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data, format, path, vars)
}

// Parse decodes data, validates it and expands variables in specs.
// filename only labels errors.
func Parse(data []byte, format Format, filename string, vars Vars) (*Manifest, error) {
	var (
		m   *Manifest
		err error
	)
	switch format {
	case FormatTOML:
		m, err = parseTOML(data, filename)
	case FormatCUE:
		m, err = parseCUE(data, filename)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if m.TestSection == "" {
		m.TestSection = DefaultTestSection
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := m.expand(vars); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

func parseTOML(data []byte, filename string) (*Manifest, error) {
	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return &m, nil
}

func parseCUE(data []byte, filename string) (*Manifest, error) {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile manifest schema: %w", schemaValue.Err())
	}
	root := schemaValue.LookupPath(cue.ParsePath("#Manifest"))
	if root.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition #Manifest not found: %w", root.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, formatCUEError(userValue.Err(), filename)
	}

	unified := root.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, filename)
	}

	var m Manifest
	if err := unified.Decode(&m); err != nil {
		return nil, formatCUEError(err, filename)
	}
	return &m, nil
}

func formatCUEError(err error, filename string) error {
	details := strings.TrimSpace(cueerrors.Details(err, nil))
	return fmt.Errorf("invalid manifest %s:\n%s", filename, details)
}

// Validate checks that sections are named, unique and non-empty.
func (m *Manifest) Validate() error {
	if len(m.Sections) == 0 {
		return fmt.Errorf("manifest has no sections")
	}
	seen := make(map[string]bool, len(m.Sections))
	for i, sec := range m.Sections {
		if sec.Name == "" {
			return fmt.Errorf("section %d has no name", i+1)
		}
		if seen[sec.Name] {
			return fmt.Errorf("section %q is declared twice", sec.Name)
		}
		seen[sec.Name] = true
		for j, text := range sec.Specs {
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("section %q: spec %d is empty", sec.Name, j+1)
			}
		}
	}
	return nil
}

func (m *Manifest) expand(vars Vars) error {
	undefined := make(map[string]bool)
	mapping := func(name string) string {
		value, ok := vars.lookup(name)
		if !ok {
			undefined[name] = true
		}
		return value
	}

	for i := range m.Sections {
		for j, text := range m.Sections[i].Specs {
			m.Sections[i].Specs[j] = os.Expand(text, mapping)
		}
	}

	if len(undefined) > 0 {
		names := make([]string, 0, len(undefined))
		for name := range undefined {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("undefined variables in specs: %s", strings.Join(names, ", "))
	}
	return nil
}

// ResolveSections converts the manifest into the resolver's input.
func (m *Manifest) ResolveSections() []resolve.Section {
	out := make([]resolve.Section, len(m.Sections))
	for i, sec := range m.Sections {
		out[i] = resolve.Section{Name: sec.Name, Specs: append([]string(nil), sec.Specs...)}
	}
	return out
}

// SpecCount returns the number of specs across all sections.
func (m *Manifest) SpecCount() int {
	n := 0
	for _, sec := range m.Sections {
		n += len(sec.Specs)
	}
	return n
}
