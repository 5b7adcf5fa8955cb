// Package resolve expands sectioned spec lists into the ordered stream of
// exposed modules.
package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"martianoff/freezemod/freezeerr"
	"martianoff/freezemod/internal/module"
	"martianoff/freezemod/internal/registry"
	"martianoff/freezemod/internal/spec"
)

// Section is a labelled group of spec strings.
type Section struct {
	Name  string
	Specs []string
}

// Stream builds the module stream. Sections are walked top to bottom and
// specs left to right; the order of the result follows that walk exactly.
type Stream struct {
	paths   *module.Resolver
	reg     *registry.Registry
	modules []registry.Module
}

// NewStream creates a stream that registers sources in reg.
func NewStream(paths *module.Resolver, reg *registry.Registry) *Stream {
	return &Stream{paths: paths, reg: reg}
}

// Modules resolves all sections with a fresh stream.
func Modules(paths *module.Resolver, reg *registry.Registry, sections []Section) ([]registry.Module, error) {
	s := NewStream(paths, reg)
	for _, sec := range sections {
		if err := s.AddSection(sec); err != nil {
			return nil, err
		}
	}
	return s.Modules(), nil
}

// Modules returns the modules resolved so far.
func (s *Stream) Modules() []registry.Module {
	out := make([]registry.Module, len(s.modules))
	copy(out, s.modules)
	return out
}

// AddSection resolves every spec of sec in order.
func (s *Stream) AddSection(sec Section) error {
	for _, text := range sec.Specs {
		if err := s.Add(text, sec.Name); err != nil {
			return fmt.Errorf("section %q: %w", sec.Name, err)
		}
	}
	return nil
}

// item is one module produced by a spec before it is registered.
type item struct {
	id    string
	path  string
	name  string
	isPkg bool
}

// Add resolves a single spec and appends its modules.
func (s *Stream) Add(text, section string) error {
	sp, err := spec.Parse(text)
	if err != nil {
		return err
	}

	items, err := s.expand(sp)
	if err != nil {
		return err
	}

	for _, it := range items {
		src, err := s.reg.GetOrCreate(it.id, it.path, text)
		if err != nil {
			return err
		}
		s.modules = append(s.modules, registry.NewModule(it.name, it.isPkg, section, src))
	}
	return nil
}

func (s *Stream) expand(sp spec.Spec) ([]item, error) {
	// Bracketed ids never count as known: they always resolve afresh and
	// rely on the registry to agree with any earlier path.
	known := !sp.IDIsPackage && s.reg.Has(sp.ID)

	switch {
	case sp.NameIsPackage:
		it := item{id: sp.ID, name: sp.Name, isPkg: true}
		if known {
			return []item{it}, nil
		}
		if sp.Path != "" {
			path, err := s.explicitPath(sp)
			if err != nil {
				return nil, err
			}
			it.path = path
			return []item{it}, nil
		}
		it.path = s.paths.ModulePath(sp.ID, false)
		if err := s.paths.Check(sp.ID, it.path); err != nil {
			return nil, err
		}
		return []item{it}, nil

	case sp.Path != "":
		if known {
			return nil, freezeerr.NewRedeclaredError(sp.ID, sp.Text)
		}
		path, err := s.explicitPath(sp)
		if err != nil {
			return nil, err
		}
		return []item{{id: sp.ID, path: path, name: nameOr(sp.Name, sp.ID)}}, nil

	case known:
		if sp.Name == "" {
			return nil, freezeerr.NewSpecSyntaxError(sp.Text, 0, "an alias of "+sp.ID+" needs a module name")
		}
		return []item{{id: sp.ID, name: sp.Name}}, nil

	default:
		return s.resolveModules(sp)
	}
}

// resolveModules infers the source of a first-seen id and, for package
// patterns, appends its submodules renamed under the exposed name.
func (s *Stream) resolveModules(sp spec.Spec) ([]item, error) {
	path := s.paths.ModulePath(sp.ID, sp.IDIsPackage)
	if err := s.paths.Check(sp.ID, path); err != nil {
		return nil, err
	}
	name := nameOr(sp.Name, sp.ID)
	items := []item{{id: sp.ID, path: path, name: name, isPkg: sp.IDIsPackage}}

	if !sp.IDIsPackage || sp.Match == spec.NoMatch {
		return items, nil
	}

	subs, err := s.paths.Submodules(sp.ID, filepath.Dir(path), sp.Match)
	if err != nil {
		return nil, err
	}

	// Submodules sharing a file with a package (its init leaf) reuse the
	// package's id instead of creating a second source.
	pkgFiles := map[string]string{path: sp.ID}
	for _, e := range subs {
		it := item{
			id:    e.ID,
			path:  e.Path,
			name:  strings.Replace(e.ID, sp.ID, name, 1),
			isPkg: e.IsPackage,
		}
		if owner, ok := pkgFiles[e.Path]; ok {
			it.id = owner
			it.path = ""
		} else if e.IsPackage {
			pkgFiles[e.Path] = e.ID
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *Stream) explicitPath(sp spec.Spec) (string, error) {
	path := s.paths.SourcePath(sp.Path)
	if s.paths.IsDir(path) {
		return "", freezeerr.NewSpecSyntaxError(sp.Text, 0, "source path "+sp.Path+" is a directory")
	}
	return path, nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
