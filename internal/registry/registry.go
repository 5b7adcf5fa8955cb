// Package registry deduplicates frozen sources by id and describes the
// modules exposed from them.
//
// Every spec that reduces to the same frozen id shares a single Source; the
// first occurrence decides its path. Modules reference sources, so aliases
// of one source produce several modules but only one set of artifacts.
package registry

import (
	"path/filepath"
	"strings"

	"martianoff/freezemod/freezeerr"
	"martianoff/freezemod/internal/module"
)

// Source is the canonical, deduplicated record of one frozen source module.
// All fields are computed once by the registry and never change.
type Source struct {
	ID             string // Frozen id: "importlib._bootstrap"
	Path           string // Source file
	FrozenFile     string // Primary artifact: {root}/Python/frozen_modules/{id}.h
	DeepfreezeFile string // Secondary artifact: {root}/Python/deepfreeze/{id}.h
	Symbol         string // Byte array symbol: "_Py_M__importlib__bootstrap"
	OrigName       string // Original module name, empty outside the library root
	IsPackage      bool
	IsBootstrap    bool
}

// CodeName is the id in C identifier form, used to name the per-module
// accessor.
func (s *Source) CodeName() string {
	return strings.ReplaceAll(s.ID, ".", "_")
}

// Module is one exposed module. Several modules may share a Source.
type Module struct {
	Name      string // Name the module is imported as
	IsPackage bool
	Section   string
	Source    *Source
	IsAlias   bool // Name differs from the source's original name
}

// NewModule creates a Module and derives its alias flag.
func NewModule(name string, isPkg bool, section string, src *Source) Module {
	return Module{
		Name:      name,
		IsPackage: isPkg,
		Section:   section,
		Source:    src,
		IsAlias:   src.OrigName == "" || name != src.OrigName,
	}
}

// Registry owns the sources of one run.
type Registry struct {
	resolver  *module.Resolver
	bootstrap map[string]bool

	// sources maps frozen id to its canonical source
	sources map[string]*Source

	// order lists sources in first-seen order
	order []*Source
}

// NewRegistry creates an empty registry. Sources whose id is listed in
// bootstrap are flagged as bootstrap modules.
func NewRegistry(resolver *module.Resolver, bootstrap []string) *Registry {
	set := make(map[string]bool, len(bootstrap))
	for _, id := range bootstrap {
		set[id] = true
	}
	return &Registry{
		resolver:  resolver,
		bootstrap: set,
		sources:   make(map[string]*Source),
	}
}

// Has reports whether id has a source.
func (r *Registry) Has(id string) bool {
	_, ok := r.sources[id]
	return ok
}

// Get returns the source for id, or nil if it is unknown.
func (r *Registry) Get(id string) *Source {
	return r.sources[id]
}

// Len returns the number of unique sources.
func (r *Registry) Len() int {
	return len(r.order)
}

// Sources returns all sources in first-seen order.
func (r *Registry) Sources() []*Source {
	out := make([]*Source, len(r.order))
	copy(out, r.order)
	return out
}

// GetOrCreate returns the source for id, creating it on first use.
//
// A new source with no path gets the non-package library path inferred from
// its id. For a known id, path must be empty or equal to the stored path;
// anything else is a ConflictError naming specText.
func (r *Registry) GetOrCreate(id, path, specText string) (*Source, error) {
	if src, ok := r.sources[id]; ok {
		if path != "" && filepath.Clean(path) != src.Path {
			return nil, freezeerr.NewConflictError(id, specText, src.Path, path)
		}
		return src, nil
	}

	if path == "" {
		path = r.resolver.ModulePath(id, false)
	}
	src := r.newSource(id, filepath.Clean(path))
	r.sources[id] = src
	r.order = append(r.order, src)
	return src, nil
}

func (r *Registry) newSource(id, path string) *Source {
	layout := r.resolver.Layout()
	artifact := id + layout.ArtifactSuffix

	src := &Source{
		ID:             id,
		Path:           path,
		FrozenFile:     filepath.Join(r.resolver.Root(), layout.FrozenDir, artifact),
		DeepfreezeFile: filepath.Join(r.resolver.Root(), layout.DeepfreezeDir, artifact),
		IsPackage:      r.resolver.IsPackageFile(id, path),
		IsBootstrap:    r.bootstrap[id],
	}
	src.Symbol = layout.SymbolPrefix + src.CodeName()
	if r.resolver.IsLibraryPath(path) {
		src.OrigName = id
	}
	return src
}
