// Package freezer ties manifest loading, module resolution, table
// generation and splicing into one run.
package freezer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"martianoff/freezemod/internal/config"
	"martianoff/freezemod/internal/generator"
	"martianoff/freezemod/internal/manifest"
	"martianoff/freezemod/internal/module"
	"martianoff/freezemod/internal/registry"
	"martianoff/freezemod/internal/resolve"
	"martianoff/freezemod/internal/splice"
)

// ErrNoTarget is returned by Regen when no target file is configured.
var ErrNoTarget = errors.New("no target file given (set --frozen-c)")

// Freezer orchestrates one run over a source tree.
type Freezer struct {
	config   *config.Config
	logger   *log.Logger
	root     string
	manifest *manifest.Manifest
	paths    *module.Resolver
}

// Result describes a resolved module set.
type Result struct {
	Modules  []registry.Module
	Registry *registry.Registry
}

// RegenResult is the outcome of regenerating a target file.
type RegenResult struct {
	Result
	Target  string
	Blocks  *generator.Blocks
	Changed bool
}

// New resolves the root directory and loads the manifest.
func New(cfg *config.Config, logger *log.Logger) (*Freezer, error) {
	root, err := rootDir(cfg.RootDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using root", "dir", root)

	vars := manifest.DefaultVars(root)
	var m *manifest.Manifest
	if cfg.Manifest == "" {
		m, err = manifest.Default(vars)
	} else {
		m, err = manifest.Load(cfg.Manifest, vars)
	}
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	logger.Debug("Loaded manifest", "sections", len(m.Sections), "specs", m.SpecCount())

	return &Freezer{
		config:   cfg,
		logger:   logger,
		root:     root,
		manifest: m,
		paths:    module.NewResolver(root, cfg.Layout, cfg.Strict),
	}, nil
}

// Root returns the absolute root directory.
func (f *Freezer) Root() string {
	return f.root
}

// Manifest returns the loaded manifest.
func (f *Freezer) Manifest() *manifest.Manifest {
	return f.manifest
}

// Resolve expands every section into the module stream. Each call starts
// from an empty registry.
func (f *Freezer) Resolve() (*Result, error) {
	reg := registry.NewRegistry(f.paths, f.manifest.Bootstrap)
	stream := resolve.NewStream(f.paths, reg)

	for _, sec := range f.manifest.ResolveSections() {
		before := len(stream.Modules())
		if err := stream.AddSection(sec); err != nil {
			return nil, fmt.Errorf("resolving modules: %w", err)
		}
		f.logger.Debug("Resolved section", "section", sec.Name, "modules", len(stream.Modules())-before)
	}

	mods := stream.Modules()
	f.logger.Debug("Resolved", "modules", len(mods), "sources", reg.Len())
	return &Result{Modules: mods, Registry: reg}, nil
}

// Regen resolves modules and rewrites the marker regions of the target
// file. The target is left untouched when any step fails or the content
// would not change.
func (f *Freezer) Regen() (*RegenResult, error) {
	if f.config.FrozenC == "" {
		return nil, ErrNoTarget
	}
	target, err := filepath.Abs(f.config.FrozenC)
	if err != nil {
		return nil, fmt.Errorf("resolving target: %w", err)
	}

	res, err := f.Resolve()
	if err != nil {
		return nil, err
	}

	blocks, err := generator.Generate(res.Modules, generator.Options{
		FrozenModules: f.config.FrozenModules,
		TargetDir:     filepath.Dir(target),
		TestSection:   f.manifest.TestSection,
	})
	if err != nil {
		return nil, fmt.Errorf("generating tables: %w", err)
	}

	f.logger.Info("Updating", "file", target)
	changed, err := splice.File(target, blocks.Regions())
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", target, err)
	}
	if !changed {
		f.logger.Info("Unchanged", "file", target)
	}

	return &RegenResult{Result: *res, Target: target, Blocks: blocks, Changed: changed}, nil
}

// Run regenerates cfg.FrozenC in one call.
func Run(cfg *config.Config, logger *log.Logger) (*RegenResult, error) {
	f, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return f.Regen()
}

func rootDir(configured string) (string, error) {
	if configured != "" {
		root, err := filepath.Abs(configured)
		if err != nil {
			return "", fmt.Errorf("resolving root dir: %w", err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return "", fmt.Errorf("root dir: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("root dir %s is not a directory", root)
		}
		return root, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return module.FindRootDir(wd)
}
