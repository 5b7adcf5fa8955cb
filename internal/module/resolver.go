// Package module maps frozen ids to source files and enumerates the
// submodules of package specs.
package module

import (
	"os"
	"path/filepath"
	"strings"

	"martianoff/freezemod/freezeerr"
	"martianoff/freezemod/internal/config"
)

// Resolver handles source path inference relative to a root directory.
//
// Example usage:
//
//	resolver := NewResolver("/src/cpython", config.DefaultLayout(), false)
//	path := resolver.ModulePath("importlib.util", false)
//	// /src/cpython/Lib/importlib/util.py
type Resolver struct {
	root   string        // Absolute root directory
	libDir string        // Absolute library root (root + layout.LibDir)
	layout config.Layout // Naming conventions
	strict bool          // Fail on inferred paths that don't exist
}

// NewResolver creates a Resolver for root. Relative roots are made absolute
// against the working directory.
func NewResolver(root string, layout config.Layout, strict bool) *Resolver {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	root = filepath.Clean(root)
	return &Resolver{
		root:   root,
		libDir: filepath.Join(root, layout.LibDir),
		layout: layout,
		strict: strict,
	}
}

// Root returns the absolute root directory.
func (r *Resolver) Root() string {
	return r.root
}

// LibDir returns the absolute library root.
func (r *Resolver) LibDir() string {
	return r.libDir
}

// Layout returns the naming conventions in use.
func (r *Resolver) Layout() config.Layout {
	return r.layout
}

// ModulePath infers the source file of a frozen id under the library root.
//
// Examples (default layout):
//   - ("os.path", false)  -> {lib}/os/path.py
//   - ("encodings", true) -> {lib}/encodings/__init__.py
func (r *Resolver) ModulePath(id string, isPkg bool) string {
	parts := append([]string{r.libDir}, strings.Split(id, ".")...)
	if isPkg {
		return filepath.Join(append(parts, r.layout.PackageInit)...)
	}
	return filepath.Join(parts...) + r.layout.ModuleSuffix
}

// SourcePath makes an explicit spec path absolute. Relative paths are
// taken relative to the root directory.
func (r *Resolver) SourcePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.root, path)
}

// IsPackageFile classifies an already resolved source. An id ending in
// ".__init__" is never a package even though its file is an init file.
func (r *Resolver) IsPackageFile(id, path string) bool {
	if path == "" {
		return false
	}
	if strings.HasSuffix(id, "."+strings.TrimSuffix(r.layout.PackageInit, r.layout.ModuleSuffix)) {
		return false
	}
	return filepath.Base(path) == r.layout.PackageInit
}

// IsLibraryPath reports whether path lies under the library root.
func (r *Resolver) IsLibraryPath(path string) bool {
	if path == "" {
		return false
	}
	rel, err := filepath.Rel(r.libDir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// IsDir reports whether path exists and is a directory.
func (r *Resolver) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Check enforces existence of a source file when the resolver is strict.
// Non-strict resolvers accept any path.
func (r *Resolver) Check(id, path string) error {
	if !r.strict {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return freezeerr.NewResolutionError(id, path, "source file does not exist")
	}
	if info.IsDir() {
		return freezeerr.NewResolutionError(id, path, "source path is a directory")
	}
	return nil
}
