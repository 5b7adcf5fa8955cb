package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"martianoff/freezemod/internal/spec"
)

// Entry is one module found while resolving a spec.
type Entry struct {
	ID        string // Frozen id, e.g. "__phello__.spam"
	Path      string // Source file
	IsPackage bool
}

// Submodules lists the submodules of package pkgID whose directory is
// pkgDir, in pre-order with each directory's entries sorted by name.
//
// Leaf files carrying the module suffix (the package init file included)
// yield non-package entries. Subdirectories holding a package init file
// yield package entries and, for recursive matches, their own submodules.
// Namespace directories without an init file are skipped.
func (r *Resolver) Submodules(pkgID, pkgDir string, match spec.Match) ([]Entry, error) {
	if match == spec.NoMatch {
		return nil, nil
	}
	var entries []Entry
	if err := r.walk(pkgID, pkgDir, match.Recursive(), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *Resolver) walk(pkgID, dir string, recursive bool, out *[]Entry) error {
	// ReadDir returns entries sorted by filename, independent of the
	// order the filesystem hands them out in.
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list package %s: %w", pkgID, err)
	}

	for _, de := range dirEntries {
		name := de.Name()
		path := filepath.Join(dir, name)
		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			isDir = r.IsDir(path)
		}

		if !isDir {
			stem, ok := strings.CutSuffix(name, r.layout.ModuleSuffix)
			if !ok || !spec.IsIdentifier(stem) {
				continue
			}
			*out = append(*out, Entry{ID: pkgID + "." + stem, Path: path})
			continue
		}

		if !spec.IsIdentifier(name) {
			continue
		}
		initFile := filepath.Join(path, r.layout.PackageInit)
		if _, err := os.Stat(initFile); err != nil {
			continue
		}
		subID := pkgID + "." + name
		*out = append(*out, Entry{ID: subID, Path: initFile, IsPackage: true})
		if recursive {
			if err := r.walk(subID, path, recursive, out); err != nil {
				return err
			}
		}
	}
	return nil
}
