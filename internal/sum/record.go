package sum

import (
	"errors"
	"fmt"
	"path/filepath"

	"martianoff/freezemod/freezeerr"
	"martianoff/freezemod/internal/registry"
)

// Record summarizes one exposed module for external tooling.
type Record struct {
	Module   string `json:"module"`
	IsPkg    bool   `json:"ispkg"`
	Source   string `json:"source"` // "<orig>" for library modules, else a root-relative posix path
	Frozen   string `json:"frozen"` // Artifact basename
	Checksum string `json:"checksum"`
}

// Summarize builds the record of mod. The frozen artifact must exist.
func Summarize(mod registry.Module, root string) (Record, error) {
	checksum, err := HashFile(mod.Source.FrozenFile)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", mod.Name, err)
	}
	return newRecord(mod, root, checksum)
}

// Summaries summarizes mods in order. Each artifact is hashed once.
func Summaries(mods []registry.Module, root string) ([]Record, error) {
	hashes := make(map[*registry.Source]string)
	records := make([]Record, 0, len(mods))
	for _, mod := range mods {
		checksum, ok := hashes[mod.Source]
		if !ok {
			var err error
			if checksum, err = HashFile(mod.Source.FrozenFile); err != nil {
				return nil, fmt.Errorf("%s: %w", mod.Name, err)
			}
			hashes[mod.Source] = checksum
		}
		rec, err := newRecord(mod, root, checksum)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func newRecord(mod registry.Module, root, checksum string) (Record, error) {
	src := mod.Source
	display := "<" + src.OrigName + ">"
	if src.OrigName == "" {
		rel, err := filepath.Rel(root, src.Path)
		if err != nil {
			return Record{}, fmt.Errorf("failed to locate %s: %w", src.Path, err)
		}
		display = filepath.ToSlash(rel)
	}
	return Record{
		Module:   mod.Name,
		IsPkg:    mod.IsPackage,
		Source:   display,
		Frozen:   filepath.Base(src.FrozenFile),
		Checksum: checksum,
	}, nil
}

// Verify checks every module's artifact against f. All problems are
// collected; the result is nil or a *freezeerr.MultiError.
func Verify(f *File, mods []registry.Module) error {
	var errs []error
	hashes := make(map[*registry.Source]string)

	for _, mod := range mods {
		entry := f.Get(mod.Name)
		if entry == nil {
			errs = append(errs, &MissingEntryError{Module: mod.Name})
			continue
		}

		actual, ok := hashes[mod.Source]
		if !ok {
			var err error
			actual, err = HashFile(mod.Source.FrozenFile)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", mod.Name, err))
				continue
			}
			hashes[mod.Source] = actual
		}

		if actual != entry.Hash {
			errs = append(errs, &HashMismatchError{
				Module:   mod.Name,
				Path:     mod.Source.FrozenFile,
				Expected: entry.Hash,
				Actual:   actual,
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &freezeerr.MultiError{Errors: errs}
}

// IsStale reports whether err from Verify only describes stale or
// unrecorded artifacts, as opposed to unreadable ones.
func IsStale(err error) bool {
	var multi *freezeerr.MultiError
	if !errors.As(err, &multi) {
		return false
	}
	for _, e := range multi.Errors {
		var mismatch *HashMismatchError
		var missing *MissingEntryError
		if !errors.As(e, &mismatch) && !errors.As(e, &missing) {
			return false
		}
	}
	return true
}
