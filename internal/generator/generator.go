// Package generator renders the module stream into the line groups that
// are spliced into frozen.c.
package generator

import (
	"fmt"
	"path/filepath"

	"martianoff/freezemod/internal/registry"
	"martianoff/freezemod/internal/splice"
)

const indent = "    "

// Markers delimiting the regenerated regions of frozen.c, in the order
// they are located.
const (
	IncludesStart  = "/* Includes for frozen modules: */"
	IncludesEnd    = "/* End includes */"
	ExternsStart   = "/* Start extern declarations */"
	ExternsEnd     = "/* End extern declarations */"
	BootstrapStart = "static const struct _frozen bootstrap_modules[] ="
	BootstrapEnd   = "/* bootstrap sentinel */"
	StdlibStart    = "static const struct _frozen stdlib_modules[] ="
	StdlibEnd      = "/* stdlib sentinel */"
	TestStart      = "static const struct _frozen test_modules[] ="
	TestEnd        = "/* test sentinel */"
	AliasesStart   = "const struct _module_alias aliases[] ="
	AliasesEnd     = "/* aliases sentinel */"
)

// Options controls table formatting.
type Options struct {
	// FrozenModules embeds the frozen byte arrays in each table row and
	// emits includes for their headers. Otherwise rows only reference the
	// accessor and the include list stays empty.
	FrozenModules bool

	// TargetDir is the directory of the target file; include paths are
	// relative to it.
	TargetDir string

	// TestSection is the section label whose modules go to the test table.
	TestSection string
}

// Blocks holds the generated lines for each region.
type Blocks struct {
	Includes  []string
	Externs   []string
	Bootstrap []string
	Stdlib    []string
	Tests     []string
	Aliases   []string
}

// Generate renders mods in order. Sources are included once, in the order
// they were first seen; every other group has one line per module.
func Generate(mods []registry.Module, opts Options) (*Blocks, error) {
	b := &Blocks{}

	if opts.FrozenModules {
		for _, src := range uniqueSources(mods) {
			header, err := relPosix(opts.TargetDir, src.FrozenFile)
			if err != nil {
				return nil, fmt.Errorf("failed to locate %s: %w", src.FrozenFile, err)
			}
			b.Includes = append(b.Includes, fmt.Sprintf(`#include "%s"`, header))
		}
	}

	lastSection := ""
	seenSection := false
	for _, mod := range mods {
		var lines *[]string
		switch {
		case mod.Source.IsBootstrap:
			lines = &b.Bootstrap
		case mod.Section == opts.TestSection:
			lines = &b.Tests
		default:
			lines = &b.Stdlib
			if !seenSection || mod.Section != lastSection {
				if seenSection {
					*lines = append(*lines, "")
				}
				*lines = append(*lines, fmt.Sprintf("/* %s */", mod.Section))
			}
			lastSection = mod.Section
			seenSection = true
		}

		b.Externs = append(b.Externs, externLine(mod.Source))
		*lines = append(*lines, tableRow(mod, opts.FrozenModules))

		if mod.IsAlias {
			b.Aliases = append(b.Aliases, indent+aliasRow(mod))
		}
	}

	for _, lines := range []*[]string{&b.Bootstrap, &b.Stdlib, &b.Tests} {
		*lines = indentTable(*lines)
	}
	return b, nil
}

// Regions pairs each group with its markers in splice order.
func (b *Blocks) Regions() []splice.Region {
	return []splice.Region{
		{Start: IncludesStart, End: IncludesEnd, Lines: b.Includes},
		{Start: ExternsStart, End: ExternsEnd, Lines: b.Externs},
		{Start: BootstrapStart, End: BootstrapEnd, Lines: b.Bootstrap},
		{Start: StdlibStart, End: StdlibEnd, Lines: b.Stdlib},
		{Start: TestStart, End: TestEnd, Lines: b.Tests},
		{Start: AliasesStart, End: AliasesEnd, Lines: b.Aliases},
	}
}

// AccessorName is the deepfreeze-generated function returning the code
// object of src.
func AccessorName(src *registry.Source) string {
	return "_Py_get_" + src.CodeName() + "_toplevel"
}

func externLine(src *registry.Source) string {
	return fmt.Sprintf("extern PyObject *%s(void);", AccessorName(src))
}

func tableRow(mod registry.Module, frozenModules bool) string {
	pkg := "false"
	if mod.IsPackage {
		pkg = "true"
	}
	code := mod.Source.CodeName()
	if !frozenModules {
		return fmt.Sprintf(`{"%s", NULL, 0, %s, GET_CODE(%s)},`, mod.Name, pkg, code)
	}
	sym := mod.Source.Symbol
	return fmt.Sprintf(`{"%s", %s, (int)sizeof(%s), %s, GET_CODE(%s)},`, mod.Name, sym, sym, pkg, code)
}

func aliasRow(mod registry.Module) string {
	orig := mod.Source.OrigName
	switch {
	case orig == "":
		return fmt.Sprintf(`{"%s", NULL},`, mod.Name)
	case mod.Source.IsPackage:
		return fmt.Sprintf(`{"%s", "<%s"},`, mod.Name, orig)
	default:
		return fmt.Sprintf(`{"%s", "%s"},`, mod.Name, orig)
	}
}

// indentTable drops a leading blank line and indents the rest.
func indentTable(lines []string) []string {
	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if line != "" {
			line = indent + line
		}
		out[i] = line
	}
	return out
}

func uniqueSources(mods []registry.Module) []*registry.Source {
	seen := make(map[*registry.Source]bool)
	var out []*registry.Source
	for _, mod := range mods {
		if !seen[mod.Source] {
			seen[mod.Source] = true
			out = append(out, mod.Source)
		}
	}
	return out
}

func relPosix(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
