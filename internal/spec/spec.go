// Package spec parses frozen-module spec strings.
//
// Supported forms:
//
//	frozenid
//	frozenid : modname
//	frozenid : modname = pyfile
//	frozenid : <modname>
//	<frozenid>
//	<frozenid.*>
//	<frozenid.**.*>
//
// Angle brackets around the name mark the exposed module as a package.
// Angle brackets around the id mark the id itself as a package, optionally
// followed by a pattern selecting its direct children (.*) or its whole
// submodule tree (.**.*).
package spec

import (
	"strings"
	"unicode"

	"martianoff/freezemod/freezeerr"
)

// Match selects which submodules of a package spec are expanded.
type Match int

const (
	// NoMatch expands nothing beyond the package itself.
	NoMatch Match = iota
	// ChildrenMatch expands the direct children of the package.
	ChildrenMatch
	// DescendantsMatch expands the full submodule tree.
	DescendantsMatch
)

func (m Match) String() string {
	switch m {
	case ChildrenMatch:
		return "*"
	case DescendantsMatch:
		return "**.*"
	default:
		return ""
	}
}

// Recursive reports whether sub-packages are expanded too.
func (m Match) Recursive() bool {
	return m == DescendantsMatch
}

// Spec is a parsed spec string. It carries no filesystem knowledge; the
// resolve package turns it into module descriptors.
type Spec struct {
	Text string // Original spec text, kept for error context

	ID          string // Frozen id with any brackets and pattern removed
	IDIsPackage bool   // The id was written as <id...>
	Match       Match  // Pattern attached to a bracketed id

	Name          string // Exposed name, empty when not given
	NameIsPackage bool   // The name was written as <name>

	Path string // Explicit source path, empty when not given
}

// Parse parses a single spec string.
func Parse(text string) (Spec, error) {
	id, name, path := newScanner(text).split()

	s := Spec{Text: text, Path: path.text}

	if isBracketed(name.text) {
		if !ValidModuleName(id.text) {
			return Spec{}, freezeerr.NewSpecSyntaxError(text, id.col, "not a valid module name "+quote(id.text))
		}
		inner := unbracket(name.text)
		if !ValidModuleName(inner) {
			return Spec{}, freezeerr.NewSpecSyntaxError(text, name.col, "not a valid module name "+quote(inner))
		}
		s.ID = id.text
		s.Name = inner
		s.NameIsPackage = true
		return s, nil
	}

	if name.text != "" && !ValidModuleName(name.text) {
		return Spec{}, freezeerr.NewSpecSyntaxError(text, name.col, "not a valid module name "+quote(name.text))
	}
	s.Name = name.text

	if !isBracketed(id.text) {
		if !ValidModuleName(id.text) {
			return Spec{}, freezeerr.NewSpecSyntaxError(text, id.col, "not a valid module name "+quote(id.text))
		}
		s.ID = id.text
		return s, nil
	}

	if s.Path != "" {
		return Spec{}, freezeerr.NewSpecSyntaxError(text, path.col, "a package id can't take an explicit source path")
	}
	pkgID, match, err := splitPattern(unbracket(id.text))
	if err != nil {
		return Spec{}, freezeerr.NewSpecSyntaxError(text, id.col+1, err.Error())
	}
	if !ValidModuleName(pkgID) {
		return Spec{}, freezeerr.NewSpecSyntaxError(text, id.col+1, "not a valid module name "+quote(pkgID))
	}
	s.ID = pkgID
	s.IDIsPackage = true
	s.Match = match
	return s, nil
}

type patternError string

func (e patternError) Error() string { return string(e) }

// splitPattern separates a trailing match pattern from a package id.
// Patterns are only recognised at the end of the name.
func splitPattern(raw string) (string, Match, error) {
	idx := strings.LastIndex(raw, ".")
	if idx < 0 {
		return raw, NoMatch, nil
	}
	base, last := raw[:idx], raw[idx+1:]

	if strings.HasSuffix(base, ".**") {
		if last != "*" {
			return "", NoMatch, patternError("unsupported match pattern " + quote("**."+last))
		}
		return strings.TrimSuffix(base, ".**"), DescendantsMatch, nil
	}
	switch {
	case last == "*":
		return base, ChildrenMatch, nil
	case IsIdentifier(last):
		return raw, NoMatch, nil
	default:
		return "", NoMatch, patternError("unsupported match pattern " + quote(last))
	}
}

// ValidModuleName reports whether every dot-separated part of name is an
// identifier. The empty string is not a valid module name.
func ValidModuleName(name string) bool {
	for _, part := range strings.Split(name, ".") {
		if !IsIdentifier(part) {
			return false
		}
	}
	return true
}

// IsIdentifier reports whether s is a single identifier: a letter or
// underscore followed by letters, digits, underscores or combining marks.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc)) {
			continue
		}
		return false
	}
	return true
}

func isBracketed(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">")
}

func unbracket(s string) string {
	return s[1 : len(s)-1]
}

func quote(s string) string {
	return "(" + s + ")"
}
