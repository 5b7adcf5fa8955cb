package sum

import (
	"fmt"
	"os"
	"strings"
)

// ParseError represents an error during frozen.sum parsing.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("frozen.sum:%d: %s", e.Line, e.Message)
}

// Parse parses a frozen.sum file from a string.
func Parse(content string) (*File, error) {
	f := NewFile()
	lines := strings.Split(content, "\n")

	for lineNum, line := range lines {
		lineNum++

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Message: err.Error()}
		}
		if f.Contains(entry.Module) {
			return nil, &ParseError{Line: lineNum, Message: fmt.Sprintf("duplicate entry for %s", entry.Module)}
		}

		f.Entries = append(f.Entries, entry)
	}

	return f, nil
}

// ParseFile parses a frozen.sum file from a filesystem path.
func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(string(content))
}

// parseLine parses a single line of the form "module frozen hash":
//
//	os.path posixpath.h 3b5d5c3712955042212316173ccf37be800c7d8e2e8a4b2d6e6f0c4e1c3a9f12
func parseLine(line string) (Entry, error) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return Entry{}, fmt.Errorf("invalid format: expected 'module frozen hash'")
	}

	if !isHash(parts[2]) {
		return Entry{}, fmt.Errorf("invalid hash format: expected hex sha256")
	}

	return Entry{
		Module: parts[0],
		Frozen: parts[1],
		Hash:   parts[2],
	}, nil
}
