package sum

import (
	"os"
	"sort"
	"strings"
)

// Format formats a File as a frozen.sum string, sorted by module.
func Format(f *File) string {
	if len(f.Entries) == 0 {
		return ""
	}

	entries := make([]Entry, len(f.Entries))
	copy(entries, f.Entries)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Module < entries[j].Module
	})

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Module)
		sb.WriteString(" ")
		sb.WriteString(e.Frozen)
		sb.WriteString(" ")
		sb.WriteString(e.Hash)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteFile writes a File to a filesystem path.
func WriteFile(f *File, path string) error {
	return os.WriteFile(path, []byte(Format(f)), 0644)
}
