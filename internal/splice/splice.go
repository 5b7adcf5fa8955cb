// Package splice replaces marker-delimited regions of a text file.
package splice

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"martianoff/freezemod/freezeerr"
)

// Region is a block of lines strictly between the first line containing
// Start and the first following line containing End.
type Region struct {
	Start string
	End   string
	Lines []string
}

// Lines applies regions to lines in order and returns the new content.
// Lines carry their trailing newline, as produced by SplitLines. The input
// slice is never modified. file only labels errors.
func Lines(lines []string, regions []Region, file string) ([]string, error) {
	out := lines
	for _, r := range regions {
		var err error
		if out, err = replace(out, r, file); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func replace(lines []string, r Region, file string) ([]string, error) {
	start := indexOf(lines, r.Start, 0)
	if start < 0 {
		return nil, freezeerr.NewMarkerNotFoundError(r.Start, file)
	}
	end := indexOf(lines, r.End, start)
	if end < 0 {
		if indexOf(lines, r.End, 0) >= 0 {
			return nil, freezeerr.NewMarkerOrderError(r.Start, r.End, file)
		}
		return nil, freezeerr.NewMarkerNotFoundError(r.End, file)
	}
	if end == start {
		return nil, freezeerr.NewMarkerOrderError(r.Start, r.End, file)
	}

	out := make([]string, 0, len(lines)-(end-start-1)+len(r.Lines))
	out = append(out, lines[:start+1]...)
	for _, line := range r.Lines {
		out = append(out, strings.TrimRight(line, " \t\r\n")+"\n")
	}
	return append(out, lines[end:]...), nil
}

func indexOf(lines []string, marker string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.Contains(lines[i], marker) {
			return i
		}
	}
	return -1
}

// SplitLines splits data after each newline. A final line without a
// newline is kept as is.
func SplitLines(data []byte) []string {
	var lines []string
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, string(data))
			break
		}
		lines = append(lines, string(data[:i+1]))
		data = data[i+1:]
	}
	return lines
}

// File applies regions to the file at path. Every region is located and
// replaced in memory first; the file is then swapped in place through a
// temporary file in the same directory. A failure leaves path untouched.
// changed reports whether the content differed and was written.
func File(path string, regions []Region) (changed bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines, err := Lines(SplitLines(data), regions, path)
	if err != nil {
		return false, err
	}

	updated := []byte(strings.Join(lines, ""))
	if bytes.Equal(updated, data) {
		return false, nil
	}
	if err := writeAtomic(path, updated, info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

func writeAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
