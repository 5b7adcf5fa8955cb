package sum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashFile computes the hex SHA-256 of a file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashMismatchError is returned when an artifact no longer matches its
// recorded checksum.
type HashMismatchError struct {
	Module   string
	Path     string
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash mismatch for %s (%s): expected %s, got %s", e.Module, e.Path, e.Expected, e.Actual)
}

// MissingEntryError is returned when a resolved module has no checksum
// recorded.
type MissingEntryError struct {
	Module string
}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("no checksum recorded for %s", e.Module)
}

// isHash reports whether s is a hex-encoded SHA-256.
func isHash(s string) bool {
	if len(s) != hex.EncodedLen(sha256.Size) {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
