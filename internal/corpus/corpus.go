// Package corpus enumerates and reads the source text files of a batch run.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrMissingDir reports that the corpus directory does not exist.
var ErrMissingDir = errors.New("corpus directory does not exist")

// List returns the files in dir whose extension matches ext (case-insensitive).
// The listing is non-recursive and sorted by name. An empty result is not an
// error; callers decide how to report it.
func List(dir, ext string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingDir, dir)
		}
		return nil, fmt.Errorf("failed to stat corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// ReadFile reads one source file and returns its text with surrounding
// whitespace trimmed. Files that are not valid UTF-8 are decoded through a
// single-byte fallback, matching how existing corpora were produced.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(data)
	if !utf8.Valid(data) {
		text, err = decodeFallback(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}
	return strings.TrimSpace(text), nil
}

func decodeFallback(data []byte) (string, error) {
	fallbacks := []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1}
	var lastErr error
	for _, cm := range fallbacks {
		decoded, err := cm.NewDecoder().Bytes(data)
		if err != nil {
			lastErr = err
			continue
		}
		return string(decoded), nil
	}
	return "", lastErr
}
