// Package manifest reads YAML input manifests: an ordered list of input
// files with optional per-file repeat counts, as an alternative to naming
// every input on the command line.
//
//	files:
//	  - path: header.bin
//	  - path: payload.bin
//	    repeat: 64
package manifest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for manifest validation.
var (
	// ErrNoFiles is returned when the manifest lists no files.
	ErrNoFiles = errors.New("manifest lists no files")

	// ErrMissingPath is returned when an entry has no path.
	ErrMissingPath = errors.New("manifest entry has no path")

	// ErrNegativeRepeat is returned when an entry's repeat count is negative.
	ErrNegativeRepeat = errors.New("manifest repeat count must not be negative")
)

// Entry is one input file. A zero Repeat means "use the run's default".
type Entry struct {
	Path   string `yaml:"path"`
	Repeat int    `yaml:"repeat,omitempty"`
}

// Manifest is an ordered list of input files. Order is significant: it is
// the concatenation order of the output.
type Manifest struct {
	Files []Entry `yaml:"files"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if len(m.Files) == 0 {
		return nil, ErrNoFiles
	}

	for i, entry := range m.Files {
		if entry.Path == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrMissingPath, i)
		}

		if entry.Repeat < 0 {
			return nil, fmt.Errorf("%w: entry %d (%s) got %d", ErrNegativeRepeat, i, entry.Path, entry.Repeat)
		}
	}

	return &m, nil
}

// Paths returns the file paths in manifest order.
func (m *Manifest) Paths() []string {
	paths := make([]string, len(m.Files))
	for i, entry := range m.Files {
		paths[i] = entry.Path
	}

	return paths
}

// RepeatCounts returns one repeat count per file, substituting
// defaultRepeat for entries that declare none.
func (m *Manifest) RepeatCounts(defaultRepeat int) []int {
	counts := make([]int, len(m.Files))

	for i, entry := range m.Files {
		if entry.Repeat > 0 {
			counts[i] = entry.Repeat
		} else {
			counts[i] = defaultRepeat
		}
	}

	return counts
}
