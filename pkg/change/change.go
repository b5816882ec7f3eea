// Package change defines the change model consumed by the assessment engine:
// a proposed software change described by the files it touches, its test
// coverage delta, and open metadata.
package change

import "math"

// JSON field names of the input document.
const (
	FieldIdentifier    = "identifier"
	FieldFiles         = "files"
	FieldPath          = "path"
	FieldLinesAdded    = "lines_added"
	FieldLinesRemoved  = "lines_removed"
	FieldArea          = "area"
	FieldCoverageDelta = "coverage_delta"
	FieldMetadata      = "metadata"
)

// FileChange is one file touched by a change.
type FileChange struct {
	Path         string `json:"path"           yaml:"path"`
	LinesAdded   int    `json:"lines_added"    yaml:"lines_added"`
	LinesRemoved int    `json:"lines_removed"  yaml:"lines_removed"`
	Area         string `json:"area,omitempty" yaml:"area,omitempty"`
}

// Lines returns the number of changed lines in the file.
func (f FileChange) Lines() int {
	return f.LinesAdded + f.LinesRemoved
}

// Input is a validated description of a proposed change.
// The engine reads it and never mutates it.
type Input struct {
	Identifier string       `json:"identifier"               yaml:"identifier"`
	Files      []FileChange `json:"files"                    yaml:"files"`
	// CoverageDelta is the change in test coverage in percentage points.
	// Nil means the delta is unknown.
	CoverageDelta *float64 `json:"coverage_delta,omitempty" yaml:"coverage_delta,omitempty"`
	Metadata      Metadata `json:"metadata,omitempty"       yaml:"metadata,omitempty"`
}

// TotalLines returns the sum of added and removed lines over all files.
// The sum saturates at math.MaxInt.
func (in Input) TotalLines() int {
	total := 0

	for _, f := range in.Files {
		n := f.Lines()
		if n > math.MaxInt-total {
			return math.MaxInt
		}

		total += n
	}

	return total
}

// DistinctPaths returns the number of distinct file paths in the change.
func (in Input) DistinctPaths() int {
	seen := make(map[string]struct{}, len(in.Files))

	for _, f := range in.Files {
		seen[f.Path] = struct{}{}
	}

	return len(seen)
}

// HasCoverage reports whether the coverage delta is known.
func (in Input) HasCoverage() bool {
	return in.CoverageDelta != nil
}

// Metadata is an open mapping of extension fields. Values are primitives:
// string, float64, bool, or nil.
type Metadata map[string]any

// String returns the string value for key, or def when the key is absent
// or holds another type.
func (m Metadata) String(key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}

	return def
}

// Bool returns the bool value for key, or def when the key is absent
// or holds another type.
func (m Metadata) Bool(key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}

	return def
}

// Number returns the numeric value for key, or def when the key is absent
// or holds another type.
func (m Metadata) Number(key string, def float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}
