package signals

import (
	"path"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/cif/pkg/change"
)

// FileClasses summarizes what kinds of files a change touches.
type FileClasses struct {
	Tests    int
	Sources  int
	Vendored int
	// DocsOnly is true when every file is documentation.
	DocsOnly bool
	// Languages lists detected languages, sorted and deduplicated.
	Languages []string
}

// Languages that describe data or prose rather than code.
var nonCodeLanguages = map[string]bool{
	"Markdown":         true,
	"reStructuredText": true,
	"AsciiDoc":         true,
	"Text":             true,
	"JSON":             true,
	"YAML":             true,
	"TOML":             true,
	"XML":              true,
	"INI":              true,
	"CSV":              true,
}

var docLanguages = map[string]bool{
	"Markdown":         true,
	"reStructuredText": true,
	"AsciiDoc":         true,
	"Text":             true,
}

var testDirs = map[string]bool{
	"test":      true,
	"tests":     true,
	"__tests__": true,
	"spec":      true,
	"testdata":  true,
}

var testSuffixes = []string{"_test", ".test", ".spec", "_spec", "Test", "Tests"}

// ClassifyFiles classifies each touched path as vendored, test, source, or
// documentation. Vendored files count only as vendored.
func ClassifyFiles(in change.Input) FileClasses {
	var fc FileClasses

	langs := make(map[string]struct{})
	docs := 0

	for _, f := range in.Files {
		p := strings.TrimPrefix(f.Path, "/")

		if enry.IsVendor(p) {
			fc.Vendored++

			continue
		}

		lang := enry.GetLanguage(path.Base(p), nil)
		if lang != "" {
			langs[lang] = struct{}{}
		}

		if enry.IsDocumentation(p) || docLanguages[lang] {
			docs++

			continue
		}

		switch {
		case IsTestPath(p):
			fc.Tests++
		case lang != "" && !nonCodeLanguages[lang]:
			fc.Sources++
		}
	}

	fc.DocsOnly = len(in.Files) > 0 && docs == len(in.Files)

	fc.Languages = make([]string, 0, len(langs))
	for l := range langs {
		fc.Languages = append(fc.Languages, l)
	}

	slices.Sort(fc.Languages)

	return fc
}

// IsTestPath reports whether p looks like a test file by its directory or
// name, e.g. foo_test.go, login.spec.ts, test_api.py, tests/helpers.rb.
func IsTestPath(p string) bool {
	dir, file := path.Split(p)

	for seg := range strings.SplitSeq(strings.Trim(dir, "/"), "/") {
		if testDirs[strings.ToLower(seg)] {
			return true
		}
	}

	stem := strings.TrimSuffix(file, path.Ext(file))
	if strings.HasPrefix(stem, "test_") {
		return true
	}

	for _, suffix := range testSuffixes {
		if strings.HasSuffix(stem, suffix) && len(stem) > len(suffix) {
			return true
		}
	}

	return false
}

// DependencyManifests returns the touched paths whose base name is a
// configured dependency manifest, in file order without duplicates.
func DependencyManifests(in change.Input, cfg Config) []string {
	if len(cfg.DependencyManifests) == 0 {
		return nil
	}

	manifests := make(map[string]struct{}, len(cfg.DependencyManifests))
	for _, m := range cfg.DependencyManifests {
		manifests[m] = struct{}{}
	}

	var touched []string

	seen := make(map[string]struct{})

	for _, f := range in.Files {
		if _, ok := manifests[path.Base(f.Path)]; !ok {
			continue
		}

		if _, dup := seen[f.Path]; dup {
			continue
		}

		seen[f.Path] = struct{}{}
		touched = append(touched, f.Path)
	}

	return touched
}
