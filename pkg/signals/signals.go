// Package signals derives named intermediate values from a change.Input.
//
// Every extractor is a pure function of the input and a Config. Signals are
// recomputed on each assessment and never cached.
package signals

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
)

// Bucket is an ordered size class.
type Bucket int

// Buckets in ascending order.
const (
	BucketSmall Bucket = iota
	BucketMedium
	BucketLarge
	BucketHuge
)

var bucketNames = [...]string{"small", "medium", "large", "huge"}

// String returns the lowercase bucket name.
func (b Bucket) String() string {
	if b < BucketSmall || b > BucketHuge {
		return fmt.Sprintf("bucket(%d)", int(b))
	}

	return bucketNames[b]
}

// MarshalText encodes the bucket as its name.
func (b Bucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Thresholds are the inclusive lower bounds of the medium, large, and huge
// buckets.
type Thresholds struct {
	Medium int
	Large  int
	Huge   int
}

// Bucket places n into a bucket.
func (t Thresholds) Bucket(n int) Bucket {
	switch {
	case n >= t.Huge:
		return BucketHuge
	case n >= t.Large:
		return BucketLarge
	case n >= t.Medium:
		return BucketMedium
	default:
		return BucketSmall
	}
}

// Config holds the thresholds and sets the extractors read.
type Config struct {
	DiffSize            Thresholds
	FileCount           Thresholds
	CriticalAreas       []string
	CoverageTolerance   float64
	DependencyManifests []string
}

// DefaultConfig returns the signal configuration of config.Default.
func DefaultConfig() Config {
	return FromConfig(config.Default().Signals)
}

// FromConfig converts the loaded signal settings. Area tags are trimmed
// and lowercased.
func FromConfig(sc config.SignalsConfig) Config {
	areas := make([]string, 0, len(sc.CriticalAreas))
	for _, a := range sc.CriticalAreas {
		if norm := normalizeArea(a); norm != "" {
			areas = append(areas, norm)
		}
	}

	return Config{
		DiffSize:            Thresholds(sc.DiffSize),
		FileCount:           Thresholds(sc.FileCount),
		CriticalAreas:       areas,
		CoverageTolerance:   sc.CoverageTolerance,
		DependencyManifests: append([]string(nil), sc.DependencyManifests...),
	}
}

// Validate applies the checks of config.SignalsConfig.Validate.
func (c Config) Validate() error {
	return config.SignalsConfig{
		DiffSize:          config.BucketThresholds(c.DiffSize),
		FileCount:         config.BucketThresholds(c.FileCount),
		CoverageTolerance: c.CoverageTolerance,
	}.Validate()
}

// Set is the full set of signals for one input.
type Set struct {
	TotalLines     int
	DiffSizeBucket Bucket

	// CriticalAreas lists matched critical areas in first-occurrence order.
	CriticalAreas       []string
	TouchesCriticalArea bool

	CoverageKnown     bool
	CoverageDelta     float64
	CoverageRegressed bool
	// CoverageTolerance is the tolerance the regression check used.
	CoverageTolerance float64

	FileCount       int
	FileCountBucket Bucket

	TestFiles   int
	SourceFiles int
	VendorFiles int
	DocsOnly    bool

	// DependencyManifests lists touched manifest paths in file order.
	DependencyManifests []string
	// Languages lists detected languages, sorted.
	Languages []string
}

// Signal names as exposed by Values.
const (
	NameDiffSizeBucket      = "diff_size_bucket"
	NameTotalLines          = "total_lines"
	NameTouchesCriticalArea = "touches_critical_area"
	NameCriticalAreas       = "critical_areas"
	NameCoverageKnown       = "coverage_known"
	NameCoverageDelta       = "coverage_delta"
	NameCoverageRegressed   = "coverage_regressed"
	NameFileCount           = "file_count"
	NameFileCountBucket     = "file_count_bucket"
	NameTestFiles           = "test_files"
	NameSourceFiles         = "source_files"
	NameDocsOnly            = "docs_only"
	NameVendorFiles         = "vendor_files"
	NameDependencyManifests = "dependency_manifests"
	NameLanguages           = "languages"
)

// Values returns the signals keyed by name. Buckets are strings, counts
// are int64, lists are []string. coverage_delta is nil when unknown.
func (s Set) Values() map[string]any {
	var delta any
	if s.CoverageKnown {
		delta = s.CoverageDelta
	}

	return map[string]any{
		NameDiffSizeBucket:      s.DiffSizeBucket.String(),
		NameTotalLines:          int64(s.TotalLines),
		NameTouchesCriticalArea: s.TouchesCriticalArea,
		NameCriticalAreas:       nonNil(s.CriticalAreas),
		NameCoverageKnown:       s.CoverageKnown,
		NameCoverageDelta:       delta,
		NameCoverageRegressed:   s.CoverageRegressed,
		NameFileCount:           int64(s.FileCount),
		NameFileCountBucket:     s.FileCountBucket.String(),
		NameTestFiles:           int64(s.TestFiles),
		NameSourceFiles:         int64(s.SourceFiles),
		NameDocsOnly:            s.DocsOnly,
		NameVendorFiles:         int64(s.VendorFiles),
		NameDependencyManifests: nonNil(s.DependencyManifests),
		NameLanguages:           nonNil(s.Languages),
	}
}

// Extract runs every extractor over in.
func Extract(in change.Input, cfg Config) Set {
	total, sizeBucket := DiffSize(in, cfg)
	areas := CriticalAreas(in, cfg)
	count, countBucket := FileCount(in, cfg)
	files := ClassifyFiles(in)

	s := Set{
		TotalLines:          total,
		DiffSizeBucket:      sizeBucket,
		CriticalAreas:       areas,
		TouchesCriticalArea: len(areas) > 0,
		CoverageKnown:       in.HasCoverage(),
		CoverageRegressed:   CoverageRegressed(in, cfg),
		CoverageTolerance:   cfg.CoverageTolerance,
		FileCount:           count,
		FileCountBucket:     countBucket,
		TestFiles:           files.Tests,
		SourceFiles:         files.Sources,
		VendorFiles:         files.Vendored,
		DocsOnly:            files.DocsOnly,
		DependencyManifests: DependencyManifests(in, cfg),
		Languages:           files.Languages,
	}

	if in.CoverageDelta != nil {
		s.CoverageDelta = *in.CoverageDelta
	}

	return s
}

// DiffSize returns the total changed lines and their bucket.
func DiffSize(in change.Input, cfg Config) (int, Bucket) {
	total := in.TotalLines()

	return total, cfg.DiffSize.Bucket(total)
}

// CriticalAreas returns the configured critical areas the input touches,
// compared case-insensitively, deduplicated, in first-occurrence order.
func CriticalAreas(in change.Input, cfg Config) []string {
	if len(cfg.CriticalAreas) == 0 {
		return nil
	}

	critical := make(map[string]struct{}, len(cfg.CriticalAreas))
	for _, a := range cfg.CriticalAreas {
		critical[normalizeArea(a)] = struct{}{}
	}

	var matched []string

	seen := make(map[string]struct{})

	for _, f := range in.Files {
		area := normalizeArea(f.Area)
		if area == "" {
			continue
		}

		if _, ok := critical[area]; !ok {
			continue
		}

		if _, dup := seen[area]; dup {
			continue
		}

		seen[area] = struct{}{}
		matched = append(matched, area)
	}

	return matched
}

// CoverageRegressed reports whether coverage dropped by more than the
// tolerance. An unknown delta is never a regression.
func CoverageRegressed(in change.Input, cfg Config) bool {
	if in.CoverageDelta == nil {
		return false
	}

	return *in.CoverageDelta < -cfg.CoverageTolerance
}

// FileCount returns the number of distinct paths and their bucket.
func FileCount(in change.Input, cfg Config) (int, Bucket) {
	n := in.DistinctPaths()

	return n, cfg.FileCount.Bucket(n)
}

func normalizeArea(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
