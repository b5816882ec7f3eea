package rules

import (
	"strings"

	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/signals"
)

func bucketSeverity(sev config.BucketSeverities, b signals.Bucket) float64 {
	switch b {
	case signals.BucketHuge:
		return sev.Huge
	case signals.BucketLarge:
		return sev.Large
	case signals.BucketMedium:
		return sev.Medium
	default:
		return sev.Small
	}
}

// DiffSize fires by diff size bucket.
func DiffSize(sev config.BucketSeverities) Rule {
	return Rule{
		Name:        config.RuleDiffSize,
		Description: "Large diffs are harder to review and riskier to ship.",
		Eval: func(_ change.Input, set signals.Set) (Outcome, error) {
			return fire(bucketSeverity(sev, set.DiffSizeBucket),
				"diff size is %s: %d changed lines", set.DiffSizeBucket, set.TotalLines), nil
		},
	}
}

// CriticalArea fires when a critical area is touched.
func CriticalArea(severity float64) Rule {
	return Rule{
		Name:        config.RuleCriticalArea,
		Description: "Changes to sensitive areas such as auth or billing.",
		Eval: func(_ change.Input, set signals.Set) (Outcome, error) {
			if !set.TouchesCriticalArea {
				return Outcome{}, nil
			}

			return fire(severity, "touches critical area: %s", strings.Join(set.CriticalAreas, ", ")), nil
		},
	}
}

// CoverageRegression fires when coverage drops beyond the tolerance.
func CoverageRegression(severity float64) Rule {
	return Rule{
		Name:        config.RuleCoverageRegression,
		Description: "Test coverage dropped by more than the tolerance.",
		Eval: func(_ change.Input, set signals.Set) (Outcome, error) {
			if !set.CoverageRegressed {
				return Outcome{}, nil
			}

			return fire(severity, "test coverage regressed by %.2f percentage points (tolerance %.2f)",
				-set.CoverageDelta, set.CoverageTolerance), nil
		},
	}
}

// FileCount fires by file count bucket.
func FileCount(sev config.BucketSeverities) Rule {
	return Rule{
		Name:        config.RuleFileCount,
		Description: "Changes spread over many files.",
		Eval: func(_ change.Input, set signals.Set) (Outcome, error) {
			return fire(bucketSeverity(sev, set.FileCountBucket),
				"touches %d files (%s)", set.FileCount, set.FileCountBucket), nil
		},
	}
}

// DependencyChange fires when a dependency manifest is touched.
func DependencyChange(severity float64) Rule {
	return Rule{
		Name:        config.RuleDependencyChange,
		Description: "Dependency manifests or lock files changed.",
		Eval: func(_ change.Input, set signals.Set) (Outcome, error) {
			if len(set.DependencyManifests) == 0 {
				return Outcome{}, nil
			}

			return fire(severity, "modifies dependency manifest: %s", strings.Join(set.DependencyManifests, ", ")), nil
		},
	}
}

// BreakingChange fires when the metadata flag at key is true.
func BreakingChange(severity float64, key string) Rule {
	return Rule{
		Name:        config.RuleBreakingChange,
		Description: "The change is flagged as breaking in its metadata.",
		Eval: func(in change.Input, _ signals.Set) (Outcome, error) {
			if !in.Metadata.Bool(key, false) {
				return Outcome{}, nil
			}

			return fire(severity, "change is marked as breaking (metadata %s=true)", key), nil
		},
	}
}

// MissingTests fires when source files change but no test file does.
func MissingTests(severity float64) Rule {
	return Rule{
		Name:        config.RuleMissingTests,
		Description: "Source files changed without any test changes.",
		Eval: func(_ change.Input, set signals.Set) (Outcome, error) {
			if set.SourceFiles == 0 || set.TestFiles > 0 {
				return Outcome{}, nil
			}

			return fire(severity, "changes %d source files without touching tests", set.SourceFiles), nil
		},
	}
}

// builtin returns the built-in rule for name and whether it is enabled.
func builtin(name string, rc config.RulesConfig) (Rule, bool, bool) {
	switch name {
	case config.RuleDiffSize:
		return DiffSize(rc.DiffSize.Severity), rc.DiffSize.Enabled, true
	case config.RuleCriticalArea:
		return CriticalArea(rc.CriticalArea.Severity), rc.CriticalArea.Enabled, true
	case config.RuleCoverageRegression:
		return CoverageRegression(rc.CoverageRegression.Severity), rc.CoverageRegression.Enabled, true
	case config.RuleFileCount:
		return FileCount(rc.FileCount.Severity), rc.FileCount.Enabled, true
	case config.RuleDependencyChange:
		return DependencyChange(rc.DependencyChange.Severity), rc.DependencyChange.Enabled, true
	case config.RuleBreakingChange:
		return BreakingChange(rc.BreakingChange.Severity, rc.BreakingChange.MetadataKey), rc.BreakingChange.Enabled, true
	case config.RuleMissingTests:
		return MissingTests(rc.MissingTests.Severity), rc.MissingTests.Enabled, true
	default:
		return Rule{}, false, false
	}
}
