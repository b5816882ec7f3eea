// Package config provides YAML-based configuration for the cif assessment
// engine: signal thresholds, rule severities, aggregation policy, and the
// classification table.
package config

// Built-in rule names, in default evaluation order.
const (
	RuleDiffSize           = "diff_size"
	RuleCriticalArea       = "critical_area"
	RuleCoverageRegression = "coverage_regression"
	RuleFileCount          = "file_count"
	RuleDependencyChange   = "dependency_change"
	RuleBreakingChange     = "breaking_change"
	RuleMissingTests       = "missing_tests"
)

// Aggregation policies.
const (
	PolicySum      = "sum"
	PolicyWeighted = "weighted"
	PolicyMax      = "max"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Signal defaults.
const (
	DefaultDiffSizeMedium    = 20
	DefaultDiffSizeLarge     = 200
	DefaultDiffSizeHuge      = 1000
	DefaultFileCountMedium   = 5
	DefaultFileCountLarge    = 15
	DefaultFileCountHuge     = 50
	DefaultCoverageTolerance = 0.5
)

// Rule severity defaults.
const (
	DefaultDiffSizeSeveritySmall   = 0.0
	DefaultDiffSizeSeverityMedium  = 5.0
	DefaultDiffSizeSeverityLarge   = 15.0
	DefaultDiffSizeSeverityHuge    = 30.0
	DefaultFileCountSeveritySmall  = 0.0
	DefaultFileCountSeverityMedium = 3.0
	DefaultFileCountSeverityLarge  = 8.0
	DefaultFileCountSeverityHuge   = 15.0
	DefaultCriticalAreaSeverity    = 20.0
	DefaultCoverageSeverity        = 10.0
	DefaultDependencySeverity      = 8.0
	DefaultBreakingSeverity        = 25.0
	DefaultMissingTestsSeverity    = 5.0
	DefaultBreakingMetadataKey     = "breaking_change"
	DefaultMissingTestsEnabled     = false
)

// Classification defaults.
const (
	DefaultMediumThreshold   = 10.0
	DefaultHighThreshold     = 30.0
	DefaultCriticalThreshold = 60.0
)

// Aggregation and logging defaults.
const (
	DefaultPolicy    = PolicySum
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatText
)

// BuiltinRules returns the built-in rule names in default evaluation order.
func BuiltinRules() []string {
	return []string{
		RuleDiffSize,
		RuleCriticalArea,
		RuleCoverageRegression,
		RuleFileCount,
		RuleDependencyChange,
		RuleBreakingChange,
		RuleMissingTests,
	}
}

// DefaultCriticalAreas returns the default sensitive area tags.
func DefaultCriticalAreas() []string {
	return []string{"auth", "billing", "migrations", "payments", "security"}
}

// DefaultDependencyManifests returns the default dependency manifest file names.
func DefaultDependencyManifests() []string {
	return []string{
		"go.mod", "go.sum",
		"package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml",
		"requirements.txt", "pyproject.toml", "poetry.lock", "Pipfile.lock",
		"Cargo.toml", "Cargo.lock",
		"pom.xml", "build.gradle", "build.gradle.kts",
		"Gemfile", "Gemfile.lock", "composer.json", "composer.lock",
	}
}

// DefaultClassification returns the default classification table.
func DefaultClassification() []BandConfig {
	return []BandConfig{
		{Threshold: 0, Classification: "low"},
		{Threshold: DefaultMediumThreshold, Classification: "medium"},
		{Threshold: DefaultHighThreshold, Classification: "high"},
		{Threshold: DefaultCriticalThreshold, Classification: "critical"},
	}
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Signals: SignalsConfig{
			DiffSize: BucketThresholds{
				Medium: DefaultDiffSizeMedium,
				Large:  DefaultDiffSizeLarge,
				Huge:   DefaultDiffSizeHuge,
			},
			FileCount: BucketThresholds{
				Medium: DefaultFileCountMedium,
				Large:  DefaultFileCountLarge,
				Huge:   DefaultFileCountHuge,
			},
			CriticalAreas:       DefaultCriticalAreas(),
			CoverageTolerance:   DefaultCoverageTolerance,
			DependencyManifests: DefaultDependencyManifests(),
		},
		Rules: RulesConfig{
			DiffSize: BucketRuleConfig{
				Enabled: true,
				Severity: BucketSeverities{
					Small:  DefaultDiffSizeSeveritySmall,
					Medium: DefaultDiffSizeSeverityMedium,
					Large:  DefaultDiffSizeSeverityLarge,
					Huge:   DefaultDiffSizeSeverityHuge,
				},
			},
			CriticalArea:       RuleConfig{Enabled: true, Severity: DefaultCriticalAreaSeverity},
			CoverageRegression: RuleConfig{Enabled: true, Severity: DefaultCoverageSeverity},
			FileCount: BucketRuleConfig{
				Enabled: true,
				Severity: BucketSeverities{
					Small:  DefaultFileCountSeveritySmall,
					Medium: DefaultFileCountSeverityMedium,
					Large:  DefaultFileCountSeverityLarge,
					Huge:   DefaultFileCountSeverityHuge,
				},
			},
			DependencyChange: RuleConfig{Enabled: true, Severity: DefaultDependencySeverity},
			BreakingChange: MetadataRuleConfig{
				Enabled:     true,
				Severity:    DefaultBreakingSeverity,
				MetadataKey: DefaultBreakingMetadataKey,
			},
			MissingTests: RuleConfig{Enabled: DefaultMissingTestsEnabled, Severity: DefaultMissingTestsSeverity},
		},
		Aggregation:    AggregationConfig{Policy: DefaultPolicy},
		Classification: DefaultClassification(),
		Logging:        LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}
