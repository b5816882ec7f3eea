package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/cif/pkg/levenshtein"
)

// Config is the top-level configuration struct for cif.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Signals        SignalsConfig      `mapstructure:"signals"`
	Rules          RulesConfig        `mapstructure:"rules"`
	CustomRules    []CustomRuleConfig `mapstructure:"custom_rules"`
	Aggregation    AggregationConfig  `mapstructure:"aggregation"`
	Classification []BandConfig       `mapstructure:"classification"`
	Diff           DiffConfig         `mapstructure:"diff"`
	Logging        LoggingConfig      `mapstructure:"logging"`
}

// SignalsConfig holds signal extraction thresholds.
type SignalsConfig struct {
	DiffSize            BucketThresholds `mapstructure:"diff_size"`
	FileCount           BucketThresholds `mapstructure:"file_count"`
	CriticalAreas       []string         `mapstructure:"critical_areas"`
	CoverageTolerance   float64          `mapstructure:"coverage_tolerance"`
	DependencyManifests []string         `mapstructure:"dependency_manifests"`
}

// BucketThresholds are the inclusive lower bounds of the medium, large,
// and huge buckets. Anything below Medium is small.
type BucketThresholds struct {
	Medium int `mapstructure:"medium"`
	Large  int `mapstructure:"large"`
	Huge   int `mapstructure:"huge"`
}

// BucketSeverities assigns a severity to each bucket.
type BucketSeverities struct {
	Small  float64 `mapstructure:"small"`
	Medium float64 `mapstructure:"medium"`
	Large  float64 `mapstructure:"large"`
	Huge   float64 `mapstructure:"huge"`
}

// RulesConfig holds built-in rule settings and the evaluation order.
type RulesConfig struct {
	// Order lists rule names to evaluate first; unlisted rules follow
	// in their default order, custom rules last.
	Order              []string           `mapstructure:"order"`
	DiffSize           BucketRuleConfig   `mapstructure:"diff_size"`
	CriticalArea       RuleConfig         `mapstructure:"critical_area"`
	CoverageRegression RuleConfig         `mapstructure:"coverage_regression"`
	FileCount          BucketRuleConfig   `mapstructure:"file_count"`
	DependencyChange   RuleConfig         `mapstructure:"dependency_change"`
	BreakingChange     MetadataRuleConfig `mapstructure:"breaking_change"`
	MissingTests       RuleConfig         `mapstructure:"missing_tests"`
}

// RuleConfig holds settings for a rule with a single severity.
type RuleConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	Severity float64 `mapstructure:"severity"`
}

// BucketRuleConfig holds settings for a rule whose severity depends on a bucket.
type BucketRuleConfig struct {
	Enabled  bool             `mapstructure:"enabled"`
	Severity BucketSeverities `mapstructure:"severity"`
}

// MetadataRuleConfig holds settings for a rule driven by a metadata flag.
type MetadataRuleConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Severity    float64 `mapstructure:"severity"`
	MetadataKey string  `mapstructure:"metadata_key"`
}

// CustomRuleConfig declares a rule written as CEL expressions.
type CustomRuleConfig struct {
	Name      string  `mapstructure:"name"`
	When      string  `mapstructure:"when"`
	Rationale string  `mapstructure:"rationale"`
	Severity  float64 `mapstructure:"severity"`
}

// AggregationConfig selects how rule severities combine into a score.
type AggregationConfig struct {
	Policy string `mapstructure:"policy"`
	// Weights multiply rule severities under the weighted policy.
	// Rules without an entry weigh 1.
	Weights map[string]float64 `mapstructure:"weights"`
}

// BandConfig is one row of the classification table.
type BandConfig struct {
	Threshold      float64 `mapstructure:"threshold"`
	Classification string  `mapstructure:"classification"`
}

// DiffConfig holds settings for unified-diff input.
type DiffConfig struct {
	// Areas maps an area tag to the path prefixes that belong to it.
	Areas map[string][]string `mapstructure:"areas"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidConfig is matched by every ConfigurationError.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNonIncreasingThresholds indicates bucket thresholds that are not positive and strictly increasing.
	ErrNonIncreasingThresholds = errors.New("thresholds must be positive and strictly increasing")
	// ErrNegativeTolerance indicates a negative coverage tolerance.
	ErrNegativeTolerance = errors.New("tolerance must be non-negative")
	// ErrNegativeSeverity indicates a negative rule severity.
	ErrNegativeSeverity = errors.New("severity must be non-negative")
	// ErrDecreasingSeverity indicates bucket severities that shrink as buckets grow.
	ErrDecreasingSeverity = errors.New("bucket severities must be non-decreasing")
	// ErrNegativeWeight indicates a negative aggregation weight.
	ErrNegativeWeight = errors.New("weight must be non-negative")
	// ErrUnknownRule indicates a reference to a rule that does not exist.
	ErrUnknownRule = errors.New("unknown rule")
	// ErrDuplicateRule indicates a rule name used twice.
	ErrDuplicateRule = errors.New("duplicate rule")
	// ErrInvalidRuleName indicates a custom rule name outside [a-z][a-z0-9_]*.
	ErrInvalidRuleName = errors.New("rule name must match [a-z][a-z0-9_]*")
	// ErrEmptyExpression indicates a custom rule without an expression.
	ErrEmptyExpression = errors.New("expression must not be empty")
	// ErrInvalidExpression indicates a custom rule expression that does not compile.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrInvalidPolicy indicates an unknown aggregation policy.
	ErrInvalidPolicy = errors.New("aggregation policy must be sum, weighted, or max")
	// ErrEmptyClassification indicates an empty classification table.
	ErrEmptyClassification = errors.New("classification table must not be empty")
	// ErrFirstBandNotZero indicates the lowest band does not start at zero.
	ErrFirstBandNotZero = errors.New("first classification threshold must be 0")
	// ErrUnknownClassification indicates an unknown classification name.
	ErrUnknownClassification = errors.New("unknown classification")
	// ErrNonMonotonicClassification indicates bands not strictly increasing in threshold and classification.
	ErrNonMonotonicClassification = errors.New("classification bands must strictly increase in threshold and classification")
	// ErrEmptyMetadataKey indicates a metadata rule without a key.
	ErrEmptyMetadataKey = errors.New("metadata key must not be empty")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("log level must be debug, info, warn, or error")
	// ErrInvalidLogFormat indicates an unknown log format.
	ErrInvalidLogFormat = errors.New("log format must be json or text")
)

// ConfigurationError reports a malformed configuration value.
type ConfigurationError struct {
	// Key is the dotted configuration key, e.g. "signals.diff_size".
	Key string
	// Err is one of the package sentinel errors.
	Err error
	// Detail is optional extra context.
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %v: %s", ErrInvalidConfig, e.Key, e.Err, e.Detail)
	}

	return fmt.Sprintf("%s: %s: %v", ErrInvalidConfig, e.Key, e.Err)
}

// Unwrap exposes both ErrInvalidConfig and the specific sentinel.
func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrInvalidConfig, e.Err}
}

// Invalid builds a ConfigurationError.
func Invalid(key string, err error, detail string) *ConfigurationError {
	return &ConfigurationError{Key: key, Err: err, Detail: detail}
}

var ruleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate checks Config invariants and returns the first error found.
// Classification names and CEL expressions are checked when the engine
// is built, since they need the engine's types.
func (c *Config) Validate() error {
	checks := []func() error{
		c.validateSignals,
		c.validateRules,
		c.validateCustomRules,
		c.validateOrder,
		c.validateAggregation,
		c.validateLogging,
	}

	for _, check := range checks {
		err := check()
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateSignals() error {
	return c.Signals.Validate()
}

// Validate rejects non-positive or non-increasing bucket thresholds and a
// negative coverage tolerance.
func (s SignalsConfig) Validate() error {
	err := validateThresholds("signals.diff_size", s.DiffSize)
	if err != nil {
		return err
	}

	err = validateThresholds("signals.file_count", s.FileCount)
	if err != nil {
		return err
	}

	if s.CoverageTolerance < 0 {
		return Invalid("signals.coverage_tolerance", ErrNegativeTolerance, fmt.Sprintf("got %v", s.CoverageTolerance))
	}

	return nil
}

func validateThresholds(key string, th BucketThresholds) error {
	if th.Medium <= 0 || th.Large <= th.Medium || th.Huge <= th.Large {
		return Invalid(key, ErrNonIncreasingThresholds,
			fmt.Sprintf("medium=%d large=%d huge=%d", th.Medium, th.Large, th.Huge))
	}

	return nil
}

func (c *Config) validateRules() error {
	r := c.Rules

	err := validateBucketSeverities("rules."+RuleDiffSize, r.DiffSize.Severity)
	if err != nil {
		return err
	}

	err = validateBucketSeverities("rules."+RuleFileCount, r.FileCount.Severity)
	if err != nil {
		return err
	}

	single := []struct {
		name     string
		severity float64
	}{
		{RuleCriticalArea, r.CriticalArea.Severity},
		{RuleCoverageRegression, r.CoverageRegression.Severity},
		{RuleDependencyChange, r.DependencyChange.Severity},
		{RuleBreakingChange, r.BreakingChange.Severity},
		{RuleMissingTests, r.MissingTests.Severity},
	}

	for _, s := range single {
		if s.severity < 0 {
			return Invalid("rules."+s.name+".severity", ErrNegativeSeverity, fmt.Sprintf("got %v", s.severity))
		}
	}

	if r.BreakingChange.Enabled && strings.TrimSpace(r.BreakingChange.MetadataKey) == "" {
		return Invalid("rules."+RuleBreakingChange+".metadata_key", ErrEmptyMetadataKey, "")
	}

	return nil
}

func validateBucketSeverities(key string, s BucketSeverities) error {
	for _, v := range []float64{s.Small, s.Medium, s.Large, s.Huge} {
		if v < 0 {
			return Invalid(key+".severity", ErrNegativeSeverity, fmt.Sprintf("got %v", v))
		}
	}

	if s.Medium < s.Small || s.Large < s.Medium || s.Huge < s.Large {
		return Invalid(key+".severity", ErrDecreasingSeverity,
			fmt.Sprintf("small=%v medium=%v large=%v huge=%v", s.Small, s.Medium, s.Large, s.Huge))
	}

	return nil
}

func (c *Config) validateCustomRules() error {
	seen := make(map[string]bool, len(c.CustomRules))
	for _, name := range BuiltinRules() {
		seen[name] = true
	}

	for i, cr := range c.CustomRules {
		key := fmt.Sprintf("custom_rules[%d]", i)

		if !ruleNamePattern.MatchString(cr.Name) {
			return Invalid(key+".name", ErrInvalidRuleName, fmt.Sprintf("got %q", cr.Name))
		}

		if seen[cr.Name] {
			return Invalid(key+".name", ErrDuplicateRule, cr.Name)
		}

		seen[cr.Name] = true

		if strings.TrimSpace(cr.When) == "" {
			return Invalid(key+".when", ErrEmptyExpression, "")
		}

		if strings.TrimSpace(cr.Rationale) == "" {
			return Invalid(key+".rationale", ErrEmptyExpression, "")
		}

		if cr.Severity < 0 {
			return Invalid(key+".severity", ErrNegativeSeverity, fmt.Sprintf("got %v", cr.Severity))
		}
	}

	return nil
}

func (c *Config) validateOrder() error {
	known := c.ruleNames()
	seen := make(map[string]bool, len(c.Rules.Order))

	for i, name := range c.Rules.Order {
		key := fmt.Sprintf("rules.order[%d]", i)

		if !known[name] {
			return unknownRule(key, name, known)
		}

		if seen[name] {
			return Invalid(key, ErrDuplicateRule, name)
		}

		seen[name] = true
	}

	return nil
}

func (c *Config) validateAggregation() error {
	switch c.Aggregation.Policy {
	case PolicySum, PolicyWeighted, PolicyMax:
	default:
		return Invalid("aggregation.policy", ErrInvalidPolicy, fmt.Sprintf("got %q", c.Aggregation.Policy))
	}

	known := c.ruleNames()

	for _, name := range sortedKeys(c.Aggregation.Weights) {
		if !known[name] {
			return unknownRule("aggregation.weights."+name, name, known)
		}

		if c.Aggregation.Weights[name] < 0 {
			return Invalid("aggregation.weights."+name, ErrNegativeWeight, fmt.Sprintf("got %v", c.Aggregation.Weights[name]))
		}
	}

	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return Invalid("logging.level", ErrInvalidLogLevel, fmt.Sprintf("got %q", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case LogFormatJSON, LogFormatText:
	default:
		return Invalid("logging.format", ErrInvalidLogFormat, fmt.Sprintf("got %q", c.Logging.Format))
	}

	return nil
}

// RuleOrder returns every rule name in evaluation order: names listed in
// Rules.Order first, then remaining built-ins in default order, then
// remaining custom rules in declaration order. Disabled rules are included.
func (c *Config) RuleOrder() []string {
	all := make([]string, 0, len(BuiltinRules())+len(c.CustomRules))
	all = append(all, BuiltinRules()...)

	for _, cr := range c.CustomRules {
		all = append(all, cr.Name)
	}

	order := make([]string, 0, len(all))
	placed := make(map[string]bool, len(all))

	for _, name := range c.Rules.Order {
		if !placed[name] {
			order = append(order, name)
			placed[name] = true
		}
	}

	for _, name := range all {
		if !placed[name] {
			order = append(order, name)
			placed[name] = true
		}
	}

	return order
}

// Weight returns the aggregation weight of a rule.
func (c *Config) Weight(rule string) float64 {
	if w, ok := c.Aggregation.Weights[rule]; ok {
		return w
	}

	return 1
}

// maxSuggestDistance bounds "did you mean" hints for misspelled rule names.
const maxSuggestDistance = 2

func unknownRule(key, name string, known map[string]bool) error {
	suggestion, ok := levenshtein.Closest(name, sortedKeys(known), maxSuggestDistance)
	if !ok {
		return Invalid(key, ErrUnknownRule, name)
	}

	return Invalid(key, ErrUnknownRule, fmt.Sprintf("%s (did you mean %q?)", name, suggestion))
}

func (c *Config) ruleNames() map[string]bool {
	known := make(map[string]bool, len(BuiltinRules())+len(c.CustomRules))

	for _, name := range BuiltinRules() {
		known[name] = true
	}

	for _, cr := range c.CustomRules {
		known[cr.Name] = true
	}

	return known
}
