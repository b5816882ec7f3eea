package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cif/pkg/config"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		key    string
		want   error
	}{
		{
			name:   "file count thresholds not increasing",
			mutate: func(c *config.Config) { c.Signals.FileCount.Huge = c.Signals.FileCount.Large },
			key:    "signals.file_count",
			want:   config.ErrNonIncreasingThresholds,
		},
		{
			name:   "zero medium threshold",
			mutate: func(c *config.Config) { c.Signals.DiffSize.Medium = 0 },
			key:    "signals.diff_size",
			want:   config.ErrNonIncreasingThresholds,
		},
		{
			name:   "negative tolerance",
			mutate: func(c *config.Config) { c.Signals.CoverageTolerance = -0.1 },
			key:    "signals.coverage_tolerance",
			want:   config.ErrNegativeTolerance,
		},
		{
			name:   "negative severity",
			mutate: func(c *config.Config) { c.Rules.DependencyChange.Severity = -1 },
			key:    "rules.dependency_change.severity",
			want:   config.ErrNegativeSeverity,
		},
		{
			name:   "decreasing bucket severity",
			mutate: func(c *config.Config) { c.Rules.DiffSize.Severity.Huge = 1 },
			key:    "rules.diff_size.severity",
			want:   config.ErrDecreasingSeverity,
		},
		{
			name:   "empty metadata key",
			mutate: func(c *config.Config) { c.Rules.BreakingChange.MetadataKey = " " },
			key:    "rules.breaking_change.metadata_key",
			want:   config.ErrEmptyMetadataKey,
		},
		{
			name: "custom rule bad name",
			mutate: func(c *config.Config) {
				c.CustomRules = []config.CustomRuleConfig{{Name: "Bad-Name", When: "true", Rationale: `"x"`}}
			},
			key:  "custom_rules[0].name",
			want: config.ErrInvalidRuleName,
		},
		{
			name: "custom rule shadows builtin",
			mutate: func(c *config.Config) {
				c.CustomRules = []config.CustomRuleConfig{{Name: config.RuleDiffSize, When: "true", Rationale: `"x"`}}
			},
			key:  "custom_rules[0].name",
			want: config.ErrDuplicateRule,
		},
		{
			name: "custom rule empty when",
			mutate: func(c *config.Config) {
				c.CustomRules = []config.CustomRuleConfig{{Name: "x", Rationale: `"x"`}}
			},
			key:  "custom_rules[0].when",
			want: config.ErrEmptyExpression,
		},
		{
			name:   "order names unknown rule",
			mutate: func(c *config.Config) { c.Rules.Order = []string{"nope"} },
			key:    "rules.order[0]",
			want:   config.ErrUnknownRule,
		},
		{
			name:   "order repeats rule",
			mutate: func(c *config.Config) { c.Rules.Order = []string{config.RuleDiffSize, config.RuleDiffSize} },
			key:    "rules.order[1]",
			want:   config.ErrDuplicateRule,
		},
		{
			name:   "unknown policy",
			mutate: func(c *config.Config) { c.Aggregation.Policy = "avg" },
			key:    "aggregation.policy",
			want:   config.ErrInvalidPolicy,
		},
		{
			name:   "negative weight",
			mutate: func(c *config.Config) { c.Aggregation.Weights = map[string]float64{config.RuleFileCount: -2} },
			key:    "aggregation.weights.file_count",
			want:   config.ErrNegativeWeight,
		},
		{
			name:   "weight for unknown rule",
			mutate: func(c *config.Config) { c.Aggregation.Weights = map[string]float64{"ghost": 1} },
			key:    "aggregation.weights.ghost",
			want:   config.ErrUnknownRule,
		},
		{
			name:   "bad log level",
			mutate: func(c *config.Config) { c.Logging.Level = "loud" },
			key:    "logging.level",
			want:   config.ErrInvalidLogLevel,
		},
		{
			name:   "bad log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			key:    "logging.format",
			want:   config.ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, config.ErrInvalidConfig)

			var cfgErr *config.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}

func TestRuleOrder_ConfiguredFirstThenDefaultsThenCustom(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CustomRules = []config.CustomRuleConfig{
		{Name: "alpha", When: "true", Rationale: `"a"`},
		{Name: "beta", When: "true", Rationale: `"b"`},
	}
	cfg.Rules.Order = []string{"beta", config.RuleBreakingChange}

	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{
		"beta",
		config.RuleBreakingChange,
		config.RuleDiffSize,
		config.RuleCriticalArea,
		config.RuleCoverageRegression,
		config.RuleFileCount,
		config.RuleDependencyChange,
		config.RuleMissingTests,
		"alpha",
	}, cfg.RuleOrder())
}

func TestConfigurationError_Message(t *testing.T) {
	t.Parallel()

	err := config.Invalid("aggregation.policy", config.ErrInvalidPolicy, `got "avg"`)
	assert.Equal(t,
		`invalid configuration: aggregation.policy: aggregation policy must be sum, weighted, or max: got "avg"`,
		err.Error())

	bare := config.Invalid("k", config.ErrUnknownRule, "")
	assert.Equal(t, "invalid configuration: k: unknown rule", bare.Error())
}

func TestValidate_UnknownRuleSuggestsClosest(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Rules.Order = []string{"critical_aera"}

	err := cfg.Validate()
	require.ErrorIs(t, err, config.ErrUnknownRule)
	assert.Contains(t, err.Error(), `did you mean "critical_area"?`)

	cfg = config.Default()
	cfg.Aggregation.Weights = map[string]float64{"ghost": 1}

	err = cfg.Validate()
	require.ErrorIs(t, err, config.ErrUnknownRule)
	assert.NotContains(t, err.Error(), "did you mean")
}
