package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
	"github.com/Sumatoshi-tech/cif/pkg/rules"
	"github.com/Sumatoshi-tech/cif/pkg/signals"
)

func TestBuild_DefaultOrderSkipsDisabled(t *testing.T) {
	t.Parallel()

	reg, err := rules.Build(config.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{
		config.RuleDiffSize,
		config.RuleCriticalArea,
		config.RuleCoverageRegression,
		config.RuleFileCount,
		config.RuleDependencyChange,
		config.RuleBreakingChange,
	}, reg.Names())
}

func TestBuild_CustomRuleFires(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CustomRules = []config.CustomRuleConfig{{
		Name:      "friday_deploy",
		When:      `has(change.metadata.day) && change.metadata.day == "friday" && signals.total_lines > 10`,
		Rationale: `"deploys on " + change.metadata.day + " with " + string(signals.total_lines) + " lines"`,
		Severity:  12,
	}}
	cfg.Rules.Order = []string{"friday_deploy"}

	reg, err := rules.Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, "friday_deploy", reg.Names()[0])

	in := change.Input{
		Identifier: "fri",
		Files:      []change.FileChange{{Path: "a.go", LinesAdded: 40}},
		Metadata:   change.Metadata{"day": "friday"},
	}

	outs, err := reg.Evaluate(in, signals.Extract(in, signals.DefaultConfig()))
	require.NoError(t, err)

	assert.Equal(t, rules.Outcome{Rule: "friday_deploy", Severity: 12, Rationale: "deploys on friday with 40 lines"}, outs[0])

	in.Metadata = nil
	outs, err = reg.Evaluate(in, signals.Extract(in, signals.DefaultConfig()))
	require.NoError(t, err)
	assert.False(t, outs[0].Fired())
}

func TestBuild_CustomRuleSeesFilesAndCoverage(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CustomRules = []config.CustomRuleConfig{{
		Name:      "sql_without_coverage",
		When:      `change.coverage_delta == null && change.files.exists(f, f.path.endsWith(".sql"))`,
		Rationale: `"sql change without coverage data"`,
		Severity:  4,
	}}

	reg, err := rules.Build(cfg)
	require.NoError(t, err)

	in := change.Input{Identifier: "sql", Files: []change.FileChange{{Path: "db/001.sql", LinesAdded: 2}}}

	outs, err := reg.Evaluate(in, signals.Extract(in, signals.DefaultConfig()))
	require.NoError(t, err)

	last := outs[len(outs)-1]
	assert.Equal(t, "sql_without_coverage", last.Rule)
	assert.True(t, last.Fired())
}

func TestBuild_CompileErrorsAreConfigurationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule config.CustomRuleConfig
		key  string
	}{
		{"syntax", config.CustomRuleConfig{Name: "x", When: "change.files.size( >", Rationale: `"r"`, Severity: 1}, "custom_rules[0].when"},
		{"when not bool", config.CustomRuleConfig{Name: "x", When: `"yes"`, Rationale: `"r"`, Severity: 1}, "custom_rules[0].when"},
		{"rationale not string", config.CustomRuleConfig{Name: "x", When: "true", Rationale: "42", Severity: 1}, "custom_rules[0].rationale"},
		{"unknown variable", config.CustomRuleConfig{Name: "x", When: "input.size > 1", Rationale: `"r"`, Severity: 1}, "custom_rules[0].when"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			cfg.CustomRules = []config.CustomRuleConfig{tt.rule}

			_, err := rules.Build(cfg)
			require.ErrorIs(t, err, config.ErrInvalidExpression)

			var cfgErr *config.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}

func TestBuild_CustomRuleDefaultsAbsentMetadataKey(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CustomRules = []config.CustomRuleConfig{{
		Name:      "hotfix",
		When:      `change.metadata.?hotfix.orValue(false) == true && signals.test_files == 0`,
		Rationale: `"hotfix owned by " + change.metadata.?owner.orValue("nobody")`,
		Severity:  12,
	}}

	reg, err := rules.Build(cfg)
	require.NoError(t, err)

	idx := len(reg.Names()) - 1
	require.Equal(t, "hotfix", reg.Names()[idx])

	in := change.Input{Identifier: "nokey", Files: []change.FileChange{{Path: "auth/login.py", LinesAdded: 5}}}

	outs, err := reg.Evaluate(in, signals.Extract(in, signals.DefaultConfig()))
	require.NoError(t, err)
	assert.False(t, outs[idx].Fired())

	in.Metadata = change.Metadata{"team": "identity"}
	outs, err = reg.Evaluate(in, signals.Extract(in, signals.DefaultConfig()))
	require.NoError(t, err)
	assert.False(t, outs[idx].Fired())

	in.Metadata = change.Metadata{"hotfix": true}
	outs, err = reg.Evaluate(in, signals.Extract(in, signals.DefaultConfig()))
	require.NoError(t, err)
	assert.Equal(t, rules.Outcome{Rule: "hotfix", Severity: 12, Rationale: "hotfix owned by nobody"}, outs[idx])
}

func TestBuild_RuntimeErrorIsEvaluationError(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CustomRules = []config.CustomRuleConfig{{
		Name:      "missing_key",
		When:      `change.metadata.owner == "x"`,
		Rationale: `"r"`,
		Severity:  1,
	}}

	reg, err := rules.Build(cfg)
	require.NoError(t, err)

	in := change.Input{Identifier: "rt", Files: []change.FileChange{{Path: "a.go"}}}

	_, err = reg.Evaluate(in, signals.Extract(in, signals.DefaultConfig()))
	require.ErrorIs(t, err, rules.ErrEvaluation)

	var evalErr *rules.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "missing_key", evalErr.Rule)
}

func TestDescribe_ListsAllRules(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.CustomRules = []config.CustomRuleConfig{{Name: "z", When: "true", Rationale: `"z"`, Severity: 2.5}}
	cfg.Aggregation.Weights = map[string]float64{config.RuleCriticalArea: 3}

	infos := rules.Describe(cfg)
	require.Len(t, infos, len(config.BuiltinRules())+1)

	assert.Equal(t, rules.Info{
		Name:        config.RuleDiffSize,
		Kind:        rules.KindBuiltin,
		Enabled:     true,
		Severity:    "0/5/15/30",
		Weight:      1,
		Description: rules.DiffSize(config.BucketSeverities{}).Description,
	}, infos[0])
	assert.InDelta(t, 3.0, infos[1].Weight, 1e-9)
	assert.False(t, infos[6].Enabled)
	assert.Equal(t, rules.KindCustom, infos[7].Kind)
	assert.Equal(t, "2.5", infos[7].Severity)
}
